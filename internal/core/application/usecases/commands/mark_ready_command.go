package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrMarkReadyCommandIsNotConstructed = errors.New(
	"MarkReadyCommand must be created via NewMarkReadyCommand constructor",
)

// MarkReadyCommand hands a prepared order over to fulfillment.
type MarkReadyCommand struct {
	orderAction

	guard guard.ConstructorGuard
}

func NewMarkReadyCommand(orderID, actorID kernel.UUID) (MarkReadyCommand, error) {
	action, err := newOrderAction(orderID, actorID)
	if err != nil {
		return MarkReadyCommand{}, err
	}
	return MarkReadyCommand{orderAction: action, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c MarkReadyCommand) Validate() error {
	return c.guard.Validate(ErrMarkReadyCommandIsNotConstructed)
}
