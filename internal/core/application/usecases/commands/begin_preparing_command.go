package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrBeginPreparingCommandIsNotConstructed = errors.New(
	"BeginPreparingCommand must be created via NewBeginPreparingCommand constructor",
)

// BeginPreparingCommand moves a Confirmed order into Preparing. Seller only.
type BeginPreparingCommand struct {
	orderAction

	guard guard.ConstructorGuard
}

func NewBeginPreparingCommand(orderID, actorID kernel.UUID) (BeginPreparingCommand, error) {
	action, err := newOrderAction(orderID, actorID)
	if err != nil {
		return BeginPreparingCommand{}, err
	}
	return BeginPreparingCommand{orderAction: action, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c BeginPreparingCommand) Validate() error {
	return c.guard.Validate(ErrBeginPreparingCommandIsNotConstructed)
}
