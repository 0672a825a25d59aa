package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/guard"
)

var ErrMarkDeliveredCommandIsNotConstructed = errors.New(
	"MarkDeliveredCommand must be created via NewMarkDeliveredCommand constructor",
)

// MarkDeliveredCommand records the hand-over to the buyer, by the courier or the seller.
type MarkDeliveredCommand struct {
	orderAction

	guard guard.ConstructorGuard
}

func NewMarkDeliveredCommand(orderID, actorID kernel.UUID) (MarkDeliveredCommand, error) {
	action, err := newOrderAction(orderID, actorID)
	if err != nil {
		return MarkDeliveredCommand{}, err
	}
	return MarkDeliveredCommand{orderAction: action, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the command was created through the constructor.
func (c MarkDeliveredCommand) Validate() error {
	return c.guard.Validate(ErrMarkDeliveredCommandIsNotConstructed)
}
