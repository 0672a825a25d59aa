package commands

import (
	"errors"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
)

// orderAction is the payload shared by commands where a party acts on one order.
type orderAction struct {
	orderID kernel.UUID
	actorID kernel.UUID
}

func newOrderAction(orderID, actorID kernel.UUID) (orderAction, error) {
	a := orderAction{}
	if err := errors.Join(
		a.setOrderID(orderID),
		a.setActorID(actorID),
	); err != nil {
		return orderAction{}, err
	}
	return a, nil
}

// OrderID returns the order the action applies to.
func (a orderAction) OrderID() kernel.UUID {
	return a.orderID
}

// ActorID returns the party performing the action.
func (a orderAction) ActorID() kernel.UUID {
	return a.actorID
}

func (a *orderAction) setOrderID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	a.orderID = id
	return nil
}

func (a *orderAction) setActorID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return errs.NewValueIsRequiredErrorWithCause("actorId", err)
	}
	a.actorID = id
	return nil
}
