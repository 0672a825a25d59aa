package commands

import (
	"errors"
	"strings"
	"unicode/utf8"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

// MaxCancelReasonLength bounds the free-text reason, in runes.
const MaxCancelReasonLength = 500

var ErrCancelOrderCommandIsNotConstructed = errors.New(
	"CancelOrderCommand must be created via NewCancelOrderCommand constructor",
)

// CancelOrderCommand is the buyer or the seller calling off an order. The
// reason is optional and ends up on the order and in its transition log.
type CancelOrderCommand struct { //nolint:recvcheck //using for validation
	orderAction
	reason string

	guard guard.ConstructorGuard
}

func NewCancelOrderCommand(orderID, actorID kernel.UUID, reason string) (CancelOrderCommand, error) {
	action, err := newOrderAction(orderID, actorID)
	cmd := CancelOrderCommand{orderAction: action, guard: guard.NewConstructorGuard()}
	if err = errors.Join(err, cmd.setReason(reason)); err != nil {
		return CancelOrderCommand{}, err
	}
	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c CancelOrderCommand) Validate() error {
	return c.guard.Validate(ErrCancelOrderCommandIsNotConstructed)
}

func (c CancelOrderCommand) Reason() string {
	return c.reason
}

func (c *CancelOrderCommand) setReason(reason string) error {
	reason = strings.TrimSpace(reason)
	if n := utf8.RuneCountInString(reason); n > MaxCancelReasonLength {
		return errs.NewValueIsOutOfRangeError("reason length", n, 0, MaxCancelReasonLength)
	}
	c.reason = reason
	return nil
}
