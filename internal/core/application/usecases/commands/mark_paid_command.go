package commands

import (
	"errors"
	"strings"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/pkg/errs"
	"marketplace/internal/pkg/guard"
)

var (
	ErrMarkPaidCommandIsNotConstructed = errors.New(
		"MarkPaidCommand must be created via NewMarkPaidCommand constructor",
	)
	ErrMarkPaymentFailedCommandIsNotConstructed = errors.New(
		"MarkPaymentFailedCommand must be created via NewMarkPaymentFailedCommand constructor",
	)
)

// MarkPaidCommand is the payment collaborator reporting a settled order.
// There is no acting party: payment status is system driven.
type MarkPaidCommand struct { //nolint:recvcheck //using for validation
	orderID        kernel.UUID
	transactionRef string

	guard guard.ConstructorGuard
}

func NewMarkPaidCommand(orderID kernel.UUID, transactionRef string) (MarkPaidCommand, error) {
	var problems []error
	if err := orderID.Validate(); err != nil {
		problems = append(problems, errs.NewValueIsRequiredErrorWithCause("orderId", err))
	}
	transactionRef = strings.TrimSpace(transactionRef)
	if transactionRef == "" {
		problems = append(problems, errs.NewValueIsRequiredError("transactionRef"))
	}
	if err := errors.Join(problems...); err != nil {
		return MarkPaidCommand{}, err
	}

	return MarkPaidCommand{
		orderID:        orderID,
		transactionRef: transactionRef,
		guard:          guard.NewConstructorGuard(),
	}, nil
}

func (c MarkPaidCommand) Validate() error {
	return c.guard.Validate(ErrMarkPaidCommandIsNotConstructed)
}

func (c MarkPaidCommand) OrderID() kernel.UUID { return c.orderID }

func (c MarkPaidCommand) TransactionRef() string { return c.transactionRef }

// MarkPaymentFailedCommand reports a declined payment.
type MarkPaymentFailedCommand struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

func NewMarkPaymentFailedCommand(orderID kernel.UUID) (MarkPaymentFailedCommand, error) {
	if err := orderID.Validate(); err != nil {
		return MarkPaymentFailedCommand{}, errs.NewValueIsRequiredErrorWithCause("orderId", err)
	}
	return MarkPaymentFailedCommand{orderID: orderID, guard: guard.NewConstructorGuard()}, nil
}

func (c MarkPaymentFailedCommand) Validate() error {
	return c.guard.Validate(ErrMarkPaymentFailedCommandIsNotConstructed)
}

func (c MarkPaymentFailedCommand) OrderID() kernel.UUID { return c.orderID }
