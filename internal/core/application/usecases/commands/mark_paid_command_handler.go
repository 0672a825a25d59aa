package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// PaymentCommandHandler applies payment status reports to orders.
type PaymentCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewPaymentCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) PaymentCommandHandler {
	return PaymentCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

// MarkPaid records a settled payment. Cancelled orders are never paid.
func (h PaymentCommandHandler) MarkPaid(ctx context.Context, cmd MarkPaidCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "MarkPaid", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventMarkPaid.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.MarkPaid(cmd.TransactionRef(), now)
	})
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventOrderStatusChanged, o.ID(), o.SellerID())
	return nil
}

// MarkPaymentFailed records a declined payment. The buyer is told so they can pay again.
func (h PaymentCommandHandler) MarkPaymentFailed(ctx context.Context, cmd MarkPaymentFailedCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "MarkPaymentFailed", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventMarkPaymentFailed.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.MarkPaymentFailed(now)
	})
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventOrderStatusChanged, o.ID(), o.BuyerID())
	return nil
}
