package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// CancelOrderCommandHandler cancels a non-terminal order. A paid order is
// refunded as part of the same change. Everybody else on the order is told.
type CancelOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewCancelOrderCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) CancelOrderCommandHandler {
	return CancelOrderCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

func (h CancelOrderCommandHandler) Handle(ctx context.Context, cmd CancelOrderCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "CancelOrder", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventCancel.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.Cancel(cmd.ActorID(), cmd.Reason(), now)
	})
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventOrderCancelled, o.ID(), Counterparties(o, cmd.ActorID())...)
	return nil
}
