package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// BeginPreparingCommandHandler moves a Confirmed order to Preparing.
type BeginPreparingCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewBeginPreparingCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) BeginPreparingCommandHandler {
	return BeginPreparingCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

func (h BeginPreparingCommandHandler) Handle(ctx context.Context, cmd BeginPreparingCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "BeginPreparing", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventBeginPreparing.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.BeginPreparing(cmd.ActorID(), now)
	})
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventOrderStatusChanged, o.ID(), o.BuyerID())
	return nil
}
