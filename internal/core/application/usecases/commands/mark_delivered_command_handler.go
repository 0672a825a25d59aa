package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// MarkDeliveredCommandHandler moves an InTransit or ReadyForPickup order to Delivered.
type MarkDeliveredCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewMarkDeliveredCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) MarkDeliveredCommandHandler {
	return MarkDeliveredCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

func (h MarkDeliveredCommandHandler) Handle(ctx context.Context, cmd MarkDeliveredCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "MarkDelivered", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventMarkDelivered.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.MarkDelivered(cmd.ActorID(), now)
	})
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventOrderStatusChanged, o.ID(), Counterparties(o, cmd.ActorID())...)
	return nil
}
