package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// MarkReadyCommandHandler moves a Preparing order to ReadyForPickup or
// InTransit depending on its delivery type.
//
// Business rules:
//   - a Delivery order without a courier opens the courier window
//   - once the change is committed the window is published to the nearest
//     eligible couriers; no courier is bound here
type MarkReadyCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewMarkReadyCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) MarkReadyCommandHandler {
	return MarkReadyCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

func (h MarkReadyCommandHandler) Handle(ctx context.Context, cmd MarkReadyCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "MarkReady", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventMarkReady.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.MarkReady(cmd.ActorID(), now)
	})
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventOrderStatusChanged, o.ID(), o.BuyerID())
	if o.IsOpenFor(party.Courier) {
		h.announcer.OpenAssignment(ctx, o, party.Courier)
	}
	return nil
}
