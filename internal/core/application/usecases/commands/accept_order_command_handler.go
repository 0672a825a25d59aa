package commands

import (
	"context"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// AcceptOrderCommandHandler moves a Pending order to Confirmed on behalf of
// its seller and tells the buyer.
//
// Example:
//
//	cmd, _ := NewAcceptOrderCommand(orderID, sellerID)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    // errs.ErrNotAuthorized, errs.ErrInvalidTransition, errs.ErrTerminalState ...
//	}
type AcceptOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	announcer  *Announcer
}

func NewAcceptOrderCommandHandler(uowFactory OrderUoWFactory, announcer *Announcer) AcceptOrderCommandHandler {
	return AcceptOrderCommandHandler{
		uowFactory: uowFactory,
		announcer:  announcer,
	}
}

func (h AcceptOrderCommandHandler) Handle(ctx context.Context, cmd AcceptOrderCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "AcceptOrder", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventAccept.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.Accept(cmd.ActorID(), now)
	})
	if err != nil {
		return err
	}

	h.announcer.Notify(ctx, ports.EventOrderStatusChanged, o.ID(), o.BuyerID())
	return nil
}
