package commands

import (
	"context"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// CompleteOrderCommandHandler closes a Delivered order for its buyer.
//
// The review sink is told exactly once per order: only the call that moves
// the order into Completed reaches it, because a repeated Complete fails with
// a TerminalStateError before anything is written. A failing sink is logged;
// the completion itself stands.
type CompleteOrderCommandHandler struct {
	uowFactory OrderUoWFactory
	reviews    ports.ReviewSink
	announcer  *Announcer
	logger     *slog.Logger
}

func NewCompleteOrderCommandHandler(
	uowFactory OrderUoWFactory,
	reviews ports.ReviewSink,
	announcer *Announcer,
	logger *slog.Logger,
) CompleteOrderCommandHandler {
	return CompleteOrderCommandHandler{
		uowFactory: uowFactory,
		reviews:    reviews,
		announcer:  announcer,
		logger:     logger.With("component", "complete_order"),
	}
}

func (h CompleteOrderCommandHandler) Handle(ctx context.Context, cmd CompleteOrderCommand) (err error) {
	if err = cmd.Validate(); err != nil {
		return err
	}

	ctx, end := startSpan(ctx, "CompleteOrder", cmd.OrderID())
	defer func() {
		metrics.RecordTransition(order.EventComplete.String(), outcomeOf(err))
		end(err)
	}()

	o, err := changeOrder(ctx, h.uowFactory, cmd.OrderID(), func(o *order.Order, now time.Time) error {
		return o.Complete(cmd.ActorID(), now)
	})
	if err != nil {
		return err
	}

	if reviewErr := h.reviews.RecordCompletion(ctx, o.ID()); reviewErr != nil {
		h.logger.ErrorContext(ctx, "review sink rejected completion", "orderId", o.ID().String(), "error", reviewErr)
	}

	h.announcer.Notify(ctx, ports.EventOrderStatusChanged, o.ID(), Counterparties(o, cmd.ActorID())...)
	return nil
}
