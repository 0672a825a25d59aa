package commands

import (
	"context"
	"errors"
	"log/slog"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/metrics"
)

// Announcer sends fire-and-forget notifications after a command committed.
// Failures are logged and counted, never returned: the order change already
// happened and the sink gives no delivery guarantee.
type Announcer struct {
	dispatcher services.RoleDispatcher
	notifier   ports.Notifier
	logger     *slog.Logger
}

func NewAnnouncer(dispatcher services.RoleDispatcher, notifier ports.Notifier, logger *slog.Logger) *Announcer {
	return &Announcer{
		dispatcher: dispatcher,
		notifier:   notifier,
		logger:     logger.With("component", "announcer"),
	}
}

// Notify tells each party about kind on orderID.
func (a *Announcer) Notify(ctx context.Context, kind ports.EventKind, orderID kernel.UUID, parties ...kernel.UUID) {
	for _, id := range parties {
		err := a.notifier.Notify(ctx, id, kind, orderID)
		metrics.RecordNotification(string(kind), outcomeOf(err))
		if err != nil {
			a.logger.WarnContext(ctx, "notification not sent",
				"kind", kind, "orderId", orderID.String(), "partyId", id.String(), "error", err)
		}
	}
}

// OpenAssignment publishes an open role slot to the nearest eligible
// candidates and returns how many were told. Finding nobody is normal; the
// broadcast job tries again later.
func (a *Announcer) OpenAssignment(ctx context.Context, o *order.Order, role party.Role) int {
	candidates, err := a.dispatcher.Dispatch(ctx, o, role)
	if errors.Is(err, services.ErrCandidateNotFound) {
		a.logger.DebugContext(ctx, "no candidates near order", "orderId", o.ID().String(), "role", role.String())
		return 0
	}
	if err != nil {
		a.logger.WarnContext(ctx, "assignment not published",
			"orderId", o.ID().String(), "role", role.String(), "error", err)
		return 0
	}

	ids := make([]kernel.UUID, 0, len(candidates))
	for _, c := range candidates {
		ids = append(ids, c.PartyID)
	}
	a.Notify(ctx, ports.EventAssignmentOpened, o.ID(), ids...)
	return len(ids)
}

// Counterparties returns everyone on the order except actor.
func Counterparties(o *order.Order, actor kernel.UUID) []kernel.UUID {
	all := []kernel.UUID{o.BuyerID(), o.SellerID()}
	if id := o.CourierID(); id != nil {
		all = append(all, *id)
	}
	if id := o.BrokerID(); id != nil {
		all = append(all, *id)
	}

	out := all[:0]
	for _, id := range all {
		if !id.IsEqual(actor) {
			out = append(out, id)
		}
	}
	return out
}
