package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// assignableRoles are the slots filled by acceptance, in broadcast order.
var assignableRoles = []party.Role{party.Courier, party.Broker}

// AssignmentWindowsCommandHandler keeps open role slots moving: it
// re-announces them to fresh candidates and tells sellers about windows that
// stayed open too long.
type AssignmentWindowsCommandHandler struct {
	uowFactory OrderUoWFactory
	orders     ports.OrderRepository
	announcer  *Announcer
	logger     *slog.Logger
}

func NewAssignmentWindowsCommandHandler(
	uowFactory OrderUoWFactory,
	orders ports.OrderRepository,
	announcer *Announcer,
	logger *slog.Logger,
) AssignmentWindowsCommandHandler {
	return AssignmentWindowsCommandHandler{
		uowFactory: uowFactory,
		orders:     orders,
		announcer:  announcer,
		logger:     logger.With("component", "assignment_windows"),
	}
}

// Broadcast returns the number of candidates notified.
func (h AssignmentWindowsCommandHandler) Broadcast(ctx context.Context, cmd BroadcastAssignmentsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	notified := 0
	for _, role := range assignableRoles {
		open, err := h.orders.ListOpenForAssignment(ctx, role, kernel.WholeGlobe())
		if err != nil {
			return notified, err
		}
		for _, o := range open {
			notified += h.announcer.OpenAssignment(ctx, o, role)
		}
	}
	return notified, nil
}

// Expire notifies the seller of every window open for longer than the TTL
// and restarts the window, so each expiry is reported once per TTL. Orders
// that changed in between (typically because someone accepted) are skipped.
// It returns the number of windows expired.
func (h AssignmentWindowsCommandHandler) Expire(ctx context.Context, cmd ExpireAssignmentWindowsCommand) (int, error) {
	if err := cmd.Validate(); err != nil {
		return 0, err
	}

	cutoff := time.Now().UTC().Add(-cmd.TTL())
	expired := 0
	var failures []error

	for _, role := range assignableRoles {
		stale, err := h.orders.ListAssignmentExpired(ctx, role, cutoff)
		if err != nil {
			return expired, err
		}

		for _, o := range stale {
			renewed, err := changeOrder(ctx, h.uowFactory, o.ID(), func(o *order.Order, now time.Time) error {
				return o.RenewAssignmentWindow(role, now)
			})
			if errs.IsExpected(err) {
				h.logger.DebugContext(ctx, "window changed before expiry", "orderId", o.ID().String(), "error", err)
				continue
			}
			if err != nil {
				failures = append(failures, err)
				continue
			}

			expired++
			h.announcer.Notify(ctx, ports.EventAssignmentExpired, renewed.ID(), renewed.SellerID())
		}
	}

	return expired, errors.Join(failures...)
}
