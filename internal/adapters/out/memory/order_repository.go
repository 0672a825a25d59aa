package memory

import (
	"context"
	"slices"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"
)

type OrderRepository struct {
	uow *UnitOfWork
}

func (r *OrderRepository) Add(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	if err := r.uow.stageOrder(stagedOrder{snapshot: aggregate.Snapshot()}); err != nil {
		return err
	}
	aggregate.MarkPersisted()
	return nil
}

func (r *OrderRepository) Update(_ context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}
	staged := stagedOrder{snapshot: aggregate.Snapshot(), expected: aggregate.ExpectedVersion()}
	if staged.expected == 0 {
		return errs.NewObjectNotFoundError("order", aggregate.ID().String())
	}
	if err := r.uow.stageOrder(staged); err != nil {
		return err
	}
	aggregate.MarkPersisted()
	return nil
}

func (r *OrderRepository) Get(_ context.Context, id kernel.UUID) (*order.Order, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	snap, ok := r.uow.lookupOrder(id)
	if !ok {
		return nil, errs.NewObjectNotFoundError("order", id.String())
	}
	return order.RestoreOrder(snap)
}

func (r *OrderRepository) ListOpenForAssignment(
	_ context.Context,
	role party.Role,
	box kernel.BoundingBox,
) ([]*order.Order, error) {
	return r.list(role, func(snap order.Snapshot, opened time.Time) bool {
		pickup := snap.Delivery.Pickup
		return box.IsWholeGlobe() || (pickup != nil && box.Contains(*pickup))
	})
}

func (r *OrderRepository) ListAssignmentExpired(
	_ context.Context,
	role party.Role,
	openedBefore time.Time,
) ([]*order.Order, error) {
	return r.list(role, func(_ order.Snapshot, opened time.Time) bool {
		return opened.Before(openedBefore)
	})
}

// list returns non-terminal orders with an open window for role that pass
// keep, oldest window first.
func (r *OrderRepository) list(role party.Role, keep func(order.Snapshot, time.Time) bool) ([]*order.Order, error) {
	if !role.IsAssignable() {
		return nil, errs.NewRoleNotApplicableError(role.String(), "role is not filled by acceptance")
	}

	var out []*order.Order
	for _, snap := range r.uow.visibleOrders() {
		opened := windowOf(snap, role)
		if opened == nil || snap.Status.IsTerminal() || !keep(snap, *opened) {
			continue
		}
		o, err := order.RestoreOrder(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, o)
	}

	slices.SortFunc(out, func(a, b *order.Order) int {
		if c := a.AssignmentWindowOpenedAt(role).Compare(*b.AssignmentWindowOpenedAt(role)); c != 0 {
			return c
		}
		return compareIDs(a.ID(), b.ID())
	})
	return out, nil
}

func windowOf(snap order.Snapshot, role party.Role) *time.Time {
	if role == party.Courier {
		return snap.CourierWindowOpenedAt
	}
	return snap.BrokerWindowOpenedAt
}
