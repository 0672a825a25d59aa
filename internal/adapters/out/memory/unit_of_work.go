package memory

import (
	"context"
	"errors"
	"fmt"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"
)

// ErrNoTransaction mirrors gorm.ErrInvalidTransaction for Commit and Rollback
// without Begin.
var ErrNoTransaction = errors.New("no active transaction")

type UnitOfWorkFactory struct {
	store *Store
}

func NewUnitOfWorkFactory(store *Store) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{store: store}
}

func (f *UnitOfWorkFactory) Create() ports.UnitOfWork {
	return &UnitOfWork{store: f.store}
}

// stagedOrder is an order write waiting for Commit. expected is the version
// the store must still hold; zero means the order must not exist yet.
type stagedOrder struct {
	snapshot order.Snapshot
	expected int64
}

// UnitOfWork buffers writes between Begin and Commit and applies them
// atomically under the store lock. Version conflicts are reported as early
// as Update and checked again on Commit, so of two units of work racing for
// the same order exactly one commits. Without Begin every write is applied
// immediately.
type UnitOfWork struct {
	store   *Store
	active  bool
	orders  map[kernel.UUID]stagedOrder
	parties map[kernel.UUID]party.Params
}

func (uow *UnitOfWork) Begin(_ context.Context) error {
	if uow.active {
		return nil
	}
	uow.active = true
	uow.orders = make(map[kernel.UUID]stagedOrder)
	uow.parties = make(map[kernel.UUID]party.Params)
	return nil
}

func (uow *UnitOfWork) Commit(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	defer uow.reset()
	return uow.apply(uow.orders, uow.parties)
}

func (uow *UnitOfWork) Rollback(_ context.Context) error {
	if !uow.active {
		return ErrNoTransaction
	}
	uow.reset()
	return nil
}

func (uow *UnitOfWork) OrderRepository() ports.OrderRepository {
	return &OrderRepository{uow: uow}
}

func (uow *UnitOfWork) PartyRegistry() ports.PartyRegistry {
	return &PartyRegistry{uow: uow}
}

func (uow *UnitOfWork) reset() {
	uow.active = false
	uow.orders = nil
	uow.parties = nil
}

func (uow *UnitOfWork) stageOrder(s stagedOrder) error {
	if err := uow.check(s); err != nil {
		return err
	}
	if !uow.active {
		return uow.apply(map[kernel.UUID]stagedOrder{s.snapshot.ID: s}, nil)
	}
	// Commit checks against the version read from the store, not the
	// intermediate one staged here.
	if staged, ok := uow.orders[s.snapshot.ID]; ok {
		s.expected = staged.expected
	}
	uow.orders[s.snapshot.ID] = s
	return nil
}

func (uow *UnitOfWork) stageParty(p party.Params) error {
	if !uow.active {
		return uow.apply(nil, map[kernel.UUID]party.Params{p.ID: p})
	}
	if staged, ok := uow.parties[p.ID]; ok && staged.UpdatedAt.After(p.UpdatedAt) {
		return nil
	}
	uow.parties[p.ID] = p
	return nil
}

// check compares a write with what this unit of work already staged, or
// else with the store.
func (uow *UnitOfWork) check(s stagedOrder) error {
	if staged, ok := uow.orders[s.snapshot.ID]; ok {
		return versionMatches(s, staged.snapshot.Version, true)
	}
	stored, ok := uow.store.order(s.snapshot.ID)
	return versionMatches(s, stored.Version, ok)
}

func (uow *UnitOfWork) apply(orders map[kernel.UUID]stagedOrder, parties map[kernel.UUID]party.Params) error {
	st := uow.store
	st.mu.Lock()
	defer st.mu.Unlock()

	for id, s := range orders {
		stored, ok := st.orders[id]
		if err := versionMatches(s, stored.Version, ok); err != nil {
			return err
		}
	}
	for id, s := range orders {
		st.orders[id] = s.snapshot
	}
	for _, p := range parties {
		st.putPartyLocked(p)
	}
	return nil
}

func versionMatches(s stagedOrder, current int64, exists bool) error {
	id := s.snapshot.ID.String()
	switch {
	case s.expected == 0 && exists:
		return errs.NewValueIsInvalidErrorWithCause("order", fmt.Errorf("order %s already exists", id))
	case s.expected == 0:
		return nil
	case !exists:
		return errs.NewObjectNotFoundError("order", id)
	case current != s.expected:
		return errs.NewVersionIsInvalidErrorWithCause("order",
			fmt.Errorf("stored version is %d, not %d", current, s.expected))
	default:
		return nil
	}
}

// lookupOrder prefers this unit of work's own writes.
func (uow *UnitOfWork) lookupOrder(id kernel.UUID) (order.Snapshot, bool) {
	if staged, ok := uow.orders[id]; ok {
		return staged.snapshot, true
	}
	return uow.store.order(id)
}

// visibleOrders overlays staged writes on the committed orders.
func (uow *UnitOfWork) visibleOrders() []order.Snapshot {
	committed := uow.store.orderSnapshots()
	out := make([]order.Snapshot, 0, len(committed)+len(uow.orders))
	for _, snap := range committed {
		if _, staged := uow.orders[snap.ID]; !staged {
			out = append(out, snap)
		}
	}
	for _, s := range uow.orders {
		out = append(out, s.snapshot)
	}
	return out
}

func (uow *UnitOfWork) lookupParty(id kernel.UUID) (party.Params, bool) {
	if p, ok := uow.parties[id]; ok {
		return p, true
	}
	return uow.store.party(id)
}

func (uow *UnitOfWork) visibleParties() []party.Params {
	committed := uow.store.partySnapshots()
	out := make([]party.Params, 0, len(committed)+len(uow.parties))
	for _, p := range committed {
		if _, staged := uow.parties[p.ID]; !staged {
			out = append(out, p)
		}
	}
	for _, p := range uow.parties {
		out = append(out, p)
	}
	return out
}
