package memory_test

import (
	"log/slog"
	"sync"
	"testing"
	"time"

	"marketplace/internal/adapters/out/memory"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func schedule(t *testing.T) pricing.FeeSchedule {
	t.Helper()
	s, err := pricing.NewFeeSchedule(pricing.FeeScheduleParams{
		PlatformRate:    decimal.RequireFromString("0.10"),
		DeliveryBaseFee: decimal.RequireFromString("2.00"),
		DeliveryPerKm:   decimal.RequireFromString("0.50"),
		BrokerRate:      decimal.RequireFromString("0.02"),
	})
	require.NoError(t, err)
	return s
}

func point(t *testing.T, lat, lng float64) *kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return &p
}

func newOrder(t *testing.T, createdAt time.Time) *order.Order {
	t.Helper()
	item, err := order.NewItem(order.ItemParams{
		ID:        kernel.NewUUID(),
		Name:      "Espresso beans",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	o, err := order.NewOrder(order.NewOrderParams{
		ID:       kernel.NewUUID(),
		Number:   order.NewNumber(createdAt),
		BuyerID:  kernel.NewUUID(),
		SellerID: kernel.NewUUID(),
		Type:     order.Product,
		Items:    []order.Item{item},
		Delivery: order.DeliveryContext{
			Type:    order.Delivery,
			Pickup:  point(t, 52.5200, 13.4050),
			Dropoff: point(t, 52.5300, 13.4100),
		},
		CreatedAt: createdAt,
	}, schedule(t))
	require.NoError(t, err)
	return o
}

func readyOrder(t *testing.T) *order.Order {
	t.Helper()
	now := time.Now().UTC()
	o := newOrder(t, now)
	require.NoError(t, o.Accept(o.SellerID(), now))
	require.NoError(t, o.BeginPreparing(o.SellerID(), now))
	require.NoError(t, o.MarkReady(o.SellerID(), now))
	return o
}

func newCourier(t *testing.T, updatedAt time.Time) *party.Party {
	t.Helper()
	p, err := party.NewParty(party.Params{
		ID:           kernel.NewUUID(),
		Roles:        party.NewRoleSet(party.Courier),
		Active:       true,
		AvailableNow: true,
		Location:     point(t, 52.5210, 13.4060),
		UpdatedAt:    updatedAt,
	})
	require.NoError(t, err)
	return p
}

func TestUnitOfWork_CommitAndRollback(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())

	committed := newOrder(t, time.Now().UTC())
	uow := factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.OrderRepository().Add(ctx, committed))
	require.NoError(t, uow.Commit(ctx))

	discarded := newOrder(t, time.Now().UTC())
	uow = factory.Create()
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.OrderRepository().Add(ctx, discarded))
	_, err := uow.OrderRepository().Get(ctx, discarded.ID())
	require.NoError(t, err, "own writes are visible before commit")
	_, err = factory.Create().OrderRepository().Get(ctx, discarded.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound, "uncommitted writes are invisible to others")
	require.NoError(t, uow.Rollback(ctx))

	reader := factory.Create().OrderRepository()
	_, err = reader.Get(ctx, committed.ID())
	require.NoError(t, err)
	_, err = reader.Get(ctx, discarded.ID())
	require.ErrorIs(t, err, errs.ErrObjectNotFound)

	require.ErrorIs(t, uow.Commit(ctx), memory.ErrNoTransaction)
	require.ErrorIs(t, uow.Rollback(ctx), memory.ErrNoTransaction)
}

func TestOrderRepository_UpdateChecksVersion(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	o := newOrder(t, time.Now().UTC())
	require.NoError(t, factory.Create().OrderRepository().Add(ctx, o))

	stale, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)

	now := time.Now().UTC()
	require.NoError(t, o.Accept(o.SellerID(), now))
	require.NoError(t, factory.Create().OrderRepository().Update(ctx, o))

	require.NoError(t, stale.Cancel(stale.BuyerID(), "", now))
	err = factory.Create().OrderRepository().Update(ctx, stale)
	require.ErrorIs(t, err, errs.ErrVersionIsInvalid)

	got, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	assert.Equal(t, order.Confirmed, got.Status())
	assert.Equal(t, o.Version(), got.Version())
}

func TestOrderRepository_UpdateUnknownOrder(t *testing.T) {
	ctx := t.Context()
	o := newOrder(t, time.Now().UTC())
	o.MarkPersisted()

	err := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().OrderRepository().Update(ctx, o)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestOrderRepository_ListOpenForAssignment(t *testing.T) {
	ctx := t.Context()
	factory := memory.NewUnitOfWorkFactory(memory.NewStore())
	open := readyOrder(t)
	pending := newOrder(t, time.Now().UTC())
	repo := factory.Create().OrderRepository()
	require.NoError(t, repo.Add(ctx, open))
	require.NoError(t, repo.Add(ctx, pending))

	box := kernel.BoundingBoxAround(*point(t, 52.52, 13.405), 1)
	got, err := repo.ListOpenForAssignment(ctx, party.Courier, box)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, open.ID(), got[0].ID())

	far := kernel.BoundingBoxAround(*point(t, 48.1351, 11.582), 1)
	got, err = repo.ListOpenForAssignment(ctx, party.Courier, far)
	require.NoError(t, err)
	assert.Empty(t, got)

	expired, err := repo.ListAssignmentExpired(ctx, party.Courier, time.Now().UTC().Add(time.Minute))
	require.NoError(t, err)
	require.Len(t, expired, 1)

	_, err = repo.ListOpenForAssignment(ctx, party.Seller, box)
	require.ErrorIs(t, err, errs.ErrRoleNotApplicable)
}

func TestPartyRegistry_UpsertKeepsNewest(t *testing.T) {
	ctx := t.Context()
	registry := memory.NewUnitOfWorkFactory(memory.NewStore()).Create().PartyRegistry()
	now := time.Now().UTC()

	newer := newCourier(t, now)
	older, err := party.NewParty(party.Params{
		ID:        newer.ID(),
		Roles:     party.NewRoleSet(party.Broker),
		UpdatedAt: now.Add(-time.Minute),
	})
	require.NoError(t, err)

	require.NoError(t, registry.Upsert(ctx, newer))
	require.NoError(t, registry.Upsert(ctx, older))

	got, err := registry.GetParty(ctx, newer.ID())
	require.NoError(t, err)
	assert.True(t, got.Roles().Has(party.Courier))
	assert.True(t, got.IsActive())

	listed, err := registry.ListByRole(ctx, party.Courier, kernel.WholeGlobe())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestReadModel_ListOrdersAndSales(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	repo := memory.NewUnitOfWorkFactory(store).Create().OrderRepository()
	rm := memory.NewReadModel(store)

	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	first := newOrder(t, base)
	second := newOrder(t, base.Add(time.Hour))
	require.NoError(t, repo.Add(ctx, first))
	require.NoError(t, repo.Add(ctx, second))

	buyer := first.BuyerID()
	got, err := rm.ListOrders(ctx, ports.OrderFilter{PartyID: &buyer, Role: party.Buyer})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, first.ID(), got[0].ID)

	all, err := rm.ListOrders(ctx, ports.OrderFilter{Statuses: []order.Status{order.Pending}, Limit: 1})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, second.ID(), all[0].ID, "newest first")

	sales, err := rm.SellerSales(ctx, first.SellerID(), base.Add(-time.Hour), base.Add(time.Hour))
	require.NoError(t, err)
	assert.Zero(t, sales.OrderCount, "pending orders are not sales")
	assert.True(t, sales.Total.IsZero())
}

func TestIdempotencyStore_ReserveAndRelease(t *testing.T) {
	ctx := t.Context()
	store := memory.NewIdempotencyStore()
	buyer := kernel.NewUUID()
	first, second := kernel.NewUUID(), kernel.NewUUID()

	bound, reserved, err := store.Reserve(ctx, buyer, "key-1", first)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Equal(t, first, bound)

	bound, reserved, err = store.Reserve(ctx, buyer, "key-1", second)
	require.NoError(t, err)
	assert.False(t, reserved)
	assert.Equal(t, first, bound)

	_, reserved, err = store.Reserve(ctx, kernel.NewUUID(), "key-1", second)
	require.NoError(t, err)
	assert.True(t, reserved, "keys are scoped per buyer")

	require.NoError(t, store.Release(ctx, buyer, "key-1"))
	bound, reserved, err = store.Reserve(ctx, buyer, "key-1", second)
	require.NoError(t, err)
	assert.True(t, reserved)
	assert.Equal(t, second, bound)
}

type uowFactory struct {
	factory *memory.UnitOfWorkFactory
}

func (f uowFactory) Create() commands.UoW {
	return f.factory.Create()
}

// Many couriers accept the same order at once. Exactly one wins and every
// other one is told the slot is taken.
func TestAcceptRole_ConcurrentCandidates_ExactlyOneWins(t *testing.T) {
	ctx := t.Context()
	store := memory.NewStore()
	factory := memory.NewUnitOfWorkFactory(store)
	logger := slog.New(slog.DiscardHandler)

	o := readyOrder(t)
	require.NoError(t, factory.Create().OrderRepository().Add(ctx, o))

	const candidates = 16
	couriers := make([]*party.Party, candidates)
	for i := range couriers {
		couriers[i] = newCourier(t, time.Now().UTC())
		require.NoError(t, factory.Create().PartyRegistry().Upsert(ctx, couriers[i]))
	}

	index := services.NewProximityIndex(factory.Create().PartyRegistry())
	announcer := commands.NewAnnouncer(services.NewRoleDispatcher(index, 10, 5), memory.NewLogNotifier(logger), logger)
	handler := commands.NewAcceptRoleCommandHandler(uowFactory{factory}, schedule(t), announcer)

	var (
		wg      sync.WaitGroup
		results = make([]error, candidates)
	)
	for i, c := range couriers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cmd, err := commands.NewAcceptRoleCommand(o.ID(), party.Courier, c.ID())
			if err != nil {
				results[i] = err
				return
			}
			results[i] = handler.Handle(ctx, cmd)
		}()
	}
	wg.Wait()

	winners := 0
	var winner kernel.UUID
	for i, err := range results {
		if err == nil {
			winners++
			winner = couriers[i].ID()
			continue
		}
		assert.ErrorIs(t, err, errs.ErrRoleAlreadyAssigned)
	}
	require.Equal(t, 1, winners)

	stored, err := factory.Create().OrderRepository().Get(ctx, o.ID())
	require.NoError(t, err)
	require.NotNil(t, stored.CourierID())
	assert.Equal(t, winner, *stored.CourierID())
	assert.False(t, stored.IsOpenFor(party.Courier))
	assert.True(t, stored.Breakdown().DeliveryFee.IsPositive())
}
