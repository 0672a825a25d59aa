package commands_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListOpenForAssignment(
	ctx context.Context,
	role party.Role,
	box kernel.BoundingBox,
) ([]*order.Order, error) {
	args := m.Called(ctx, role, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

func (m *MockOrderRepository) ListAssignmentExpired(
	ctx context.Context,
	role party.Role,
	openedBefore time.Time,
) ([]*order.Order, error) {
	args := m.Called(ctx, role, openedBefore)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockPartyRegistry struct{ mock.Mock }

func (m *MockPartyRegistry) GetParty(ctx context.Context, id kernel.UUID) (*party.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyRegistry) ListByRole(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*party.Party, error) {
	args := m.Called(ctx, role, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

func (m *MockPartyRegistry) Upsert(ctx context.Context, p *party.Party) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockUoW satisfies every unit of work flavour the handlers ask for.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) PartyRegistry() ports.PartyRegistry {
	args := m.Called()
	return args.Get(0).(ports.PartyRegistry)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPartyUoWFactory struct{ mock.Mock }

func (m *MockPartyUoWFactory) Create() commands.PartyUoW {
	args := m.Called()
	return args.Get(0).(commands.PartyUoW)
}

type MockUoWFactory struct{ mock.Mock }

func (m *MockUoWFactory) Create() commands.UoW {
	args := m.Called()
	return args.Get(0).(commands.UoW)
}

type MockNotifier struct{ mock.Mock }

func (m *MockNotifier) Notify(ctx context.Context, partyID kernel.UUID, kind ports.EventKind, orderID kernel.UUID) error {
	args := m.Called(ctx, partyID, kind, orderID)
	return args.Error(0)
}

type MockReviewSink struct{ mock.Mock }

func (m *MockReviewSink) RecordCompletion(ctx context.Context, orderID kernel.UUID) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

type MockCatalog struct{ mock.Mock }

func (m *MockCatalog) GetPriceableItem(ctx context.Context, id string) (ports.CatalogItem, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(ports.CatalogItem), args.Error(1)
}

type MockGeocoder struct{ mock.Mock }

func (m *MockGeocoder) Geocode(ctx context.Context, address string) (kernel.GeoPoint, error) {
	args := m.Called(ctx, address)
	return args.Get(0).(kernel.GeoPoint), args.Error(1)
}

type MockIdempotencyStore struct{ mock.Mock }

func (m *MockIdempotencyStore) Reserve(
	ctx context.Context,
	scope kernel.UUID,
	key string,
	orderID kernel.UUID,
) (kernel.UUID, bool, error) {
	args := m.Called(ctx, scope, key, orderID)
	return args.Get(0).(kernel.UUID), args.Bool(1), args.Error(2)
}

func (m *MockIdempotencyStore) Release(ctx context.Context, scope kernel.UUID, key string) error {
	args := m.Called(ctx, scope, key)
	return args.Error(0)
}

// fixture holds the collaborators shared by handler tests. The announcer
// searches candidates through parties and reports through notifier.
type fixture struct {
	repo     *MockOrderRepository
	parties  *MockPartyRegistry
	uow      *MockUoW
	notifier *MockNotifier
}

func newFixture() *fixture {
	return &fixture{
		repo:     new(MockOrderRepository),
		parties:  new(MockPartyRegistry),
		uow:      new(MockUoW),
		notifier: new(MockNotifier),
	}
}

func (f *fixture) announcer() *commands.Announcer {
	dispatcher := services.NewRoleDispatcher(services.NewProximityIndex(f.parties), 10, 5)
	return commands.NewAnnouncer(dispatcher, f.notifier, slog.New(slog.DiscardHandler))
}

func (f *fixture) orderFactory() *MockOrderUoWFactory {
	factory := new(MockOrderUoWFactory)
	factory.On("Create").Return(f.uow)
	return factory
}

func (f *fixture) uowFactory() *MockUoWFactory {
	factory := new(MockUoWFactory)
	factory.On("Create").Return(f.uow)
	return factory
}

func (f *fixture) assertExpectations(t *testing.T) {
	t.Helper()
	f.repo.AssertExpectations(t)
	f.parties.AssertExpectations(t)
	f.uow.AssertExpectations(t)
	f.notifier.AssertExpectations(t)
}

var store = point(52.5200, 13.4050)

func point(lat, lng float64) kernel.GeoPoint {
	p, err := kernel.NewGeoPoint(lat, lng)
	if err != nil {
		panic(err)
	}
	return p
}

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

func newParty(t *testing.T, role party.Role, at kernel.GeoPoint, active bool) *party.Party {
	t.Helper()
	p, err := party.NewParty(party.Params{
		ID:           kernel.NewUUID(),
		Roles:        party.NewRoleSet(role),
		Active:       active,
		AvailableNow: true,
		Location:     &at,
		UpdatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return p
}

// newOrder creates a Pending order with a single ten euro line.
func newOrder(t *testing.T, orderType order.Type, deliveryType order.DeliveryType) *order.Order {
	t.Helper()
	item, err := order.NewItem(order.ItemParams{
		ID:        kernel.NewUUID(),
		Name:      "Espresso beans",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("10.00"),
	})
	require.NoError(t, err)

	pickup := store
	dropoff := point(52.5300, 13.4100)
	now := time.Now().UTC()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:       kernel.NewUUID(),
		Number:   order.NewNumber(now),
		BuyerID:  kernel.NewUUID(),
		SellerID: kernel.NewUUID(),
		Type:     orderType,
		Items:    []order.Item{item},
		Delivery: order.DeliveryContext{
			Type:    deliveryType,
			Pickup:  &pickup,
			Dropoff: &dropoff,
		},
		CreatedAt: now,
	}, schedule(t))
	require.NoError(t, err)
	return o
}

// preparingOrder is a Delivery order the seller is working on.
func preparingOrder(t *testing.T) *order.Order {
	t.Helper()
	o := newOrder(t, order.Product, order.Delivery)
	now := time.Now().UTC()
	require.NoError(t, o.Accept(o.SellerID(), now))
	require.NoError(t, o.BeginPreparing(o.SellerID(), now))
	return o
}

// readyDeliveryOrder is in transit with the courier window open.
func readyDeliveryOrder(t *testing.T) *order.Order {
	t.Helper()
	o := preparingOrder(t)
	require.NoError(t, o.MarkReady(o.SellerID(), time.Now().UTC()))
	require.True(t, o.IsOpenFor(party.Courier))
	return o
}

// expectChange sets up the load-mutate-save sequence of a single order change.
func (f *fixture) expectChange(o *order.Order) {
	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.repo.On("Update", mock.Anything, o).Return(nil).Once(),
		f.uow.On("Commit", mock.Anything).Return(nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

var sellerAtTime = time.Date(2025, 5, 2, 9, 0, 0, 0, time.UTC)
