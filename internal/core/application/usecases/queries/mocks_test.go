package queries_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderReader struct{ mock.Mock }

func (m *MockOrderReader) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderReader) ListOpenForAssignment(
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

type MockPartyReader struct{ mock.Mock }

func (m *MockPartyReader) GetParty(ctx context.Context, id kernel.UUID) (*party.Party, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*party.Party), args.Error(1)
}

func (m *MockPartyReader) ListByRole(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*party.Party, error) {
	args := m.Called(ctx, role, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

type MockOrderReadModel struct{ mock.Mock }

func (m *MockOrderReadModel) ListOrders(ctx context.Context, filter ports.OrderFilter) ([]ports.OrderSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ports.OrderSummary), args.Error(1)
}

func (m *MockOrderReadModel) SellerSales(
	ctx context.Context,
	sellerID kernel.UUID,
	from, to time.Time,
) (ports.SalesSummary, error) {
	args := m.Called(ctx, sellerID, from, to)
	return args.Get(0).(ports.SalesSummary), args.Error(1)
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

func newParty(t *testing.T, roles party.RoleSet, at *kernel.GeoPoint, active bool) *party.Party {
	t.Helper()
	p, err := party.NewParty(party.Params{
		ID:           kernel.NewUUID(),
		Roles:        roles,
		Active:       active,
		AvailableNow: true,
		Location:     at,
		UpdatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)
	return p
}

// newOrder creates a Pending order of type t priced at 100 with pickup at
// store and dropoff one km or so north-east.
func newOrder(t *testing.T, orderType order.Type, deliveryType order.DeliveryType) *order.Order {
	t.Helper()
	item, err := order.NewItem(order.ItemParams{
		ID:        kernel.NewUUID(),
		Name:      "Listing",
		Quantity:  1,
		UnitPrice: decimal.RequireFromString("100"),
	})
	require.NoError(t, err)

	pickup, dropoff := store, point(52.5300, 13.4100)
	now := time.Now().UTC()
	o, err := order.NewOrder(order.NewOrderParams{
		ID:        kernel.NewUUID(),
		Number:    order.NewNumber(now),
		BuyerID:   kernel.NewUUID(),
		SellerID:  kernel.NewUUID(),
		Type:      orderType,
		Items:     []order.Item{item},
		Delivery:  order.DeliveryContext{Type: deliveryType, Pickup: &pickup, Dropoff: &dropoff},
		CreatedAt: now,
	}, schedule(t))
	require.NoError(t, err)
	return o
}
