package services_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPartySource struct{ mock.Mock }

func (m *MockPartySource) ListByRole(ctx context.Context, role party.Role, box kernel.BoundingBox) ([]*party.Party, error) {
	args := m.Called(ctx, role, box)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*party.Party), args.Error(1)
}

type MockOpenOrderSource struct{ mock.Mock }

func (m *MockOpenOrderSource) ListOpenForAssignment(
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

var now = time.Date(2025, 5, 2, 12, 0, 0, 0, time.UTC)

func point(t *testing.T, lat, lng float64) kernel.GeoPoint {
	t.Helper()
	p, err := kernel.NewGeoPoint(lat, lng)
	require.NoError(t, err)
	return p
}

type partyOpt func(*party.Params)

func unavailable(p *party.Params) { p.AvailableNow = false }
func inactive(p *party.Params)    { p.Active = false }
func noLocation(p *party.Params)  { p.Location = nil }

func newParty(t *testing.T, role party.Role, at kernel.GeoPoint, opts ...partyOpt) *party.Party {
	t.Helper()
	params := party.Params{
		ID:           kernel.NewUUID(),
		Roles:        party.NewRoleSet(role),
		Active:       true,
		AvailableNow: true,
		Location:     &at,
		UpdatedAt:    now,
	}
	for _, opt := range opts {
		opt(&params)
	}
	p, err := party.NewParty(params)
	require.NoError(t, err)
	return p
}

func schedule(t *testing.T) pricing.FeeSchedule {
	t.Helper()
	s, err := pricing.NewFeeSchedule(pricing.FeeScheduleParams{
		PlatformRate:    decimal.RequireFromString("0.10"),
		DeliveryBaseFee: decimal.RequireFromString("2.00"),
		DeliveryPerKm:   decimal.RequireFromString("0.50"),
		DeliveryMinFee:  decimal.RequireFromString("3.00"),
		BrokerRate:      decimal.RequireFromString("0.02"),
	})
	require.NoError(t, err)
	return s
}

// readyDeliveryOrder returns a Delivery order sitting in InTransit with an
// open courier window.
func readyDeliveryOrder(t *testing.T, pickup kernel.GeoPoint) *order.Order {
	t.Helper()
	o := newOrder(t, order.Product, order.Delivery, pickup)
	seller := o.SellerID()
	require.NoError(t, o.Accept(seller, now))
	require.NoError(t, o.BeginPreparing(seller, now))
	require.NoError(t, o.MarkReady(seller, now))
	require.True(t, o.IsOpenFor(party.Courier))
	return o
}

func newOrder(t *testing.T, orderType order.Type, deliveryType order.DeliveryType, pickup kernel.GeoPoint) *order.Order {
	t.Helper()
	item, err := order.NewItem(order.ItemParams{
		ID: kernel.NewUUID(), Name: "Lamp", Quantity: 1, UnitPrice: decimal.RequireFromString("40.00"),
	})
	require.NoError(t, err)

	dropoff := point(t, pickup.Lat()+0.01, pickup.Lng())
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
		PaymentMethod: "card",
		CreatedAt:     now,
	}, schedule(t))
	require.NoError(t, err)
	return o
}
