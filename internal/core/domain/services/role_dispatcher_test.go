package services_test

import (
	"errors"
	"testing"

	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestRoleDispatcher_Dispatch(t *testing.T) {
	ctx := t.Context()
	pickup := point(t, 41.9028, 12.4964)
	o := readyDeliveryOrder(t, pickup)

	a := newParty(t, party.Courier, point(t, 41.903, 12.4964))
	b := newParty(t, party.Courier, point(t, 41.91, 12.4964))
	c := newParty(t, party.Courier, point(t, 41.92, 12.4964))

	source := new(MockPartySource)
	source.On("ListByRole", ctx, party.Courier, mock.Anything).Return([]*party.Party{c, b, a}, nil).Once()

	dispatcher := services.NewRoleDispatcher(services.NewProximityIndex(source), 10, 2)
	got, err := dispatcher.Dispatch(ctx, o, party.Courier)

	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, a.ID(), got[0].PartyID)
	assert.Equal(t, b.ID(), got[1].PartyID)
}

func TestRoleDispatcher_NeverOffersTheSlotToTheOrdersOwnParties(t *testing.T) {
	ctx := t.Context()
	pickup := point(t, 41.9028, 12.4964)
	o := newOrder(t, order.PropertySale, order.Pickup, pickup)

	seller, err := party.NewParty(party.Params{
		ID: o.SellerID(), Roles: party.NewRoleSet(party.Seller, party.Broker),
		Active: true, AvailableNow: true, Location: &pickup, UpdatedAt: now,
	})
	require.NoError(t, err)
	other := newParty(t, party.Broker, point(t, 41.95, 12.4964))

	source := new(MockPartySource)
	source.On("ListByRole", ctx, party.Broker, mock.Anything).Return([]*party.Party{seller, other}, nil).Once()

	got, err := services.NewRoleDispatcher(services.NewProximityIndex(source), 25, 5).Dispatch(ctx, o, party.Broker)

	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, other.ID(), got[0].PartyID)
}

func TestRoleDispatcher_Errors(t *testing.T) {
	pickup := point(t, 41.9028, 12.4964)

	tests := []struct {
		name    string
		order   func(t *testing.T) *order.Order
		role    party.Role
		parties []*party.Party
		wantErr error
	}{
		{
			name:    "courier window not open yet",
			order:   func(t *testing.T) *order.Order { return newOrder(t, order.Product, order.Delivery, pickup) },
			role:    party.Courier,
			wantErr: errs.ErrInvalidTransition,
		},
		{
			name:    "broker on a product order",
			order:   func(t *testing.T) *order.Order { return readyDeliveryOrder(t, pickup) },
			role:    party.Broker,
			wantErr: errs.ErrRoleNotApplicable,
		},
		{
			name: "courier slot already filled",
			order: func(t *testing.T) *order.Order {
				o := readyDeliveryOrder(t, pickup)
				require.NoError(t, o.AssignRole(party.Courier, newParty(t, party.Courier, pickup).ID(), schedule(t), now))
				return o
			},
			role:    party.Courier,
			wantErr: errs.ErrRoleAlreadyAssigned,
		},
		{
			name:    "nobody around",
			order:   func(t *testing.T) *order.Order { return readyDeliveryOrder(t, pickup) },
			role:    party.Courier,
			parties: []*party.Party{newParty(t, party.Courier, point(t, 45, 12.4964))},
			wantErr: services.ErrCandidateNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			source := new(MockPartySource)
			source.On("ListByRole", ctx, tt.role, mock.Anything).Return(tt.parties, nil).Maybe()

			_, err := services.NewRoleDispatcher(services.NewProximityIndex(source), 5, 3).Dispatch(ctx, tt.order(t), tt.role)

			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestRoleDispatcher_SourceFailure(t *testing.T) {
	ctx := t.Context()
	o := readyDeliveryOrder(t, point(t, 1, 1))
	source := new(MockPartySource)
	source.On("ListByRole", ctx, party.Courier, mock.Anything).Return(nil, errors.New("db down")).Once()

	_, err := services.NewRoleDispatcher(services.NewProximityIndex(source), 5, 3).Dispatch(ctx, o, party.Courier)

	require.EqualError(t, err, "db down")
}
