package commands_test

import (
	"testing"
	"time"

	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAcceptRoleCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := readyDeliveryOrder(t)
	courier := newParty(t, party.Courier, store, true)
	totalBefore := o.Breakdown().Total

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("PartyRegistry").Return(f.parties).Once(),
		f.parties.On("GetParty", mock.Anything, courier.ID()).Return(courier, nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.repo.On("Update", mock.Anything, o).Return(nil).Once(),
		f.uow.On("Commit", mock.Anything).Return(nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)
	for _, id := range []kernel.UUID{o.BuyerID(), o.SellerID(), courier.ID()} {
		f.notifier.On("Notify", mock.Anything, id, ports.EventRoleAssigned, o.ID()).Return(nil).Once()
	}

	cmd, err := commands.NewAcceptRoleCommand(o.ID(), party.Courier, courier.ID())
	require.NoError(t, err)

	h := commands.NewAcceptRoleCommandHandler(f.uowFactory(), schedule(t), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))

	require.NotNil(t, o.CourierID())
	assert.Equal(t, courier.ID(), *o.CourierID())
	assert.False(t, o.IsOpenFor(party.Courier))
	assert.True(t, o.Breakdown().Total.GreaterThan(totalBefore), "delivery fee is added on acceptance")
	f.assertExpectations(t)
}

func TestAcceptRoleCommandHandler_Handle_CandidateRejected(t *testing.T) {
	tests := []struct {
		name      string
		candidate func(t *testing.T) *party.Party
		lookupErr bool
	}{
		{
			name:      "not registered",
			candidate: func(t *testing.T) *party.Party { return newParty(t, party.Courier, store, true) },
			lookupErr: true,
		},
		{
			name:      "lacks the role",
			candidate: func(t *testing.T) *party.Party { return newParty(t, party.Broker, store, true) },
		},
		{
			name:      "inactive",
			candidate: func(t *testing.T) *party.Party { return newParty(t, party.Courier, store, false) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newFixture()
			o := readyDeliveryOrder(t)
			candidate := tt.candidate(t)

			lookup := f.parties.On("GetParty", mock.Anything, candidate.ID())
			if tt.lookupErr {
				lookup.Return(nil, errs.NewObjectNotFoundError("party", candidate.ID()))
			} else {
				lookup.Return(candidate, nil)
			}
			mock.InOrder(
				f.uow.On("Begin", mock.Anything).Return(nil).Once(),
				f.uow.On("PartyRegistry").Return(f.parties).Once(),
				lookup.Once(),
				f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
			)

			cmd, err := commands.NewAcceptRoleCommand(o.ID(), party.Courier, candidate.ID())
			require.NoError(t, err)

			h := commands.NewAcceptRoleCommandHandler(f.uowFactory(), schedule(t), f.announcer())
			err = h.Handle(ctx, cmd)

			require.ErrorIs(t, err, errs.ErrNotAuthorized)
			assert.Nil(t, o.CourierID())
			f.repo.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestAcceptRoleCommandHandler_Handle_SlotAlreadyTaken(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := readyDeliveryOrder(t)
	winner := kernel.NewUUID()
	require.NoError(t, o.AssignRole(party.Courier, winner, schedule(t), time.Now().UTC()))
	late := newParty(t, party.Courier, store, true)

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("PartyRegistry").Return(f.parties).Once(),
		f.parties.On("GetParty", mock.Anything, late.ID()).Return(late, nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	cmd, err := commands.NewAcceptRoleCommand(o.ID(), party.Courier, late.ID())
	require.NoError(t, err)

	h := commands.NewAcceptRoleCommandHandler(f.uowFactory(), schedule(t), f.announcer())
	err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrRoleAlreadyAssigned)
	assert.Equal(t, winner, *o.CourierID())
	f.assertExpectations(t)
}

// The update loses the compare-and-set because someone else committed in
// between. The reload shows the slot filled, so the caller hears
// RoleAlreadyAssigned rather than a bare version conflict.
func TestAcceptRoleCommandHandler_Handle_LostRaceIsReportedAsAlreadyAssigned(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	seen := readyDeliveryOrder(t)
	current, err := order.RestoreOrder(seen.Snapshot())
	require.NoError(t, err)
	require.NoError(t, current.AssignRole(party.Courier, kernel.NewUUID(), schedule(t), time.Now().UTC()))
	courier := newParty(t, party.Courier, store, true)

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("PartyRegistry").Return(f.parties).Once(),
		f.parties.On("GetParty", mock.Anything, courier.ID()).Return(courier, nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, seen.ID()).Return(seen, nil).Once(),
		f.repo.On("Update", mock.Anything, seen).Return(errs.NewVersionIsInvalidError("order")).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, seen.ID()).Return(current, nil).Once(),
	)

	cmd, err := commands.NewAcceptRoleCommand(seen.ID(), party.Courier, courier.ID())
	require.NoError(t, err)

	h := commands.NewAcceptRoleCommandHandler(f.uowFactory(), schedule(t), f.announcer())
	err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrRoleAlreadyAssigned)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestAcceptRoleCommandHandler_Handle_BuyerCannotCourierOwnOrder(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := readyDeliveryOrder(t)
	buyer, err := party.NewParty(party.Params{
		ID:           o.BuyerID(),
		Roles:        party.NewRoleSet(party.Buyer, party.Courier),
		Active:       true,
		AvailableNow: true,
		UpdatedAt:    time.Now().UTC(),
	})
	require.NoError(t, err)

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("PartyRegistry").Return(f.parties).Once(),
		f.parties.On("GetParty", mock.Anything, buyer.ID()).Return(buyer, nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	cmd, err := commands.NewAcceptRoleCommand(o.ID(), party.Courier, buyer.ID())
	require.NoError(t, err)

	h := commands.NewAcceptRoleCommandHandler(f.uowFactory(), schedule(t), f.announcer())
	require.ErrorIs(t, h.Handle(ctx, cmd), errs.ErrNotAuthorized)
	assert.Nil(t, o.CourierID())
	f.assertExpectations(t)
}

func TestNewAcceptRoleCommand(t *testing.T) {
	orderID, candidateID := kernel.NewUUID(), kernel.NewUUID()

	tests := []struct {
		name    string
		role    party.Role
		order   kernel.UUID
		wantErr bool
	}{
		{name: "courier", role: party.Courier, order: orderID},
		{name: "broker", role: party.Broker, order: orderID},
		{name: "buyer is not accepted", role: party.Buyer, order: orderID, wantErr: true},
		{name: "missing order", role: party.Courier, order: kernel.UUID{}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := commands.NewAcceptRoleCommand(tt.order, tt.role, candidateID)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errs.IsValidation(err))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.role, cmd.Role())
			assert.Equal(t, candidateID, cmd.CandidateID())
			require.NoError(t, cmd.Validate())
		})
	}
}
