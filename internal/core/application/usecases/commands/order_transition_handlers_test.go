package commands_test

import (
	"errors"
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

func TestAcceptOrderCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := newOrder(t, order.Product, order.Pickup)
	f.expectChange(o)
	f.notifier.On("Notify", mock.Anything, o.BuyerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()

	cmd, err := commands.NewAcceptOrderCommand(o.ID(), o.SellerID())
	require.NoError(t, err)

	h := commands.NewAcceptOrderCommandHandler(f.orderFactory(), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Confirmed, o.Status())
	f.assertExpectations(t)
}

func TestAcceptOrderCommandHandler_Handle_WrongActorWritesNothing(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := newOrder(t, order.Product, order.Pickup)
	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	cmd, err := commands.NewAcceptOrderCommand(o.ID(), o.BuyerID())
	require.NoError(t, err)

	h := commands.NewAcceptOrderCommandHandler(f.orderFactory(), f.announcer())
	err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrNotAuthorized)
	assert.Equal(t, order.Pending, o.Status())
	f.repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	f.uow.AssertNotCalled(t, "Commit", mock.Anything)
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestAcceptOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	h := commands.NewAcceptOrderCommandHandler(f.orderFactory(), f.announcer())

	err := h.Handle(ctx, commands.AcceptOrderCommand{})
	require.ErrorIs(t, err, commands.ErrAcceptOrderCommandIsNotConstructed)
}

func TestOrderChange_InfrastructureFailures(t *testing.T) {
	boom := errors.New("connection reset")

	tests := []struct {
		name  string
		setup func(f *fixture, o *order.Order)
	}{
		{
			name: "begin fails",
			setup: func(f *fixture, _ *order.Order) {
				f.uow.On("Begin", mock.Anything).Return(boom).Once()
			},
		},
		{
			name: "order not found",
			setup: func(f *fixture, o *order.Order) {
				mock.InOrder(
					f.uow.On("Begin", mock.Anything).Return(nil).Once(),
					f.uow.On("OrderRepository").Return(f.repo).Once(),
					f.repo.On("Get", mock.Anything, o.ID()).
						Return(nil, errs.NewObjectNotFoundError("order", o.ID())).Once(),
					f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
				)
			},
		},
		{
			name: "update fails",
			setup: func(f *fixture, o *order.Order) {
				mock.InOrder(
					f.uow.On("Begin", mock.Anything).Return(nil).Once(),
					f.uow.On("OrderRepository").Return(f.repo).Once(),
					f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
					f.repo.On("Update", mock.Anything, o).Return(boom).Once(),
					f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
				)
			},
		},
		{
			name: "commit fails",
			setup: func(f *fixture, o *order.Order) {
				mock.InOrder(
					f.uow.On("Begin", mock.Anything).Return(nil).Once(),
					f.uow.On("OrderRepository").Return(f.repo).Once(),
					f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
					f.repo.On("Update", mock.Anything, o).Return(nil).Once(),
					f.uow.On("Commit", mock.Anything).Return(boom).Once(),
					f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
				)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newFixture()
			o := newOrder(t, order.Product, order.Pickup)
			tt.setup(f, o)

			cmd, err := commands.NewAcceptOrderCommand(o.ID(), o.SellerID())
			require.NoError(t, err)

			h := commands.NewAcceptOrderCommandHandler(f.orderFactory(), f.announcer())
			err = h.Handle(ctx, cmd)

			require.Error(t, err)
			f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			f.assertExpectations(t)
		})
	}
}

func TestBeginPreparingCommandHandler_Handle(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := newOrder(t, order.Product, order.Pickup)
	require.NoError(t, o.Accept(o.SellerID(), time.Now().UTC()))
	f.expectChange(o)
	f.notifier.On("Notify", mock.Anything, o.BuyerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()

	cmd, err := commands.NewBeginPreparingCommand(o.ID(), o.SellerID())
	require.NoError(t, err)

	h := commands.NewBeginPreparingCommandHandler(f.orderFactory(), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Preparing, o.Status())
	f.assertExpectations(t)
}

func TestMarkReadyCommandHandler_Handle_OpensCourierWindow(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := preparingOrder(t)
	courier := newParty(t, party.Courier, store, true)

	f.expectChange(o)
	f.parties.On("ListByRole", mock.Anything, party.Courier, mock.Anything).Return([]*party.Party{courier}, nil)
	f.notifier.On("Notify", mock.Anything, o.BuyerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, courier.ID(), ports.EventAssignmentOpened, o.ID()).Return(nil).Once()

	cmd, err := commands.NewMarkReadyCommand(o.ID(), o.SellerID())
	require.NoError(t, err)

	h := commands.NewMarkReadyCommandHandler(f.orderFactory(), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.InTransit, o.Status())
	assert.True(t, o.IsOpenFor(party.Courier))
	assert.Nil(t, o.CourierID(), "publishing a window binds nobody")
	f.assertExpectations(t)
}

func TestMarkReadyCommandHandler_Handle_NoCourierNearbyStillSucceeds(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := preparingOrder(t)
	farAway := newParty(t, party.Courier, point(48.1351, 11.5820), true)

	f.expectChange(o)
	f.parties.On("ListByRole", mock.Anything, party.Courier, mock.Anything).Return([]*party.Party{farAway}, nil)
	f.notifier.On("Notify", mock.Anything, o.BuyerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()

	cmd, err := commands.NewMarkReadyCommand(o.ID(), o.SellerID())
	require.NoError(t, err)

	h := commands.NewMarkReadyCommandHandler(f.orderFactory(), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))
	f.assertExpectations(t)
}

func TestMarkReadyCommandHandler_Handle_NotifierFailureIsNotReturned(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := newOrder(t, order.Product, order.Pickup)
	now := time.Now().UTC()
	require.NoError(t, o.Accept(o.SellerID(), now))
	require.NoError(t, o.BeginPreparing(o.SellerID(), now))

	f.expectChange(o)
	f.notifier.On("Notify", mock.Anything, o.BuyerID(), ports.EventOrderStatusChanged, o.ID()).
		Return(errors.New("sink down")).Once()

	cmd, err := commands.NewMarkReadyCommand(o.ID(), o.SellerID())
	require.NoError(t, err)

	h := commands.NewMarkReadyCommandHandler(f.orderFactory(), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.ReadyForPickup, o.Status())
	f.parties.AssertNotCalled(t, "ListByRole", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestMarkDeliveredCommandHandler_Handle_ByCourier(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := readyDeliveryOrder(t)
	courierID := kernel.NewUUID()
	require.NoError(t, o.AssignRole(party.Courier, courierID, schedule(t), time.Now().UTC()))

	f.expectChange(o)
	f.notifier.On("Notify", mock.Anything, o.BuyerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()
	f.notifier.On("Notify", mock.Anything, o.SellerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()

	cmd, err := commands.NewMarkDeliveredCommand(o.ID(), courierID)
	require.NoError(t, err)

	h := commands.NewMarkDeliveredCommandHandler(f.orderFactory(), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Delivered, o.Status())
	assert.NotNil(t, o.DeliveredAt())
	f.assertExpectations(t)
}

func TestCompleteOrderCommandHandler_Handle(t *testing.T) {
	newDelivered := func(t *testing.T) *order.Order {
		t.Helper()
		o := newOrder(t, order.Product, order.Pickup)
		now := time.Now().UTC()
		require.NoError(t, o.Accept(o.SellerID(), now))
		require.NoError(t, o.BeginPreparing(o.SellerID(), now))
		require.NoError(t, o.MarkReady(o.SellerID(), now))
		require.NoError(t, o.MarkDelivered(o.SellerID(), now))
		return o
	}

	tests := []struct {
		name      string
		reviewErr error
	}{
		{name: "review recorded"},
		{name: "review sink failure is logged only", reviewErr: errors.New("reviews unavailable")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := t.Context()
			f := newFixture()
			o := newDelivered(t)
			reviews := new(MockReviewSink)

			f.expectChange(o)
			reviews.On("RecordCompletion", mock.Anything, o.ID()).Return(tt.reviewErr).Once()
			f.notifier.On("Notify", mock.Anything, o.SellerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()

			cmd, err := commands.NewCompleteOrderCommand(o.ID(), o.BuyerID())
			require.NoError(t, err)

			h := commands.NewCompleteOrderCommandHandler(f.orderFactory(), reviews, f.announcer(), discardLogger())
			require.NoError(t, h.Handle(ctx, cmd))

			assert.Equal(t, order.Completed, o.Status())
			reviews.AssertExpectations(t)
			f.assertExpectations(t)
		})
	}
}

func TestCompleteOrderCommandHandler_Handle_TwiceIsTerminal(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := newOrder(t, order.Product, order.Pickup)
	now := time.Now().UTC()
	require.NoError(t, o.Cancel(o.BuyerID(), "", now))
	reviews := new(MockReviewSink)

	mock.InOrder(
		f.uow.On("Begin", mock.Anything).Return(nil).Once(),
		f.uow.On("OrderRepository").Return(f.repo).Once(),
		f.repo.On("Get", mock.Anything, o.ID()).Return(o, nil).Once(),
		f.uow.On("Rollback", mock.Anything).Return(nil).Once(),
	)

	cmd, err := commands.NewCompleteOrderCommand(o.ID(), o.BuyerID())
	require.NoError(t, err)

	h := commands.NewCompleteOrderCommandHandler(f.orderFactory(), reviews, f.announcer(), discardLogger())
	err = h.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrTerminalState)
	reviews.AssertNotCalled(t, "RecordCompletion", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCancelOrderCommandHandler_Handle_NotifiesCounterparties(t *testing.T) {
	ctx := t.Context()
	f := newFixture()
	o := newOrder(t, order.Product, order.Pickup)
	require.NoError(t, o.MarkPaid("txn-1", time.Now().UTC()))

	f.expectChange(o)
	f.notifier.On("Notify", mock.Anything, o.SellerID(), ports.EventOrderCancelled, o.ID()).Return(nil).Once()

	cmd, err := commands.NewCancelOrderCommand(o.ID(), o.BuyerID(), "  changed my mind ")
	require.NoError(t, err)

	h := commands.NewCancelOrderCommandHandler(f.orderFactory(), f.announcer())
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Cancelled, o.Status())
	assert.Equal(t, order.PaymentRefunded, o.PaymentStatus())
	assert.Equal(t, "changed my mind", o.CancelReason())
	f.assertExpectations(t)
}

func TestPaymentCommandHandler(t *testing.T) {
	t.Run("mark paid tells the seller", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		o := newOrder(t, order.Product, order.Pickup)
		f.expectChange(o)
		f.notifier.On("Notify", mock.Anything, o.SellerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()

		cmd, err := commands.NewMarkPaidCommand(o.ID(), "txn-42")
		require.NoError(t, err)

		h := commands.NewPaymentCommandHandler(f.orderFactory(), f.announcer())
		require.NoError(t, h.MarkPaid(ctx, cmd))

		assert.Equal(t, order.PaymentPaid, o.PaymentStatus())
		assert.Equal(t, "txn-42", o.TransactionRef())
		f.assertExpectations(t)
	})

	t.Run("payment failure tells the buyer", func(t *testing.T) {
		ctx := t.Context()
		f := newFixture()
		o := newOrder(t, order.Product, order.Pickup)
		f.expectChange(o)
		f.notifier.On("Notify", mock.Anything, o.BuyerID(), ports.EventOrderStatusChanged, o.ID()).Return(nil).Once()

		cmd, err := commands.NewMarkPaymentFailedCommand(o.ID())
		require.NoError(t, err)

		h := commands.NewPaymentCommandHandler(f.orderFactory(), f.announcer())
		require.NoError(t, h.MarkPaymentFailed(ctx, cmd))

		assert.Equal(t, order.PaymentFailed, o.PaymentStatus())
		f.assertExpectations(t)
	})

	t.Run("not constructed", func(t *testing.T) {
		f := newFixture()
		h := commands.NewPaymentCommandHandler(f.orderFactory(), f.announcer())
		require.ErrorIs(t, h.MarkPaid(t.Context(), commands.MarkPaidCommand{}), commands.ErrMarkPaidCommandIsNotConstructed)
		require.ErrorIs(t, h.MarkPaymentFailed(t.Context(), commands.MarkPaymentFailedCommand{}),
			commands.ErrMarkPaymentFailedCommandIsNotConstructed)
	})
}
