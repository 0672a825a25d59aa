package postgres_test

import (
	"context"
	"testing"
	"time"

	postgres_adapter "marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/postgres/migrations"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/order"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/ports"
	"marketplace/internal/pkg/errs"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	gorm_postgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// UnitOfWorkIntegrationTestSuite runs the unit of work against a real
// PostgreSQL with the production migrations applied.
type UnitOfWorkIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	factory   ports.UnitOfWorkFactory
	schedule  pricing.FeeSchedule
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(30*time.Second)),
	)
	suite.Require().NoError(err)
	suite.container = container

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)
	suite.Require().NoError(migrations.Up(dsn))

	db, err := gorm.Open(gorm_postgres.Open(dsn), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db
	suite.factory = postgres_adapter.NewGormUnitOfWorkFactory(db)

	suite.schedule, err = pricing.NewFeeSchedule(pricing.FeeScheduleParams{
		PlatformRate:    decimal.RequireFromString("0.10"),
		DeliveryBaseFee: decimal.RequireFromString("2.00"),
		DeliveryPerKm:   decimal.RequireFromString("0.50"),
		BrokerRate:      decimal.RequireFromString("0.02"),
	})
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) SetupTest() {
	err := suite.db.Exec("TRUNCATE TABLE order_transitions, order_items, orders, parties").Error
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *UnitOfWorkIntegrationTestSuite) TestFactory_CreatesSeparateInstances() {
	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()

	suite.NotSame(uow1, uow2)
	suite.NotNil(uow1.OrderRepository())
	suite.NotNil(uow1.PartyRegistry())
}

func (suite *UnitOfWorkIntegrationTestSuite) TestTransactionLifecycle() {
	ctx := context.Background()
	uow := suite.factory.Create()

	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.Begin(ctx), "a second Begin is a no-op")
	suite.Require().NoError(uow.Commit(ctx))

	suite.Require().ErrorIs(uow.Commit(ctx), gorm.ErrInvalidTransaction)
	suite.Require().ErrorIs(uow.Rollback(ctx), gorm.ErrInvalidTransaction)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestCommit_PersistsOrderAndParty() {
	ctx := context.Background()
	o := suite.newOrder()
	p := suite.newCourier()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.PartyRegistry().Upsert(ctx, p))
	suite.Require().NoError(uow.Commit(ctx))

	suite.Equal([]kernel.UUID{o.ID(), p.ID()}, uow.(*postgres_adapter.GormUnitOfWork).TrackedIDs())

	fresh := suite.factory.Create()
	_, err := fresh.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	_, err = fresh.PartyRegistry().GetParty(ctx, p.ID())
	suite.Require().NoError(err)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestRollback_DiscardsEverything() {
	ctx := context.Background()
	o := suite.newOrder()
	p := suite.newCourier()

	uow := suite.factory.Create()
	suite.Require().NoError(uow.Begin(ctx))
	suite.Require().NoError(uow.OrderRepository().Add(ctx, o))
	suite.Require().NoError(uow.PartyRegistry().Upsert(ctx, p))
	_, err := uow.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err, "visible inside the transaction")
	suite.Require().NoError(uow.Rollback(ctx))

	fresh := suite.factory.Create()
	_, err = fresh.OrderRepository().Get(ctx, o.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
	_, err = fresh.PartyRegistry().GetParty(ctx, p.ID())
	suite.Require().ErrorIs(err, errs.ErrObjectNotFound)
}

func (suite *UnitOfWorkIntegrationTestSuite) TestIsolation_BetweenInstances() {
	ctx := context.Background()
	order1 := suite.newOrder()
	order2 := suite.newOrder()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))
	suite.Require().NoError(uow1.OrderRepository().Add(ctx, order1))
	suite.Require().NoError(uow2.OrderRepository().Add(ctx, order2))

	_, err := uow1.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err, "uncommitted order2 is invisible to uow1")
	_, err = uow2.OrderRepository().Get(ctx, order1.ID())
	suite.Require().Error(err, "uncommitted order1 is invisible to uow2")

	suite.Require().NoError(uow1.Commit(ctx))
	suite.Require().NoError(uow2.Rollback(ctx))

	fresh := suite.factory.Create()
	_, err = fresh.OrderRepository().Get(ctx, order1.ID())
	suite.Require().NoError(err)
	_, err = fresh.OrderRepository().Get(ctx, order2.ID())
	suite.Require().Error(err)
}

// Two units of work load the same open order and both try to take the
// courier slot. The second writer finds the version moved and writes nothing.
func (suite *UnitOfWorkIntegrationTestSuite) TestConcurrentRoleAcceptance_SecondWriterLoses() {
	ctx := context.Background()
	o := suite.newOrder()
	now := time.Now().UTC()
	suite.Require().NoError(o.Accept(o.SellerID(), now))
	suite.Require().NoError(o.BeginPreparing(o.SellerID(), now))
	suite.Require().NoError(o.MarkReady(o.SellerID(), now))
	suite.Require().NoError(suite.factory.Create().OrderRepository().Add(ctx, o))

	first, second := kernel.NewUUID(), kernel.NewUUID()

	uow1 := suite.factory.Create()
	uow2 := suite.factory.Create()
	suite.Require().NoError(uow1.Begin(ctx))
	suite.Require().NoError(uow2.Begin(ctx))

	copy1, err := uow1.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	copy2, err := uow2.OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)

	suite.Require().NoError(copy1.AssignRole(party.Courier, first, suite.schedule, now))
	suite.Require().NoError(copy2.AssignRole(party.Courier, second, suite.schedule, now))

	suite.Require().NoError(uow1.OrderRepository().Update(ctx, copy1))
	suite.Require().NoError(uow1.Commit(ctx))

	err = uow2.OrderRepository().Update(ctx, copy2)
	suite.Require().ErrorIs(err, errs.ErrVersionIsInvalid)
	suite.Require().NoError(uow2.Rollback(ctx))

	stored, err := suite.factory.Create().OrderRepository().Get(ctx, o.ID())
	suite.Require().NoError(err)
	suite.Require().NotNil(stored.CourierID())
	suite.Equal(first, *stored.CourierID())
	suite.Len(stored.Transitions(), len(copy1.Transitions()))
}

func (suite *UnitOfWorkIntegrationTestSuite) newOrder() *order.Order {
	item, err := order.NewItem(order.ItemParams{
		ID:        kernel.NewUUID(),
		Name:      "Espresso beans",
		Quantity:  2,
		UnitPrice: decimal.RequireFromString("7.50"),
	})
	suite.Require().NoError(err)

	pickup, err := kernel.NewGeoPoint(52.5200, 13.4050)
	suite.Require().NoError(err)
	dropoff, err := kernel.NewGeoPoint(52.5300, 13.4100)
	suite.Require().NoError(err)

	now := time.Now().UTC().Truncate(time.Microsecond)
	o, err := order.NewOrder(order.NewOrderParams{
		ID:            kernel.NewUUID(),
		Number:        order.NewNumber(now),
		BuyerID:       kernel.NewUUID(),
		SellerID:      kernel.NewUUID(),
		Type:          order.Product,
		Items:         []order.Item{item},
		Delivery:      order.DeliveryContext{Type: order.Delivery, Pickup: &pickup, Dropoff: &dropoff},
		PaymentMethod: "card",
		CreatedAt:     now,
	}, suite.schedule)
	suite.Require().NoError(err)
	return o
}

func (suite *UnitOfWorkIntegrationTestSuite) newCourier() *party.Party {
	at, err := kernel.NewGeoPoint(52.5210, 13.4060)
	suite.Require().NoError(err)

	p, err := party.NewParty(party.Params{
		ID:           kernel.NewUUID(),
		Roles:        party.NewRoleSet(party.Courier),
		Active:       true,
		AvailableNow: true,
		Location:     &at,
		UpdatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	})
	suite.Require().NoError(err)
	return p
}

func TestUnitOfWorkIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a Docker daemon")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(UnitOfWorkIntegrationTestSuite))
}
