package partyrepo_test

import (
	"context"
	"testing"
	"time"

	"marketplace/internal/adapters/out/postgres/migrations"
	"marketplace/internal/adapters/out/postgres/partyrepo"
	"marketplace/internal/core/domain/model/kernel"
	"marketplace/internal/core/domain/model/party"
	"marketplace/internal/pkg/errs"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type MockAggregateTracker struct {
	mock.Mock
}

func (m *MockAggregateTracker) TrackAggregate(id kernel.UUID, aggregate any) {
	m.Called(id, aggregate)
}

type PartyRegistryIntegrationTestSuite struct {
	suite.Suite
	container *postgres.PostgresContainer
	db        *gorm.DB
	registry  *partyrepo.GormPartyRegistry
	tracker   *MockAggregateTracker
}

func (suite *PartyRegistryIntegrationTestSuite) SetupSuite() {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:15-alpine",
		postgres.WithDatabase("testdb"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	suite.Require().NoError(err)
	suite.container = container

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	suite.Require().NoError(err)
	suite.Require().NoError(migrations.Up(connStr))

	db, err := gorm.Open(postgresdriver.Open(connStr), &gorm.Config{})
	suite.Require().NoError(err)
	suite.db = db
}

func (suite *PartyRegistryIntegrationTestSuite) SetupTest() {
	suite.Require().NoError(suite.db.Exec("TRUNCATE TABLE parties").Error)

	suite.tracker = new(MockAggregateTracker)
	suite.registry = partyrepo.NewGormPartyRegistry(suite.db, suite.tracker)
}

func (suite *PartyRegistryIntegrationTestSuite) TearDownSuite() {
	if suite.container != nil {
		suite.Require().NoError(suite.container.Terminate(context.Background()))
	}
}

func (suite *PartyRegistryIntegrationTestSuite) TestUpsert_InsertsAndReadsBack() {
	ctx := context.Background()
	p := suite.newParty(kernel.NewUUID(), party.NewRoleSet(party.Courier, party.Buyer), suite.point(52.52, 13.405), time.Now())
	suite.tracker.On("TrackAggregate", p.ID(), p).Once()

	suite.Require().NoError(suite.registry.Upsert(ctx, p))

	got, err := suite.registry.GetParty(ctx, p.ID())
	suite.Require().NoError(err)
	suite.True(got.Roles().Has(party.Courier))
	suite.True(got.Roles().Has(party.Buyer))
	suite.False(got.Roles().Has(party.Broker))
	suite.True(got.IsActive())
	suite.Require().NotNil(got.Location())
	suite.InDelta(52.52, got.Location().Lat(), 1e-9)
	suite.tracker.AssertExpectations(suite.T())
}

func (suite *PartyRegistryIntegrationTestSuite) TestUpsert_OlderSnapshotIsIgnored() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)

	id := kernel.NewUUID()
	now := time.Now().UTC().Truncate(time.Microsecond)
	newer := suite.newParty(id, party.NewRoleSet(party.Courier), suite.point(52.52, 13.405), now)
	older := suite.newParty(id, party.NewRoleSet(party.Broker), nil, now.Add(-time.Minute))

	suite.Require().NoError(suite.registry.Upsert(ctx, newer))
	suite.Require().NoError(suite.registry.Upsert(ctx, older))

	got, err := suite.registry.GetParty(ctx, id)
	suite.Require().NoError(err)
	suite.True(got.Roles().Has(party.Courier))
	suite.False(got.Roles().Has(party.Broker))
	suite.NotNil(got.Location())
}

func (suite *PartyRegistryIntegrationTestSuite) TestGetParty_Unknown_ReturnsNotFoundError() {
	_, err := suite.registry.GetParty(context.Background(), kernel.NewUUID())

	var notFound *errs.ObjectNotFoundError
	suite.Require().ErrorAs(err, &notFound)
}

func (suite *PartyRegistryIntegrationTestSuite) TestListByRole_FiltersRoleLocationAndBox() {
	ctx := context.Background()
	suite.tracker.On("TrackAggregate", mock.Anything, mock.Anything)
	now := time.Now()

	near := suite.newParty(kernel.NewUUID(), party.NewRoleSet(party.Courier), suite.point(52.521, 13.406), now)
	far := suite.newParty(kernel.NewUUID(), party.NewRoleSet(party.Courier), suite.point(48.1351, 11.582), now)
	broker := suite.newParty(kernel.NewUUID(), party.NewRoleSet(party.Broker), suite.point(52.521, 13.406), now)
	nowhere := suite.newParty(kernel.NewUUID(), party.NewRoleSet(party.Courier), nil, now)
	for _, p := range []*party.Party{near, far, broker, nowhere} {
		suite.Require().NoError(suite.registry.Upsert(ctx, p))
	}

	box := kernel.BoundingBoxAround(*suite.point(52.52, 13.405), 10)
	got, err := suite.registry.ListByRole(ctx, party.Courier, box)
	suite.Require().NoError(err)
	suite.Require().Len(got, 1)
	suite.Equal(near.ID(), got[0].ID())

	everywhere, err := suite.registry.ListByRole(ctx, party.Courier, kernel.WholeGlobe())
	suite.Require().NoError(err)
	suite.Len(everywhere, 2, "parties without a location are never listed")
}

func (suite *PartyRegistryIntegrationTestSuite) point(lat, lng float64) *kernel.GeoPoint {
	p, err := kernel.NewGeoPoint(lat, lng)
	suite.Require().NoError(err)
	return &p
}

func (suite *PartyRegistryIntegrationTestSuite) newParty(
	id kernel.UUID,
	roles party.RoleSet,
	at *kernel.GeoPoint,
	updatedAt time.Time,
) *party.Party {
	p, err := party.NewParty(party.Params{
		ID:           id,
		Roles:        roles,
		Active:       true,
		AvailableNow: true,
		Location:     at,
		UpdatedAt:    updatedAt.UTC(),
	})
	suite.Require().NoError(err)
	return p
}

func TestPartyRegistryIntegrationTestSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("needs a Docker daemon")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	suite.Run(t, new(PartyRegistryIntegrationTestSuite))
}
