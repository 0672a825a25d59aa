package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	apihttp "marketplace/internal/adapters/in/http"
	"marketplace/internal/adapters/out/catalog"
	"marketplace/internal/adapters/out/geocoder"
	"marketplace/internal/adapters/out/memory"
	"marketplace/internal/adapters/out/postgres"
	"marketplace/internal/adapters/out/postgres/migrations"
	"marketplace/internal/adapters/out/postgres/readmodel"
	redisadapter "marketplace/internal/adapters/out/redis"
	"marketplace/internal/adapters/out/reviews"
	"marketplace/internal/core/application/usecases/commands"
	"marketplace/internal/core/application/usecases/queries"
	"marketplace/internal/core/domain/model/pricing"
	"marketplace/internal/core/domain/services"
	"marketplace/internal/core/ports"
	"marketplace/internal/jobs"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	postgresdriver "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

type CompositionRoot struct {
	cfg      Config
	logger   *slog.Logger
	schedule pricing.FeeSchedule

	uowFactory   ports.UnitOfWorkFactory
	uow          commands.UoWFactory
	orderUoW     commands.OrderUoWFactory
	partyUoW     commands.PartyUoWFactory
	readModel    ports.OrderReadModel
	catalog      ports.Catalog
	geocoder     ports.Geocoder
	reviews      ports.ReviewSink
	notifier     ports.Notifier
	idempotency  ports.IdempotencyStore
	index        *services.ProximityIndex
	announcer    *commands.Announcer
	acceptLimits *apihttp.PartyRateLimiter

	closers []func() error
}

// NewCompositionRoot connects the storage and collaborator adapters selected
// by cfg. Close releases them.
func NewCompositionRoot(ctx context.Context, cfg Config, logger *slog.Logger) (_ *CompositionRoot, err error) {
	schedule, err := cfg.FeeSchedule()
	if err != nil {
		return nil, fmt.Errorf("fee schedule: %w", err)
	}

	c := &CompositionRoot{cfg: cfg, logger: logger, schedule: schedule}
	defer func() {
		if err != nil {
			err = errors.Join(err, c.Close())
		}
	}()

	if err = c.connectStorage(); err != nil {
		return nil, err
	}
	if err = c.connectRedis(ctx); err != nil {
		return nil, err
	}
	c.connectCollaborators()

	c.uow, c.orderUoW, c.partyUoW = commands.Factories(c.uowFactory)
	c.index = services.NewProximityIndex(c.uowFactory.Create().PartyRegistry())
	c.announcer = commands.NewAnnouncer(
		services.NewRoleDispatcher(c.index, cfg.CandidateRadiusKm, cfg.CandidateLimit),
		c.notifier,
		logger,
	)
	c.acceptLimits = apihttp.NewPartyRateLimiter(cfg.AcceptRatePerSecond, cfg.AcceptRateBurst)
	return c, nil
}

func (c *CompositionRoot) connectStorage() error {
	if c.cfg.StorageDriver == StorageDriverMemory {
		store := memory.NewStore()
		c.uowFactory = memory.NewUnitOfWorkFactory(store)
		c.readModel = memory.NewReadModel(store)
		c.logger.Warn("Using in-memory storage, data is lost on restart")
		return nil
	}

	dsn := c.cfg.DSN()
	if err := migrations.Up(dsn); err != nil {
		return err
	}

	gormDB, err := gorm.Open(postgresdriver.Open(dsn), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("connect gorm: %w", err)
	}
	sqlDB, err := gormDB.DB()
	if err != nil {
		return fmt.Errorf("connect gorm: %w", err)
	}
	c.closers = append(c.closers, sqlDB.Close)

	readDB, err := sqlx.Connect("postgres", dsn)
	if err != nil {
		return fmt.Errorf("connect read model: %w", err)
	}
	c.closers = append(c.closers, readDB.Close)

	c.uowFactory = postgres.NewGormUnitOfWorkFactory(gormDB)
	c.readModel = readmodel.NewSQLOrderReadModel(readDB)
	return nil
}

func (c *CompositionRoot) connectRedis(ctx context.Context) error {
	if c.cfg.RedisAddr == "" {
		c.notifier = memory.NewLogNotifier(c.logger)
		c.idempotency = memory.NewIdempotencyStore()
		return nil
	}

	client, err := redisadapter.NewClient(ctx, c.cfg.RedisAddr)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, client.Close)

	c.notifier = redisadapter.NewNotifier(client)
	c.idempotency = redisadapter.NewIdempotencyStore(client, redisadapter.DefaultKeyTTL)
	return nil
}

func (c *CompositionRoot) connectCollaborators() {
	timeout := c.cfg.CollaboratorTimeout

	if c.cfg.CatalogBaseURL != "" {
		c.catalog = catalog.NewClient(catalog.Config{BaseURL: c.cfg.CatalogBaseURL, Timeout: timeout})
	} else {
		c.catalog = memory.NewCatalog()
	}

	if c.cfg.GeocoderBaseURL != "" {
		c.geocoder = geocoder.NewClient(c.cfg.GeocoderBaseURL, timeout)
	} else {
		c.geocoder = geocoder.Disabled{}
	}

	if c.cfg.ReviewBaseURL != "" {
		c.reviews = reviews.NewClient(c.cfg.ReviewBaseURL, timeout)
	} else {
		c.reviews = memory.NewLogReviewSink(c.logger)
	}
}

// Close releases connections in reverse order of acquisition.
func (c *CompositionRoot) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		errs = append(errs, c.closers[i]())
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	return commands.NewCreateOrderCommandHandler(c.uow, c.catalog, c.geocoder, c.idempotency, c.schedule, c.announcer)
}

func (c *CompositionRoot) CreateAcceptOrderCommandHandler() commands.AcceptOrderCommandHandler {
	return commands.NewAcceptOrderCommandHandler(c.orderUoW, c.announcer)
}

func (c *CompositionRoot) CreateBeginPreparingCommandHandler() commands.BeginPreparingCommandHandler {
	return commands.NewBeginPreparingCommandHandler(c.orderUoW, c.announcer)
}

func (c *CompositionRoot) CreateMarkReadyCommandHandler() commands.MarkReadyCommandHandler {
	return commands.NewMarkReadyCommandHandler(c.orderUoW, c.announcer)
}

func (c *CompositionRoot) CreateMarkDeliveredCommandHandler() commands.MarkDeliveredCommandHandler {
	return commands.NewMarkDeliveredCommandHandler(c.orderUoW, c.announcer)
}

func (c *CompositionRoot) CreateCompleteOrderCommandHandler() commands.CompleteOrderCommandHandler {
	return commands.NewCompleteOrderCommandHandler(c.orderUoW, c.reviews, c.announcer, c.logger)
}

func (c *CompositionRoot) CreateCancelOrderCommandHandler() commands.CancelOrderCommandHandler {
	return commands.NewCancelOrderCommandHandler(c.orderUoW, c.announcer)
}

func (c *CompositionRoot) CreateAcceptRoleCommandHandler() commands.AcceptRoleCommandHandler {
	return commands.NewAcceptRoleCommandHandler(c.uow, c.schedule, c.announcer)
}

func (c *CompositionRoot) CreatePaymentCommandHandler() commands.PaymentCommandHandler {
	return commands.NewPaymentCommandHandler(c.orderUoW, c.announcer)
}

func (c *CompositionRoot) CreateUpsertPartyCommandHandler() commands.UpsertPartyCommandHandler {
	return commands.NewUpsertPartyCommandHandler(c.partyUoW)
}

func (c *CompositionRoot) CreateAssignmentWindowsCommandHandler() commands.AssignmentWindowsCommandHandler {
	return commands.NewAssignmentWindowsCommandHandler(
		c.orderUoW, c.uowFactory.Create().OrderRepository(), c.announcer, c.logger)
}

func (c *CompositionRoot) CreateGetOrderQueryHandler() queries.GetOrderQueryHandler {
	return queries.NewGetOrderQueryHandler(c.uowFactory.Create().OrderRepository())
}

func (c *CompositionRoot) CreateListOrdersQueryHandler() queries.ListOrdersQueryHandler {
	return queries.NewListOrdersQueryHandler(c.readModel)
}

func (c *CompositionRoot) CreateAvailableOrdersQueryHandler() queries.AvailableOrdersQueryHandler {
	return queries.NewAvailableOrdersQueryHandler(
		c.uowFactory.Create().PartyRegistry(),
		services.NewOrderMatcher(c.uowFactory.Create().OrderRepository()),
		c.schedule,
	)
}

func (c *CompositionRoot) CreateSellerSalesQueryHandler() queries.SellerSalesQueryHandler {
	return queries.NewSellerSalesQueryHandler(c.readModel)
}

func (c *CompositionRoot) CreateFindCandidatesQueryHandler() queries.FindCandidatesQueryHandler {
	return queries.NewFindCandidatesQueryHandler(c.index)
}

func (c *CompositionRoot) CreateServer() *apihttp.Server {
	return apihttp.NewServer(apihttp.Handlers{
		CreateOrder:    c.CreateCreateOrderCommandHandler(),
		AcceptOrder:    c.CreateAcceptOrderCommandHandler(),
		BeginPreparing: c.CreateBeginPreparingCommandHandler(),
		MarkReady:      c.CreateMarkReadyCommandHandler(),
		MarkDelivered:  c.CreateMarkDeliveredCommandHandler(),
		CompleteOrder:  c.CreateCompleteOrderCommandHandler(),
		CancelOrder:    c.CreateCancelOrderCommandHandler(),
		AcceptRole:     c.CreateAcceptRoleCommandHandler(),
		Payment:        c.CreatePaymentCommandHandler(),
		UpsertParty:    c.CreateUpsertPartyCommandHandler(),

		GetOrder:        c.CreateGetOrderQueryHandler(),
		ListOrders:      c.CreateListOrdersQueryHandler(),
		AvailableOrders: c.CreateAvailableOrdersQueryHandler(),
		SellerSales:     c.CreateSellerSalesQueryHandler(),
		FindCandidates:  c.CreateFindCandidatesQueryHandler(),
	}, c.logger)
}

func (c *CompositionRoot) RouteOptions(ctx context.Context) (apihttp.RouteOptions, error) {
	doc, err := apihttp.LoadOpenAPI(ctx)
	if err != nil {
		return apihttp.RouteOptions{}, err
	}
	return apihttp.RouteOptions{
		Doc:           doc,
		JWTSecret:     []byte(c.cfg.JWTSecret),
		ServiceToken:  c.cfg.SystemToken,
		AcceptLimiter: c.acceptLimits,
	}, nil
}

func (c *CompositionRoot) CreateJobManager() (*jobs.JobManager, error) {
	return jobs.NewJobManager(
		c.CreateAssignmentWindowsCommandHandler(),
		c.cfg.BroadcastSchedule,
		c.cfg.AssignmentWindowTTL,
		c.logger,
	)
}
