package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"marketplace/internal/core/domain/model/pricing"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)

type Config struct {
	HTTPPort   string `env:"HTTP_PORT" envDefault:"8080"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME" envDefault:"marketplace"`
	DBSslMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"postgres"`
	// Empty RedisAddr falls back to a log-only notifier and in-process
	// idempotency keys.
	RedisAddr string `env:"REDIS_ADDR"`

	CatalogBaseURL      string        `env:"CATALOG_BASE_URL"`
	ReviewBaseURL       string        `env:"REVIEW_BASE_URL"`
	GeocoderBaseURL     string        `env:"GEOCODER_BASE_URL"`
	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT" envDefault:"5s"`

	JWTSecret string `env:"JWT_SECRET"`
	// SystemToken authenticates the payment and identity services. Empty
	// leaves only system-subject bearer tokens, or nothing without JWTSecret.
	SystemToken string `env:"SYSTEM_TOKEN"`

	PlatformCommissionRate decimal.Decimal `env:"PLATFORM_COMMISSION_RATE" envDefault:"0.10"`
	DeliveryBaseFee        decimal.Decimal `env:"DELIVERY_BASE_FEE" envDefault:"2.00"`
	DeliveryPerKmFee       decimal.Decimal `env:"DELIVERY_PER_KM_FEE" envDefault:"0.50"`
	DeliveryMinFee         decimal.Decimal `env:"DELIVERY_MIN_FEE" envDefault:"0"`
	DeliveryMaxFee         decimal.Decimal `env:"DELIVERY_MAX_FEE" envDefault:"0"`
	BrokerRate             decimal.Decimal `env:"BROKER_RATE" envDefault:"0.02"`

	CandidateRadiusKm   float64       `env:"CANDIDATE_RADIUS_KM" envDefault:"5"`
	CandidateLimit      int           `env:"CANDIDATE_LIMIT" envDefault:"10"`
	BroadcastSchedule   string        `env:"BROADCAST_SCHEDULE" envDefault:"*/30 * * * * *"`
	AssignmentWindowTTL time.Duration `env:"ASSIGNMENT_WINDOW_TTL" envDefault:"15m"`

	AcceptRatePerSecond float64 `env:"ACCEPT_RATE_PER_SECOND" envDefault:"2"`
	AcceptRateBurst     int     `env:"ACCEPT_RATE_BURST" envDefault:"5"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the process environment after merging an optional .env
// file. Variables already set in the environment win over the file.
func LoadConfig(dotenvFiles ...string) (Config, error) {
	if len(dotenvFiles) == 0 {
		dotenvFiles = []string{".env"}
	}
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	switch cfg.StorageDriver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return Config{}, fmt.Errorf("parse config: unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
	return cfg, nil
}

func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

// FeeSchedule validates the configured rates once at startup.
func (c Config) FeeSchedule() (pricing.FeeSchedule, error) {
	return pricing.NewFeeSchedule(pricing.FeeScheduleParams{
		PlatformRate:    c.PlatformCommissionRate,
		DeliveryBaseFee: c.DeliveryBaseFee,
		DeliveryPerKm:   c.DeliveryPerKmFee,
		DeliveryMinFee:  c.DeliveryMinFee,
		DeliveryMaxFee:  c.DeliveryMaxFee,
		BrokerRate:      c.BrokerRate,
	})
}
