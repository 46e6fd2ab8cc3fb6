package dependency

import (
	"context"
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/database"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/metrics"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/tracing"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/validate"
)

func (c *Container) initInfrastructure(ctx context.Context) error {
	cfg := c.Config
	c.NodeID = uuid.NewString()

	shutdown, err := tracing.InitTracer(ctx, tracing.Config{
		Exporter:    cfg.Tracing.Exporter,
		Endpoint:    cfg.Tracing.Endpoint,
		ServiceName: cfg.Tracing.ServiceName,
		Environment: cfg.Environment,
		SampleRatio: cfg.Tracing.SampleRatio,
		Insecure:    cfg.Tracing.Insecure,
	})
	if err != nil {
		return fmt.Errorf("error initializing tracer: %w", err)
	}
	c.tracerShutdown = shutdown

	if cfg.Sentry.DSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Environment,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
			ServerName:       c.NodeID,
		})
		if err != nil {
			return fmt.Errorf("error initializing sentry: %w", err)
		}
	}

	db, err := database.Open(database.Config{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		SlowThreshold:   cfg.Database.SlowThreshold,
		AutoMigrate:     cfg.Database.AutoMigrate,
		Debug:           cfg.Database.Debug,
	}, c.Logger)
	if err != nil {
		return err
	}
	c.DB = db

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(db, c.Logger); err != nil {
			return err
		}
	}

	c.Metrics = metrics.New()
	c.Tokens = security.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	c.Validator = validate.New()
	c.RateLimiter = ratelimiter.New(ratelimiter.Config{
		MaxRatePerSecond: cfg.RateLimiter.MaxRatePerSecond,
		MaxBurst:         cfg.RateLimiter.MaxBurst,
		CacheTTL:         cfg.RateLimiter.CacheTTL,
		SourceHeaderKey:  cfg.RateLimiter.SourceHeaderKey,
	})

	c.Logger.Infow("Infrastructure initialized successfully",
		logging.KeyCategory, logging.General,
		logging.KeySubCategory, logging.Startup,
		"tracing", cfg.Tracing.Exporter,
		"sentry", cfg.Sentry.DSN != "",
	)
	return nil
}
