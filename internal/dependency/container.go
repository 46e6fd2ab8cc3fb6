package dependency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	activityUseCase "github.com/hilthontt/dealerdesk/internal/application/usecases/activity"
	authUseCase "github.com/hilthontt/dealerdesk/internal/application/usecases/auth"
	"github.com/hilthontt/dealerdesk/internal/application/usecases/teammessage"
	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/configs"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/database"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/metrics"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/tracing"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/validate"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ws"
	"github.com/hilthontt/dealerdesk/internal/presentation/api"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const AppName = "dealerdesk"

// Container owns every long-lived dependency of the process. It is built
// once in main and torn down with Shutdown.
type Container struct {
	Config *configs.Config
	Logger *zap.SugaredLogger
	NodeID string

	DB             *gorm.DB
	Metrics        *metrics.Metrics
	RateLimiter    *ratelimiter.RateLimiter
	Tokens         *security.TokenManager
	Validator      *validate.Validator
	tracerShutdown tracing.ShutdownFunc

	UserRepo        domain.UserRepository
	ClientRepo      domain.ClientRepository
	VehicleRepo     domain.Repository[domain.Vehicle]
	EventRepo       domain.Repository[domain.Event]
	TagRepo         domain.Repository[domain.Tag]
	NoteRepo        domain.Repository[domain.Note]
	CallRepo        domain.Repository[domain.Call]
	EmailRepo       domain.Repository[domain.Email]
	TeamRepo        domain.TeamRepository
	TeamMessageRepo domain.TeamMessageRepository

	WSRegistry    *ws.Registry
	WSRooms       *ws.RoomManager
	WSBroadcaster *ws.Broadcaster
	WSSupervisor  *ws.Supervisor

	AuthUC        authUseCase.AuthUseCase
	TeamMessageUC teammessage.TeamMessageUseCase
	ActivityUC    *activityUseCase.Notifier

	Handlers api.Handlers
}

func NewContainer(ctx context.Context, cfg *configs.Config) (*Container, error) {
	c := &Container{Config: cfg}

	logger, err := logging.New(logging.Config{
		FilePath: cfg.Logger.FilePath,
		Encoding: cfg.Logger.Encoding,
		Level:    cfg.Logger.Level,
	}, AppName)
	if err != nil {
		return nil, fmt.Errorf("error initializing logger: %w", err)
	}
	c.Logger = logger

	c.Logger.Infow("Initializing DealerDesk dependencies",
		logging.KeyCategory, logging.General,
		logging.KeySubCategory, logging.Startup,
		"env", cfg.Environment,
	)

	if err := c.initInfrastructure(ctx); err != nil {
		c.Shutdown(context.Background())
		return nil, fmt.Errorf("error initializing infrastructure: %w", err)
	}

	c.initRepositories()

	c.initWebSocket(ctx)

	c.initUseCases()

	c.initHandlers()

	c.Logger.Infow("All dependencies initialized successfully",
		logging.KeyCategory, logging.General,
		logging.KeySubCategory, logging.Startup,
		"node", c.NodeID,
	)

	return c, nil
}

func (c *Container) Application() *api.Application {
	return api.NewApplication(*c.Config, c.Handlers, c.Logger, c.RateLimiter, c.Metrics, c.Tokens, c.WSSupervisor)
}

// Shutdown releases what the HTTP server does not own: the distribution
// backend, the tracer and the database pool, in that order.
func (c *Container) Shutdown(ctx context.Context) error {
	var errs []error

	if c.RateLimiter != nil {
		c.RateLimiter.Close()
	}

	if c.WSRooms != nil {
		if err := c.WSRooms.Distributor().Close(); err != nil {
			errs = append(errs, fmt.Errorf("distributor: %w", err))
		}
	}

	if c.tracerShutdown != nil {
		if err := c.tracerShutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer: %w", err))
		}
	}

	if c.Config.Sentry.DSN != "" {
		sentry.Flush(2 * time.Second)
	}

	if c.DB != nil {
		if err := database.Close(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}

	err := errors.Join(errs...)
	if c.Logger != nil {
		if err != nil {
			c.Logger.Errorw("failed to release dependencies",
				logging.KeyCategory, logging.General,
				logging.KeySubCategory, logging.Shutdown,
				"error", err,
			)
		} else {
			c.Logger.Infow("Dependencies shut down successfully",
				logging.KeyCategory, logging.General,
				logging.KeySubCategory, logging.Shutdown,
			)
		}
		_ = c.Logger.Sync()
	}
	return err
}
