package api

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hilthontt/dealerdesk/internal/domain"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/configs"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/logging"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/metrics"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ratelimiter"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/security"
	"github.com/hilthontt/dealerdesk/internal/infrastructure/ws"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/auth"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/crm"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/health"
	"github.com/hilthontt/dealerdesk/internal/presentation/handler/teams"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// Resource is a handler that mounts its own CRUD routes.
type Resource interface {
	Routes(r chi.Router)
}

type Handlers struct {
	Auth   *auth.Handler
	Health *health.Handler

	Clients  Resource
	Vehicles Resource
	Events   Resource
	Tags     Resource
	Notes    Resource
	Calls    Resource
	Emails   Resource
	Teams    Resource

	ClientDetails *crm.ClientHandler
	TeamDetails   *teams.Handler
}

type Application struct {
	config      configs.Config
	handlers    Handlers
	logger      *zap.SugaredLogger
	ratelimiter ratelimiter.Limiter
	metrics     *metrics.Metrics
	tokens      *security.TokenManager
	supervisor  *ws.Supervisor
	sentry      bool
}

func NewApplication(
	config configs.Config,
	handlers Handlers,
	logger *zap.SugaredLogger,
	limiter ratelimiter.Limiter,
	m *metrics.Metrics,
	tokens *security.TokenManager,
	supervisor *ws.Supervisor,
) *Application {
	return &Application{
		config:      config,
		handlers:    handlers,
		logger:      logger,
		ratelimiter: limiter,
		metrics:     m,
		tokens:      tokens,
		supervisor:  supervisor,
		sentry:      config.Sentry.DSN != "",
	}
}

func (app *Application) Mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.requestLogger)
	r.Use(middleware.Recoverer)
	if app.sentry {
		r.Use(sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: 5 * time.Second}).Handle)
	}
	r.Use(app.metrics.Middleware)
	r.Use(app.enableCors)
	if app.config.RateLimiter.Enabled {
		r.Use(app.rateLimiterMiddleware)
	}

	r.Method(http.MethodGet, "/metrics", app.metrics.Handler())
	r.Method(http.MethodGet, "/debug/vars", expvar.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", app.handlers.Health.GetHealth)
		r.Get("/healthz", app.handlers.Health.GetHealth)
		r.Get("/ready", app.handlers.Health.GetHealth)
		r.Route("/auth", func(r chi.Router) {
			app.handlers.Auth.PublicRoutes(r)
			r.With(app.RequireAuth).Group(app.handlers.Auth.SessionRoutes)
		})

		// The realtime socket outlives any request timeout.
		r.With(app.RequireAuth).Method(http.MethodGet, "/ws", app.supervisor)

		r.Group(func(r chi.Router) {
			r.Use(app.RequireAuth)
			r.Use(middleware.Timeout(app.config.HTTP.RequestTimeout))

			admin := RequireRole(domain.RoleAdmin)
			managers := RequireRole(domain.RoleAdmin, domain.RoleManager)

			r.Route("/users", func(r chi.Router) {
				app.handlers.Auth.UserRoutes(r, admin)
			})
			r.Route("/clients", func(r chi.Router) {
				app.handlers.Clients.Routes(r)
				app.handlers.ClientDetails.Routes(r)
			})
			r.Route("/vehicles", app.handlers.Vehicles.Routes)
			r.Route("/events", app.handlers.Events.Routes)
			r.Route("/tags", app.handlers.Tags.Routes)
			r.Route("/notes", app.handlers.Notes.Routes)
			r.Route("/calls", app.handlers.Calls.Routes)
			r.Route("/emails", app.handlers.Emails.Routes)
			r.Route("/teams", func(r chi.Router) {
				app.handlers.Teams.Routes(r)
				app.handlers.TeamDetails.Routes(r, managers)
			})
		})
	})

	return otelhttp.NewHandler(r, "dealerdesk-http",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}

// Run serves until SIGINT or SIGTERM, then closes realtime connections
// before draining the HTTP server.
func (app *Application) Run(mux http.Handler) error {
	addr := net.JoinHostPort(app.config.HTTP.Host, strconv.Itoa(int(app.config.HTTP.Port)))

	srv := &http.Server{
		Addr:           addr,
		Handler:        mux,
		ReadTimeout:    app.config.HTTP.ReadTimeout,
		WriteTimeout:   app.config.HTTP.WriteTimeout,
		IdleTimeout:    time.Minute,
		MaxHeaderBytes: 1 << 20,
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Infow("server starting",
			logging.KeyCategory, logging.General,
			logging.KeySubCategory, logging.Startup,
			"addr", addr,
			"env", app.config.Environment,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case s := <-quit:
		app.logger.Infow("shutting down server",
			logging.KeyCategory, logging.General,
			logging.KeySubCategory, logging.Shutdown,
			"signal", s.String(),
		)
	}

	ctx, cancel := context.WithTimeout(context.Background(), app.config.HTTP.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := app.supervisor.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("realtime shutdown: %w", err))
	}
	if err := srv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	app.logger.Infow("server stopped",
		logging.KeyCategory, logging.General,
		logging.KeySubCategory, logging.Shutdown,
	)
	return errors.Join(errs...)
}
