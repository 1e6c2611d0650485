package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"go.opentelemetry.io/otel/trace"

	"roomreports/internal/config"
	apierrors "roomreports/internal/errors"
	"roomreports/internal/infrastructure"
	customMiddleware "roomreports/internal/middleware"
	"roomreports/internal/reports"
	"roomreports/internal/reportsapi"
	"roomreports/internal/scheduler"
	"roomreports/internal/services"
	handlers "roomreports/internal/transport/http"
	ws "roomreports/internal/websocket"
	"roomreports/pkg/contracts"
)

// Application represents the dashboard service container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Dashboard     *reports.Dashboard
	WebSocketHub  *ws.Hub
	Scheduler     *scheduler.Service
	HealthService *services.HealthService
	ErrorHandler  *apierrors.ErrorHandler
	Metrics       *infrastructure.ReportMetrics
	OTelProviders *infrastructure.OTelProviders
	Logger        *slog.Logger

	listener    net.Listener
	unsubscribe func()
}

// NewApplication loads configuration and observability from the
// environment and builds the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.Version),
		slog.String("backend", cfg.Backend.BaseURL))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	return New(cfg, logger, otelProviders)
}

// New builds the application from explicit dependencies. providers may be
// nil, which disables /metrics and records nothing.
func New(cfg *config.Config, logger *slog.Logger, providers *infrastructure.OTelProviders) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: providers,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}
	app.setupRouter()
	app.createServer()

	return app, nil
}

// NewTransports builds the transports the backend config asks for. The
// primary is nil when the API client is disabled.
func NewTransports(cfg config.BackendConfig) (primary, direct reportsapi.Transport) {
	opts := reportsapi.Options{
		BaseURL:   cfg.BaseURL,
		Timeout:   cfg.Timeout,
		AuthToken: cfg.AuthToken,
		UserAgent: fmt.Sprintf("campus-room-reports/%s", contracts.Version),
	}
	direct = reportsapi.NewDirect(opts)
	if cfg.UsePrimaryClient {
		primary = reportsapi.NewClient(opts)
	}
	return primary, direct
}

func (a *Application) initializeServices() error {
	a.Metrics = infrastructure.NoopReportMetrics()
	if a.OTelProviders != nil && a.OTelProviders.Meter != nil {
		m, err := infrastructure.CreateReportMetrics(a.OTelProviders.Meter)
		if err != nil {
			return fmt.Errorf("failed to create report metrics: %w", err)
		}
		a.Metrics = m
	}

	primary, direct := NewTransports(a.Config.Backend)
	fetcher := reports.NewFetcher(primary, direct, a.Logger, a.Metrics)

	a.Dashboard = reports.NewDashboard(fetcher,
		reports.WithForceRefresh(a.Config.Backend.ForceRefresh),
		reports.WithLogger(a.Logger),
		reports.WithMetrics(a.Metrics),
	)

	a.WebSocketHub = ws.NewHub(a.Logger, a.Metrics, a.Config.Security.AllowedOrigins)
	a.WebSocketHub.PublishState(a.Dashboard.View())
	a.unsubscribe = a.Dashboard.Subscribe(func(v reports.ViewState) {
		a.WebSocketHub.PublishState(v)
	})

	if cron := a.Config.Schedule.RefreshCron; cron != "" {
		svc, err := scheduler.NewService(a.Logger)
		if err != nil {
			return fmt.Errorf("failed to create scheduler: %w", err)
		}
		if _, err := svc.ScheduleRefresh(cron, a.Config.Backend.Timeout*2, a.Dashboard); err != nil {
			return fmt.Errorf("invalid refresh schedule %q: %w", cron, err)
		}
		a.Scheduler = svc
	}

	exportDir, err := a.Config.ExportDir()
	if err != nil {
		return err
	}
	a.HealthService = services.NewHealthService(a.Dashboard, a.WebSocketHub, exportDir, a.Logger)
	a.ErrorHandler = apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Level == "debug")

	a.Logger.Info("Services initialized",
		slog.Bool("primary_client", primary != nil),
		slog.Bool("force_refresh", a.Config.Backend.ForceRefresh),
		slog.String("refresh_cron", a.Config.Schedule.RefreshCron))
	return nil
}

// setupRouter applies middleware in the order RequestID, RealIP, OTel,
// Logger, Recoverer, then per-group limits
func (a *Application) setupRouter() {
	r := chi.NewRouter()
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	var tracer trace.Tracer
	if a.OTelProviders != nil {
		tracer = a.OTelProviders.Tracer
	}
	r.Use(customMiddleware.NewOTelMiddleware(tracer, a.Metrics, a.Logger).Handler)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(a.ErrorHandler.Recoverer)

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	// The live view upgrades the connection, so it skips the header and
	// rate limiting middleware
	r.Handle(config.WebSocketEndpoint, a.WebSocketHub)

	if a.OTelProviders != nil && a.OTelProviders.PrometheusHTTP != nil {
		r.Handle(config.MetricsEndpoint, a.OTelProviders.PrometheusHTTP)
	}

	r.Group(func(r chi.Router) {
		r.Use(customMiddleware.SecurityHeaders)
		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
				AllowedOrigins: a.Config.Security.AllowedOrigins,
				Logger:         a.Logger,
			}))
		}
		if rl := a.Config.Security.RateLimit; rl.Enabled && rl.RPS > 0 {
			r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.Logger).Handler)
		}

		a.setupAPIRoutes(r)
	})

	a.Router = r
}

func (a *Application) setupAPIRoutes(r chi.Router) {
	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout))

			healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
			r.Get("/health", healthHandler.HealthCheck)
			r.Get("/health/ready", healthHandler.ReadinessCheck)
			r.Get("/health/live", healthHandler.LivenessCheck)
			r.Get("/version", healthHandler.Version)

			r.Post("/logs", handlers.NewClientLogHandler(a.Logger).Handle)
		})

		// Loads and exports wait on the backend; they carry their own limits
		dashboardHandler := handlers.NewDashboardHandler(a.Dashboard, a.Logger, a.ErrorHandler, a.Config.Server.ExportTimeout)
		r.Mount("/dashboard", dashboardHandler.Routes())
	})
}

func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Addr returns the address the server listens on once started
func (a *Application) Addr() string {
	if a.listener == nil {
		return a.Server.Addr
	}
	return a.listener.Addr().String()
}

// Start starts the background services and the server, then loads the
// report once. cancel is called if the server stops on its own.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	a.listener = ln

	a.WebSocketHub.Start()
	if a.Scheduler != nil {
		a.Scheduler.Start()
	}

	go func() {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "Server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "Application started",
		slog.String("address", a.Addr()),
		slog.String("version", contracts.Version))

	go func() {
		loadCtx := infrastructure.EnsureTraceID(ctx)
		if _, err := a.Dashboard.FetchReportData(loadCtx, a.Config.Backend.ForceRefresh); err != nil {
			a.Logger.WarnContext(loadCtx, "Initial report load failed", slog.String("error", err.Error()))
		}
	}()

	return nil
}

// Stop shuts the server down and then the background services
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.Scheduler != nil {
		if err := a.Scheduler.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("scheduler shutdown error: %w", err))
		}
	}
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	a.WebSocketHub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "Received interrupt signal")
	case <-ctx.Done():
		a.Logger.WarnContext(ctx, "Server stopped unexpectedly")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()
	return a.Stop(stopCtx)
}
