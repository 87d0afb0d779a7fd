package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"adarecon/internal/config"
	apierrors "adarecon/internal/errors"
	"adarecon/internal/infrastructure"
	customMiddleware "adarecon/internal/middleware"
	"adarecon/internal/services"
	handlers "adarecon/internal/transport/http"
	"adarecon/pkg/contracts"
)

// Application represents the reconciliation server
type Application struct {
	Config  *config.Config
	Paths   *config.Paths
	Router  *chi.Mux
	Server  *http.Server
	Service *services.ReconciliationService
	Metrics *infrastructure.PipelineMetrics
	Tracing *infrastructure.Tracing
	Logger  *slog.Logger

	errorHandler *apierrors.ErrorHandler
}

// NewApplication wires the service, router and HTTP server from a loaded
// configuration. Nothing is started until Run.
func NewApplication(cfg *config.Config, paths *config.Paths, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	tracing, err := infrastructure.InitializeTracing(cfg.Telemetry.Tracing, contracts.Version, nil, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	metrics := infrastructure.NewPipelineMetrics()
	app := &Application{
		Config:  cfg,
		Paths:   paths,
		Metrics: metrics,
		Tracing: tracing,
		Logger:  logger,
		Service: services.NewReconciliationService(cfg, paths, logger,
			services.WithTracer(tracing.Tracer),
			services.WithMetrics(metrics)),
		errorHandler: apierrors.NewErrorHandler(logger, false),
	}

	app.setupRouter()
	app.createServer()
	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// RequestID → RealIP → error recovery/logging → headers → limits
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(apierrors.NewErrorMiddleware(a.errorHandler, a.Logger).Handler)
	r.Use(customMiddleware.SecurityHeaders)

	r.Handle("/metrics", a.Metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		health := handlers.NewHealthHandler(contracts.Version, a.Logger)
		r.Get("/health", health.HealthCheck)
		r.Get("/version", health.Version)

		r.Group(func(r chi.Router) {
			if rl := a.Config.Server.RateLimit; rl.Enabled {
				r.Use(customMiddleware.NewRateLimiter(rl.RPS, rl.Burst, a.errorHandler, a.Logger).Handler)
			}
			r.Use(customMiddleware.MaxBodySize(a.Config.Server.MaxUploadBytes))
			r.Use(middleware.Timeout(a.Config.Server.WriteTimeout))

			recon := handlers.NewReconciliationHandler(a.Service, a.Config.Run, a.Logger, a.errorHandler)
			r.Mount("/v1", recon.Routes())
		})
	})

	r.NotFound(a.errorHandler.NotFound)
	r.MethodNotAllowed(a.errorHandler.MethodNotAllowed)

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *Application) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve is Run on an existing listener.
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	a.Logger.InfoContext(ctx, "Starting server",
		slog.String("version", contracts.Version),
		slog.String("address", ln.Addr().String()),
		slog.String("level", a.Config.Logging.Level))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})
	return g.Wait()
}

// Stop gracefully stops the server and flushes telemetry.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down server")

	timeout := a.Config.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}
	if err := a.Tracing.Shutdown(shutdownCtx); err != nil {
		a.Logger.ErrorContext(ctx, "Error shutting down tracing", slog.String("error", err.Error()))
	}
	if err := a.Service.FlushMetrics(); err != nil {
		a.Logger.ErrorContext(ctx, "Error writing metrics file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "Server shutdown complete")
	return nil
}
