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
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"golang.org/x/sync/errgroup"

	"brandsales/internal/config"
	"brandsales/internal/dataprocessing"
	apierrors "brandsales/internal/errors"
	"brandsales/internal/exporter"
	"brandsales/internal/infrastructure"
	customMiddleware "brandsales/internal/middleware"
	"brandsales/internal/services"
	handlers "brandsales/internal/transport/http"
	"brandsales/internal/validation"
	"brandsales/pkg/contracts"
)

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
	Services      *ServiceContainer
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Classifier    *dataprocessing.BrandClassifier
	FileValidator *validation.FileValidator
	Reports       *services.ReportService
	Health        *services.HealthService
}

// NewApplication loads the configuration, initializes the global logger and
// wires the application
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, apierrors.NewConfigError("failed to load configuration", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New wires an application from an already loaded configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", config.AppName),
		slog.String("version", contracts.GetVersionString()))

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.OTelConfigFrom(cfg.Telemetry), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices initializes all application services
func (a *Application) initializeServices() error {
	rules, err := a.Config.Brands.Resolve()
	if err != nil {
		return apierrors.NewConfigError("failed to load brand rules", err).
			WithContext("rules_file", a.Config.Brands.RulesFile)
	}
	if rules == nil {
		rules = dataprocessing.DefaultBrandRules()
	}

	classifier, err := dataprocessing.NewBrandClassifier(rules)
	if err != nil {
		return fmt.Errorf("failed to build brand classifier: %w", err)
	}
	a.Logger.Info("Brand rules loaded",
		slog.Int("rules", classifier.Rules()),
		slog.String("rules_file", a.Config.Brands.RulesFile))

	fileValidator := validation.NewFileValidator(a.Logger, a.Config.Upload)

	reports := services.NewReportService(classifier, fileValidator, a.OTelProviders.Tracer, a.Metrics, a.Logger)

	health := services.NewHealthService(contracts.GetVersionInfo(), a.Logger)
	health.RegisterCheck("brand_rules", func(context.Context) services.ServiceHealth {
		return services.Ready(fmt.Sprintf("%d brand rules", classifier.Rules()))
	})
	if a.Config.Telemetry.MetricExporter == "prometheus" {
		health.RegisterCheck("metrics", func(context.Context) services.ServiceHealth {
			if a.OTelProviders.PrometheusHTTP == nil {
				return services.NotReady("prometheus exporter not initialized")
			}
			return services.Ready("")
		})
	}
	if a.Config.Logging.Output != "console" {
		logDir := filepath.Dir(a.Config.Logging.FilePath)
		health.RegisterCheck("log_directory", func(context.Context) services.ServiceHealth {
			if err := fileValidator.ValidateOutputDirectory(logDir); err != nil {
				return services.NotReady(err.Error())
			}
			return services.Ready(logDir)
		})
	}

	a.Services = &ServiceContainer{
		Classifier:    classifier,
		FileValidator: fileValidator,
		Reports:       reports,
		Health:        health,
	}

	return nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	// Preflight requests must be answered before routing rejects OPTIONS
	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(a.getCORSConfig()))
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	r.Group(func(r chi.Router) {
		// Order: OTel, Logger, Recoverer, SecurityHeaders, rate limit, Timeout
		r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.ErrorHandler))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.ErrorHandler,
				a.Logger,
			).Handler)
		}

		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.ErrorHandler))

		a.setupAPIRoutes(r)
		a.setupHTMLRoutes(r)
	})

	// Scrapes stay outside the middleware group so they are neither rate
	// limited nor counted as requests
	r.Handle(config.MetricsEndpoint, handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.Router = r
}

// setupAPIRoutes configures API endpoints
func (a *Application) setupAPIRoutes(r chi.Router) {
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	reportHandler := handlers.NewReportHandler(
		a.Services.Reports,
		customMiddleware.NewRequestValidator(a.Logger),
		a.ErrorHandler,
		a.Config.Upload.MaxBytes,
		a.Logger,
	)

	r.Route(config.APIBasePath, func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)
		r.Mount("/reports", reportHandler.Routes())
	})
}

// setupHTMLRoutes configures the upload page
func (a *Application) setupHTMLRoutes(r chi.Router) {
	htmlHandler := handlers.NewHTMLHandler(
		a.Services.Reports,
		exporter.NewMoneyFormatter(a.Config.Display.CurrencySymbol, a.Config.Display.Locale),
		a.Config.Upload.MaxBytes,
		a.Config.Upload.AllowedExtensions,
		a.Logger,
	)

	r.Get("/", htmlHandler.Index)
	r.Post("/report", htmlHandler.Report)
}

// getCORSConfig builds the CORS policy. Development mode also admits the
// local origins used while working on the page.
func (a *Application) getCORSConfig() customMiddleware.CORSConfig {
	corsConfig := customMiddleware.CORSConfig{
		AllowedOrigins: append([]string(nil), a.Config.Security.AllowedOrigins...),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{
			"Accept",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders: []string{
			"X-Request-ID",
			"Content-Disposition",
		},
		MaxAge: 300,
		Logger: a.Logger,
	}

	if a.isDevelopmentMode() {
		for _, origin := range []string{"http://localhost:3000", "http://127.0.0.1:3000", "http://127.0.0.1:8080"} {
			if !contains(corsConfig.AllowedOrigins, origin) {
				corsConfig.AllowedOrigins = append(corsConfig.AllowedOrigins, origin)
			}
		}
	}

	a.Logger.Info("CORS configured",
		slog.Bool("development", a.isDevelopmentMode()),
		slog.Any("allowed_origins", corsConfig.AllowedOrigins))

	return corsConfig
}

// isDevelopmentMode reports whether development behaviour is switched on by
// configuration or by GO_ENV=development
func (a *Application) isDevelopmentMode() bool {
	if a.Config.Logging.Development {
		return true
	}
	return strings.EqualFold(os.Getenv("GO_ENV"), "development")
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Address(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Run listens on the configured address and serves until ctx is cancelled or
// the process receives SIGINT or SIGTERM
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	ln, err := net.Listen("tcp", a.Server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", a.Server.Addr, err)
	}
	return a.Serve(ctx, ln)
}

// Serve serves HTTP on ln until ctx is cancelled, then shuts down gracefully
func (a *Application) Serve(ctx context.Context, ln net.Listener) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.InfoContext(gctx, "HTTP server listening",
			slog.String("address", ln.Addr().String()),
			slog.String("version", contracts.Version))

		if err := a.Server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		a.performStartupHealthCheck(gctx)
		<-gctx.Done()
		return a.Stop(context.WithoutCancel(gctx))
	})

	return g.Wait()
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown error: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			a.Logger.ErrorContext(ctx, "Error shutting down OpenTelemetry", slog.String("error", err.Error()))
		}
	}

	a.Logger.InfoContext(ctx, "Application shutdown complete")
	return errors.Join(errs...)
}

// performStartupHealthCheck logs failing readiness checks at startup. They
// are warnings; the server keeps running and /api/health/ready reports them.
func (a *Application) performStartupHealthCheck(ctx context.Context) {
	status := a.Services.Health.ReadinessCheck(ctx)
	if status.Status == services.StatusReady {
		a.Logger.InfoContext(ctx, "Startup health check passed",
			slog.Int("checks", len(status.Services)))
		return
	}

	var failing []string
	for name, check := range status.Services {
		if check.Status != services.StatusReady {
			failing = append(failing, fmt.Sprintf("%s: %s", name, check.Message))
		}
	}
	a.Logger.WarnContext(ctx, "Startup health check warnings",
		slog.String("warnings", strings.Join(failing, "; ")))
}
