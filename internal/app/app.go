package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/gorilla/websocket"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"taxwizz/internal/config"
	"taxwizz/internal/conversion"
	apierrors "taxwizz/internal/errors"
	"taxwizz/internal/files"
	"taxwizz/internal/infrastructure"
	customMiddleware "taxwizz/internal/middleware"
	"taxwizz/internal/services"
	"taxwizz/internal/store"
	handlers "taxwizz/internal/transport/http"
	"taxwizz/internal/validation"
	ws "taxwizz/internal/websocket"
	"taxwizz/pkg/contracts"
)

// Retention limits of the in-memory stores.
const (
	activityCapacity = 100
	statusCapacity   = 20
)

// Application is the composition root: it owns the configuration, the
// stores, the services, the router, and the HTTP server.
type Application struct {
	Config        *config.Config
	Paths         *config.Paths
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	Collector     *infrastructure.RuntimeCollector
	Hub           *ws.Hub
	Stores        *StoreContainer
	Services      *ServiceContainer
}

// StoreContainer holds the application's state stores.
type StoreContainer struct {
	Users       *store.MemoryUserStore
	Activities  store.ActivityStore
	Statuses    store.StatusStore
	Preferences store.PreferencesStore
}

// ServiceContainer holds the application's services.
type ServiceContainer struct {
	Auth          *services.AuthService
	Conversion    *services.ConversionService
	Notifications *services.NotificationService
	Health        *services.HealthService
	Stats         *services.StatsService
	Files         *files.Manager
}

// NewApplication wires the whole service together: configuration,
// logging, OpenTelemetry, stores, services, router, and HTTP server.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", contracts.GetVersionString()),
		slog.String("version", contracts.Version),
		slog.Int("port", cfg.Server.Port))

	paths, err := config.NewPaths(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}
	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	otelProviders, err := infrastructure.InitializeOTel(infrastructure.DefaultOTelConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	collector, err := infrastructure.NewRuntimeCollector(otelProviders.Meter, 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("failed to create runtime collector: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Paths:         paths,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		Collector:     collector,
	}

	if err := app.initializeServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices builds the stores and the service layer.
func (a *Application) initializeServices() error {
	users := store.NewMemoryUserStore()
	if err := store.SeedDefaultUsers(users); err != nil {
		return fmt.Errorf("failed to seed users: %w", err)
	}

	a.Stores = &StoreContainer{
		Users:       users,
		Activities:  store.NewMemoryActivityStore(activityCapacity),
		Statuses:    store.NewMemoryStatusStore(statusCapacity),
		Preferences: store.NewFilePreferencesStore(a.Paths),
	}

	a.Hub = ws.NewHub(a.Logger, a.Metrics)
	a.Hub.Start()

	fileManager := files.NewManager(a.Paths, a.Logger)

	a.Services = &ServiceContainer{
		Auth: services.NewAuthService(users, a.Stores.Activities, a.Config.Auth, a.Metrics, a.Logger),
		Conversion: services.NewConversionService(
			conversion.NewRegistry(),
			fileManager,
			a.Stores.Activities,
			a.Stores.Statuses,
			a.Hub,
			a.Metrics,
			a.Logger,
		),
		Notifications: services.NewNotificationService(a.Stores.Activities, a.Logger),
		Health:        services.NewHealthService(a.Paths, users, a.Logger),
		Stats:         services.NewStatsService(fileManager, a.Stores.Activities, a.Logger),
		Files:         fileManager,
	}

	return nil
}

// setupRouter builds the chi router. RequestID and RealIP run on every
// request; the traced middleware group wraps the /api surface. /ws and
// /metrics stay outside the group because wrapped ResponseWriters break
// the websocket upgrade.
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)

	r.With(customMiddleware.WebSocketTraceMiddleware(a.Logger)).HandleFunc("/ws", a.handleWebSocket)

	r.Group(func(r chi.Router) {
		otelMiddleware := customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics)
		r.Use(otelMiddleware.Handler)

		r.Use(customMiddleware.StructuredLogger(a.Logger))
		r.Use(customMiddleware.Recoverer(a.Logger))
		r.Use(customMiddleware.SecurityHeaders)

		if a.Config.Security.EnableCORS {
			r.Use(customMiddleware.CORS(a.corsConfig()))
		}

		if a.Config.Security.RateLimit.Enabled {
			r.Use(customMiddleware.NewRateLimiter(
				a.Config.Security.RateLimit.RPS,
				a.Config.Security.RateLimit.Burst,
				a.Logger,
			).Handler)
		}

		a.setupAPIRoutes(r)
	})

	if a.OTelProviders.PrometheusHTTP != nil {
		r.Handle("/metrics", a.OTelProviders.PrometheusHTTP)
	}

	a.Router = r
}

// setupAPIRoutes mounts the /api surface: public auth and health
// endpoints, then everything else behind the bearer-token middleware.
func (a *Application) setupAPIRoutes(r chi.Router) {
	errorHandler := apierrors.NewErrorHandler(a.Logger, a.Config.Logging.Development)
	authenticator := customMiddleware.NewAuthenticator(a.Services.Auth, errorHandler, a.Logger)

	loginLimiter := rate.NewLimiter(rate.Limit(a.Config.Auth.LoginRPS), a.Config.Auth.LoginBurst)
	authHandler := handlers.NewAuthHandler(a.Services.Auth, errorHandler, loginLimiter, a.Logger)
	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)

	uploads := validation.NewUploadValidator(a.Config.Conversion, a.Logger)
	convertHandler := handlers.NewConvertHandler(a.Services.Conversion, uploads, errorHandler, a.Config.Conversion.DefaultTemplate, a.Logger)
	templateHandler := handlers.NewTemplateHandler(a.Services.Conversion, a.Logger)
	filesHandler := handlers.NewFilesHandler(a.Services.Files, a.Services.Stats, a.Stores.Activities, errorHandler, a.Config.Conversion.RecentFilesLimit, a.Logger)
	backupHandler := handlers.NewBackupHandler(a.Services.Files, a.Stores.Activities, errorHandler, a.Logger)
	syncHandler := handlers.NewSyncHandler(a.Stores.Statuses, a.Stores.Activities, errorHandler, a.Logger)
	notificationHandler := handlers.NewNotificationHandler(a.Services.Notifications, errorHandler, a.Logger)
	preferencesHandler := handlers.NewPreferencesHandler(a.Stores.Preferences, a.Stores.Activities, errorHandler, a.Logger)
	validateHandler := handlers.NewValidateHandler(errorHandler, a.Logger)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		r.NotFound(errorHandler.NotFound)
		r.MethodNotAllowed(errorHandler.MethodNotAllowed)

		// Public endpoints
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/health", healthHandler.Routes())
		r.Get("/version", healthHandler.Version)

		// Everything else requires a valid access token
		r.Group(func(r chi.Router) {
			r.Use(authenticator.Handler)

			r.Post("/auth/logout", authHandler.Logout)
			r.Mount("/templates", templateHandler.Routes())
			r.Mount("/convert", convertHandler.Routes())
			r.Mount("/files", filesHandler.Routes())
			r.Get("/stats", filesHandler.Stats)
			r.Post("/backup", backupHandler.Create)
			r.Mount("/sync", syncHandler.Routes())
			r.Get("/notifications", notificationHandler.List)
			r.Mount("/preferences", preferencesHandler.Routes())
			r.Post("/validate", validateHandler.Validate)
		})
	})
}

// corsConfig derives the CORS settings from configuration.
func (a *Application) corsConfig() customMiddleware.CORSConfig {
	return customMiddleware.CORSConfig{
		AllowedOrigins: a.Config.Security.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
			"X-Requested-With",
		},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
		Logger:           a.Logger,
	}
}

// createServer builds the HTTP server around the router.
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// handleWebSocket upgrades /ws requests and hands the connection to the
// hub.
func (a *Application) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	traceID := customMiddleware.GetReqID(r.Context())
	ctx := infrastructure.WithTraceID(r.Context(), traceID)

	a.Logger.InfoContext(ctx, "websocket upgrade request",
		slog.String("remote_addr", r.RemoteAddr),
		slog.String("origin", r.Header.Get("Origin")))

	upgrader := websocket.Upgrader{
		ReadBufferSize:  a.Config.WebSocket.ReadBufferSize,
		WriteBufferSize: a.Config.WebSocket.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, allowed := range a.Config.Security.AllowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response
		a.Logger.ErrorContext(ctx, "websocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	ws.ServeWS(a.Hub, conn, traceID, a.Logger)
}

// Run serves until an interrupt or server failure, then shuts down
// gracefully.
func (a *Application) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.Logger.Info("server listening",
			slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		if err := a.Collector.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("runtime collector: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return a.Stop(context.Background())
	})

	return g.Wait()
}

// Stop shuts the server, hub, and telemetry down within the configured
// shutdown timeout.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	a.Hub.Stop()

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("otel shutdown: %w", err))
		}
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		errs = append(errs, fmt.Errorf("close log file: %w", err))
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return errors.Join(errs...)
}
