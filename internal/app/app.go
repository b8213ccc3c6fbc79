// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/subwatch/subwatch/internal/billing"
	billingpostgres "github.com/subwatch/subwatch/internal/billing/postgres"
	"github.com/subwatch/subwatch/internal/config"
	"github.com/subwatch/subwatch/internal/pkg/ctxlog"
	"github.com/subwatch/subwatch/internal/pkg/httputil"
	"github.com/subwatch/subwatch/internal/pkg/metrics"
	"github.com/subwatch/subwatch/internal/pkg/postgres"
	"github.com/subwatch/subwatch/internal/reminders"
	"github.com/subwatch/subwatch/internal/reminders/email"
	reminderspostgres "github.com/subwatch/subwatch/internal/reminders/postgres"
	"github.com/subwatch/subwatch/internal/reminders/telegram"
	"github.com/subwatch/subwatch/internal/tracker"
	trackerpostgres "github.com/subwatch/subwatch/internal/tracker/postgres"
	"github.com/subwatch/subwatch/internal/version"
)

// App represents the application instance.
type App struct {
	config         *config.Config
	logger         *slog.Logger
	db             *pgxpool.Pool
	server         *http.Server
	metricsServer  *http.Server
	metricsCancel  context.CancelFunc
	reminderWorker *reminders.Worker
}

// New creates a new application instance.
func New(cfg *config.Config) (*App, error) {
	logger := initLogger(cfg.Log)

	connectCtx, connectCancel := context.WithTimeout(context.Background(), cfg.Database.ConnectTimeout)
	defer connectCancel()

	db, err := postgres.Connect(connectCtx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnectAttempts: cfg.Database.ConnectAttempts,
	})
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := postgres.Migrate(cfg.Database.URL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	metricsCtx, metricsCancel := context.WithCancel(context.Background())

	app := &App{
		config:        cfg,
		logger:        logger,
		db:            db,
		metricsCancel: metricsCancel,
	}

	go app.collectDBMetrics(metricsCtx)

	router, reminderWorker, err := app.setupRouter(metricsCtx)
	if err != nil {
		db.Close()
		metricsCancel()
		return nil, fmt.Errorf("setup router: %w", err)
	}

	app.reminderWorker = reminderWorker

	app.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:           router,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	// Metrics server on separate port
	metricsRouter := chi.NewRouter()
	metricsRouter.Handle("/metrics", promhttp.Handler())

	app.metricsServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.MetricsPort),
		Handler:           metricsRouter,
		ReadTimeout:       5 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	return app, nil
}

// Run starts the HTTP servers.
func (a *App) Run() error {
	// Start metrics server in background
	go func() {
		a.logger.Info("starting metrics server",
			"host", a.config.Server.Host,
			"port", a.config.Server.MetricsPort,
		)
		if err := a.metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.logger.Error("metrics server error", "error", err)
		}
	}()

	// Start main server
	a.logger.Info("starting server",
		"host", a.config.Server.Host,
		"port", a.config.Server.Port,
	)

	if err := a.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down servers")

	a.metricsCancel()

	// Stop reminder worker first
	if a.reminderWorker != nil {
		a.reminderWorker.Stop()
	}

	// Shutdown both servers in parallel
	var wg sync.WaitGroup
	var errs []error
	var mu sync.Mutex

	wg.Add(2)

	go func() {
		defer wg.Done()
		if err := a.server.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown server: %w", err))
			mu.Unlock()
		}
	}()

	go func() {
		defer wg.Done()
		if err := a.metricsServer.Shutdown(ctx); err != nil {
			mu.Lock()
			errs = append(errs, fmt.Errorf("shutdown metrics server: %w", err))
			mu.Unlock()
		}
	}()

	wg.Wait()

	a.db.Close()

	return errors.Join(errs...)
}

func (a *App) collectDBMetrics(ctx context.Context) {
	// Collect immediately on start
	metrics.RecordDBPoolMetrics(a.db)

	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			metrics.RecordDBPoolMetrics(a.db)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) collectQueueMetrics(ctx context.Context, repo reminders.Repository) {
	ticker := time.NewTicker(15 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stats, err := repo.GetQueueStats(ctx)
			if err != nil {
				slog.Error("failed to get queue stats", "error", err)
				continue
			}
			reminders.RecordQueueStats(stats)
		case <-ctx.Done():
			return
		}
	}
}

// Router returns the HTTP handler for testing.
func (a *App) Router() http.Handler {
	return a.server.Handler
}

// ReminderWorker returns the reminder worker instance.
// Used in tests to access worker state. Returns nil if reminders disabled.
func (a *App) ReminderWorker() *reminders.Worker {
	return a.reminderWorker
}

func (a *App) setupRouter(ctx context.Context) (*chi.Mux, *reminders.Worker, error) {
	r := chi.NewRouter()

	// Metrics middleware must be first to measure full request time
	r.Use(httputil.MetricsMiddleware)

	// CORS must be early to handle preflight requests before other middleware
	r.Use(httputil.CORSMiddleware(a.config.CORS.AllowedOrigins))
	r.Use(middleware.RequestID)
	r.Use(httputil.RequestLoggerMiddleware(a.logger))
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", a.healthzHandler)
	r.Get("/readyz", a.readyzHandler)
	r.Get("/version", a.versionHandler)

	remindersRepo := reminderspostgres.NewRepository(a.db)
	var scheduler tracker.ReminderScheduler
	var reminderWorker *reminders.Worker

	slog.Info("reminders configured",
		"enabled", a.config.Reminders.Enabled,
		"email_enabled", a.config.Reminders.Email.Enabled,
		"telegram_enabled", a.config.Reminders.Telegram.Enabled,
	)

	if a.config.Reminders.Enabled {
		emailSender, err := email.NewSender(email.Config{
			Enabled:      a.config.Reminders.Email.Enabled,
			SMTPHost:     a.config.Reminders.Email.SMTPHost,
			SMTPPort:     a.config.Reminders.Email.SMTPPort,
			SMTPUser:     a.config.Reminders.Email.SMTPUser,
			SMTPPassword: a.config.Reminders.Email.SMTPPassword,
			FromAddress:  a.config.Reminders.Email.FromAddress,
			ToAddress:    a.config.Reminders.Email.ToAddress,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create email sender: %w", err)
		}

		if !a.config.Reminders.Email.Enabled {
			slog.Warn("email sender is disabled: email reminders will not be sent")
		}

		telegramSender, err := telegram.NewSender(telegram.Config{
			Enabled:   a.config.Reminders.Telegram.Enabled,
			BotToken:  a.config.Reminders.Telegram.BotToken,
			ChatID:    a.config.Reminders.Telegram.ChatID,
			RateLimit: a.config.Reminders.Telegram.RateLimit,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("create telegram sender: %w", err)
		}

		if !a.config.Reminders.Telegram.Enabled {
			slog.Warn("telegram sender is disabled: telegram reminders will not be sent")
		}

		renderer, err := reminders.NewRenderer(
			[]string{reminders.ChannelEmail, reminders.ChannelTelegram},
			a.config.Reminders.LeadTime,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("create reminder renderer: %w", err)
		}

		dispatcher := reminders.NewDispatcher(renderer, emailSender, telegramSender)

		scheduler = reminders.NewScheduler(remindersRepo, reminders.SchedulerConfig{
			LeadTime:    a.config.Reminders.LeadTime,
			MaxAttempts: a.config.Reminders.Retry.MaxAttempts,
		})

		workerConfig := reminders.WorkerConfig{
			BatchSize:         a.config.Reminders.Worker.BatchSize,
			PollInterval:      a.config.Reminders.Worker.PollInterval,
			MaxAttempts:       a.config.Reminders.Retry.MaxAttempts,
			InitialBackoff:    a.config.Reminders.Retry.InitialBackoff,
			MaxBackoff:        a.config.Reminders.Retry.MaxBackoff,
			BackoffMultiplier: a.config.Reminders.Retry.BackoffMultiplier,
			NumWorkers:        a.config.Reminders.Worker.NumWorkers,
		}

		reminderWorker = reminders.NewWorker(workerConfig, remindersRepo, dispatcher)
		reminderWorker.Start(ctx)

		// Start queue metrics collection
		go a.collectQueueMetrics(ctx, remindersRepo)
	}

	trackerRepo := trackerpostgres.NewRepository(a.db)
	trackerService := tracker.NewService(trackerRepo, scheduler)
	trackerHandler := tracker.NewHandler(trackerService)

	billingRepo := billingpostgres.NewRepository(a.db)
	billingService := billing.NewService(billingRepo)
	billingHandler := billing.NewHandler(billingService, a.config.Billing.WebhookSecret)

	r.Route("/api/v1", func(r chi.Router) {
		trackerHandler.RegisterRoutes(r)
		billingHandler.RegisterRoutes(r)
	})

	return r, reminderWorker, nil
}

func (a *App) healthzHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) readyzHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := a.db.Ping(ctx); err != nil {
		ctxlog.FromContext(r.Context()).Error("readiness check failed", "error", err)
		httputil.Text(w, http.StatusServiceUnavailable, "Database unavailable")
		return
	}

	httputil.Text(w, http.StatusOK, "OK")
}

func (a *App) versionHandler(w http.ResponseWriter, _ *http.Request) {
	httputil.JSON(w, http.StatusOK, map[string]string{
		"version":    version.Version,
		"commit":     version.GitCommit,
		"build_date": version.BuildDate,
	})
}

func initLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var handler slog.Handler
	opts := &slog.HandlerOptions{Level: level}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
