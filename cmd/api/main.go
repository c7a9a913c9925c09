package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/angelmondragon/salonflow-backend/api/routes"
	"github.com/angelmondragon/salonflow-backend/internal/businesses"
	"github.com/angelmondragon/salonflow-backend/internal/calendar"
	"github.com/angelmondragon/salonflow-backend/internal/catalog"
	"github.com/angelmondragon/salonflow-backend/internal/clients"
	"github.com/angelmondragon/salonflow-backend/internal/employees"
	"github.com/angelmondragon/salonflow-backend/internal/engagements"
	"github.com/angelmondragon/salonflow-backend/internal/identity"
	"github.com/angelmondragon/salonflow-backend/internal/payments"
	"github.com/angelmondragon/salonflow-backend/internal/reporting"
	"github.com/angelmondragon/salonflow-backend/internal/scheduler"
	"github.com/angelmondragon/salonflow-backend/pkg/config"
	"github.com/angelmondragon/salonflow-backend/pkg/db"
	"github.com/angelmondragon/salonflow-backend/pkg/gcal"
	"github.com/angelmondragon/salonflow-backend/pkg/logger"
	"github.com/angelmondragon/salonflow-backend/pkg/metrics"
	"github.com/angelmondragon/salonflow-backend/pkg/migrate"
	"github.com/angelmondragon/salonflow-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	dbClient, err := db.New(context.Background(), cfg.DB, cfg.FeatureFlags, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.NewHTTPMetrics(registry)
	syncMetrics := metrics.NewSyncMetrics(registry)

	gormDB := dbClient.DB()
	businessRepo := businesses.NewRepository(gormDB)
	employeeRepo := employees.NewRepository(gormDB)
	clientRepo := clients.NewRepository(gormDB)
	noteRepo := clients.NewNoteRepository(gormDB)
	catalogRepo := catalog.NewRepository(gormDB)
	appointmentRepo := scheduler.NewRepository(gormDB)
	eventRepo := calendar.NewRepository(gormDB)
	paymentRepo := payments.NewRepository(gormDB)
	assignmentRepo := engagements.NewAssignmentRepository(gormDB)
	historyRepo := engagements.NewHistoryRepository(gormDB)
	aggregateRepo := reporting.NewRepository(gormDB)

	identityService, err := identity.NewService(identity.ServiceParams{
		AdminRepo:      identity.NewAdminRepository(gormDB),
		EmployeeRepo:   identity.NewEmployeeCredentialRepository(gormDB),
		BusinessRepo:   businessRepo,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create identity service", err)
		os.Exit(1)
	}

	businessService, err := businesses.NewService(businessRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create business service", err)
		os.Exit(1)
	}

	employeeService, err := employees.NewService(employees.ServiceParams{
		EmployeeRepo:   employeeRepo,
		BusinessRepo:   businessRepo,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create employee service", err)
		os.Exit(1)
	}

	clientService, err := clients.NewService(clients.ServiceParams{
		TxRunner:   dbClient,
		ClientRepo: clientRepo,
		NoteRepo:   noteRepo,
		History:    historyRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create client service", err)
		os.Exit(1)
	}

	catalogService, err := catalog.NewService(catalogRepo)
	if err != nil {
		logg.Error(context.Background(), "failed to create catalog service", err)
		os.Exit(1)
	}

	schedulerService, err := scheduler.NewService(scheduler.ServiceParams{
		TxRunner:        dbClient,
		AppointmentRepo: appointmentRepo,
		EventRepo:       eventRepo,
		History:         historyRepo,
		ClientRepo:      clientRepo,
		EmployeeRepo:    employeeRepo,
		ServiceRepo:     catalogRepo,
		CalendarConfig:  cfg.Calendar,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create scheduler service", err)
		os.Exit(1)
	}

	calendarParams := calendar.ServiceParams{
		Repo:         eventRepo,
		Appointments: appointmentRepo,
		SyncMetrics:  syncMetrics,
	}
	if cfg.Calendar.ProviderToken != "" {
		providerClient, err := gcal.NewClient(
			cfg.Calendar.ProviderToken,
			gcal.WithBaseURL(cfg.Calendar.ProviderBaseURL),
			gcal.WithTimeZone(cfg.Calendar.TimeZone),
			gcal.WithHTTPClient(&http.Client{Timeout: cfg.Calendar.ProviderTimeout}),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create calendar provider client", err)
			os.Exit(1)
		}
		calendarParams.Provider = providerClient
	} else {
		logg.Warn(context.Background(), "calendar provider token not set, external sync disabled")
	}

	calendarService, err := calendar.NewService(calendarParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create calendar service", err)
		os.Exit(1)
	}

	paymentService, err := payments.NewService(payments.ServiceParams{
		PaymentRepo: paymentRepo,
		ClientRepo:  clientRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create payment service", err)
		os.Exit(1)
	}

	engagementService, err := engagements.NewService(engagements.ServiceParams{
		AssignmentRepo: assignmentRepo,
		HistoryRepo:    historyRepo,
		ClientRepo:     clientRepo,
		ServiceRepo:    catalogRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create engagement service", err)
		os.Exit(1)
	}

	reportingService, err := reporting.NewService(reporting.ServiceParams{
		AggregateRepo: aggregateRepo,
		EventRepo:     eventRepo,
		BusinessRepo:  businessRepo,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create reporting service", err)
		os.Exit(1)
	}

	router := routes.NewRouter(
		cfg,
		logg,
		dbClient,
		redisClient,
		httpMetrics,
		promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		routes.Services{
			Identity:    identityService,
			Businesses:  businessService,
			Employees:   employeeService,
			Clients:     clientService,
			Catalog:     catalogService,
			Scheduler:   schedulerService,
			Calendar:    calendarService,
			Payments:    paymentService,
			Engagements: engagementService,
			Reporting:   reportingService,
		},
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port

	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":  cfg.App.Env,
		"addr": addr,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-shutdownCtx.Done():
		logg.Info(ctx, "shutting down api server")
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := server.Shutdown(timeoutCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
}
