package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/qes/quotation-api/docs"
	"github.com/qes/quotation-api/internal/auth"
	"github.com/qes/quotation-api/internal/catalog"
	"github.com/qes/quotation-api/internal/config"
	"github.com/qes/quotation-api/internal/database"
	"github.com/qes/quotation-api/internal/datawarehouse"
	"github.com/qes/quotation-api/internal/http/handler"
	"github.com/qes/quotation-api/internal/http/middleware"
	"github.com/qes/quotation-api/internal/http/router"
	"github.com/qes/quotation-api/internal/jobs"
	"github.com/qes/quotation-api/internal/logger"
	"github.com/qes/quotation-api/internal/observability"
	"github.com/qes/quotation-api/internal/pricing"
	"github.com/qes/quotation-api/internal/repository"
	"github.com/qes/quotation-api/internal/service"
	"github.com/qes/quotation-api/internal/storage"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// @title QES Quotation API
// @version 1.0
// @description Quotation management with revision history, status tracking and monthly numbering

// @contact.name API Support
// @contact.email support@qes.example

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token
// @Security BearerAuth

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// Load basic configuration first (for logging setup)
	basicCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.NewLogger(&basicCfg.Logging, &basicCfg.App)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting application",
		zap.String("app", basicCfg.App.Name),
		zap.String("env", basicCfg.App.Environment),
		zap.Int("port", basicCfg.App.Port),
	)

	if host := os.Getenv("SWAGGER_HOST"); host != "" {
		docs.SwaggerInfo.Host = host
	} else {
		docs.SwaggerInfo.Host = fmt.Sprintf("localhost:%d", basicCfg.App.Port)
	}

	// In development secrets come from the environment, in staging/production
	// optionally from Azure Key Vault
	cfg, err := config.LoadWithSecrets(ctx, log)
	if err != nil {
		return fmt.Errorf("failed to load secrets: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		if cfg.App.Environment != "development" && cfg.App.Environment != "local" {
			return errors.New("auth.jwtSecret (JWT_SECRET) is required outside development")
		}
		log.Warn("No JWT secret configured, every bearer token will be rejected")
	}

	db, err := database.NewDatabase(&cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		log.Info("Database schema migrated", zap.String("driver", cfg.Database.Driver))
	}

	archiveStorage, err := storage.NewStorage(&cfg.Storage, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	log.Info("Storage initialized", zap.String("mode", cfg.Storage.Mode))

	// The warehouse is optional unless it is the catalog source
	var dwClient *datawarehouse.Client
	if cfg.DataWarehouse.Enabled {
		dwClient, err = datawarehouse.NewClient(&cfg.DataWarehouse, log)
		if err != nil {
			log.Warn("Data warehouse connection failed, continuing without it", zap.Error(err))
			dwClient = nil
		}
	}

	userRepo := repository.NewUserRepository(db)
	productRepo := repository.NewProductRepository(db)
	quotationRepo := repository.NewQuotationRepository(db)
	historyRepo := repository.NewQuotationHistoryRepository(db)

	var lookup catalog.Lookup
	switch cfg.Catalog.Source {
	case "warehouse":
		if dwClient == nil {
			return errors.New("catalog.source is warehouse but the data warehouse is unavailable")
		}
		lookup, err = catalog.NewWarehouseLookup(dwClient, cfg.Catalog.WarehouseTable, log)
		if err != nil {
			return fmt.Errorf("failed to initialize warehouse catalog: %w", err)
		}
	default:
		lookup = catalog.NewDatabaseLookup(productRepo)
	}
	log.Info("Catalog initialized", zap.String("source", cfg.Catalog.Source))

	var (
		counter     service.SequenceCounter
		redisClient *redis.Client
	)
	switch cfg.Numbering.Backend {
	case "redis":
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		counter = repository.NewRedisSequenceCounter(redisClient)
	default:
		counter = repository.NewNumberSequenceRepository(db)
	}

	location, err := cfg.Numbering.Location()
	if err != nil {
		return fmt.Errorf("invalid numbering time zone: %w", err)
	}
	log.Info("Numbering initialized",
		zap.String("backend", cfg.Numbering.Backend),
		zap.String("prefix", cfg.Numbering.Prefix),
		zap.String("time_zone", location.String()),
	)

	metrics := observability.NewMetrics()
	if sqlDB, err := db.DB(); err == nil {
		metrics.Registerer().MustRegister(collectors.NewDBStatsCollector(sqlDB, cfg.Database.Name))
	}

	numberService := service.NewNumberSequenceService(counter, quotationRepo, cfg.Numbering.Prefix, location, log)
	archiveService := service.NewArchiveService(archiveStorage, cfg.Storage.ArchivePrefix, log)
	quotationService := service.NewQuotationService(
		db,
		quotationRepo,
		historyRepo,
		pricing.NewPricer(lookup),
		numberService,
		archiveService,
		metrics,
		cfg.Numbering.MaxAttempts,
		log,
	)

	authMiddleware := auth.NewMiddleware(cfg, userRepo, log)
	rateLimiter := middleware.NewRateLimiter(&cfg.RateLimit, log)

	var warehouseChecker handler.WarehouseChecker
	if dwClient != nil {
		warehouseChecker = dwClient
	}
	healthHandler := handler.NewHealthHandler(db, warehouseChecker, numberService, log)
	quotationHandler := handler.NewQuotationHandler(quotationService, log)

	rt := router.NewRouter(
		cfg,
		log,
		metrics,
		authMiddleware,
		rateLimiter,
		healthHandler,
		quotationHandler,
	)

	var scheduler *jobs.Scheduler
	if cfg.Jobs.PurgeEnabled {
		scheduler = jobs.NewScheduler(log)
		purgeJob := jobs.NewPurgeJob(quotationService, metrics, log, cfg.Jobs.PurgeRetentionDays)
		if err := jobs.RegisterPurgeJob(scheduler, purgeJob, cfg.Jobs.PurgeSchedule); err != nil {
			return fmt.Errorf("failed to register purge job: %w", err)
		}
		scheduler.Start()
		next, _ := scheduler.NextRun(jobs.PurgeJobName)
		log.Info("Scheduler started with recycle bin purge",
			zap.String("cron_expr", cfg.Jobs.PurgeSchedule),
			zap.Int("retention_days", cfg.Jobs.PurgeRetentionDays),
			zap.Time("next_run", next),
		)
	} else {
		log.Info("Recycle bin purge disabled")
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.App.Port),
		Handler:      rt.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeoutDuration(),
		WriteTimeout: cfg.Server.WriteTimeoutDuration(),
	}

	serverErrors := make(chan error, 1)
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Info("Shutdown signal received", zap.String("signal", sig.String()))

		if scheduler != nil {
			<-scheduler.Stop().Done()
			log.Info("Scheduler stopped")
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			log.Error("Failed to shutdown gracefully", zap.Error(err))
			return err
		}

		if redisClient != nil {
			if err := redisClient.Close(); err != nil {
				log.Warn("Error closing redis connection", zap.Error(err))
			}
		}
		if dwClient != nil {
			if err := dwClient.Close(); err != nil {
				log.Warn("Error closing data warehouse connection", zap.Error(err))
			}
		}

		log.Info("Server stopped gracefully")
	}

	return nil
}
