package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	exportBranchesHandler "github.com/m04kA/SMC-BranchDirectory/internal/api/handlers/export_branches"
	getBranchHandler "github.com/m04kA/SMC-BranchDirectory/internal/api/handlers/get_branch"
	importBranchesHandler "github.com/m04kA/SMC-BranchDirectory/internal/api/handlers/import_branches"
	listBranchesHandler "github.com/m04kA/SMC-BranchDirectory/internal/api/handlers/list_branches"
	listCitiesHandler "github.com/m04kA/SMC-BranchDirectory/internal/api/handlers/list_cities"
	updateBranchStatusHandler "github.com/m04kA/SMC-BranchDirectory/internal/api/handlers/update_branch_status"
	"github.com/m04kA/SMC-BranchDirectory/internal/api/middleware"
	"github.com/m04kA/SMC-BranchDirectory/internal/config"
	"github.com/m04kA/SMC-BranchDirectory/internal/infra/cache"
	branchRepo "github.com/m04kA/SMC-BranchDirectory/internal/infra/storage/branch"
	"github.com/m04kA/SMC-BranchDirectory/internal/infra/storage/memory"
	"github.com/m04kA/SMC-BranchDirectory/internal/integrations/feedclient"
	"github.com/m04kA/SMC-BranchDirectory/internal/jobs/feedimport"
	branchesService "github.com/m04kA/SMC-BranchDirectory/internal/service/branches"
	importUC "github.com/m04kA/SMC-BranchDirectory/internal/usecase/import_branches"
	"github.com/m04kA/SMC-BranchDirectory/migrations"
	"github.com/m04kA/SMC-BranchDirectory/pkg/dbmetrics"
	"github.com/m04kA/SMC-BranchDirectory/pkg/logger"
	"github.com/m04kA/SMC-BranchDirectory/pkg/metrics"
	"github.com/m04kA/SMC-BranchDirectory/pkg/scheduler"
	"github.com/m04kA/SMC-BranchDirectory/pkg/txmanager"
)

// branchRepository хранилище, общее для импорта и чтения
type branchRepository interface {
	importUC.BranchRepository
	branchesService.BranchRepository
}

// transactionManager менеджер транзакций, общий для импорта и чтения
type transactionManager interface {
	importUC.TransactionManager
	branchesService.TransactionManager
}

func main() {
	// Загружаем конфигурацию
	cfg, err := config.Load("config.toml")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Инициализируем логгер
	log, err := logger.New(cfg.Logs.File, cfg.Logs.Level)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Close()

	log.Info("Starting SMC-BranchDirectory...")
	log.Info("Configuration loaded from config.toml (storage=%s)", cfg.Storage.Driver)

	rootCtx, cancelRoot := context.WithCancel(context.Background())
	defer cancelRoot()

	// Инициализируем метрики (если включены)
	var metricsCollector *metrics.Metrics
	var importMetrics importUC.MetricsRecorder
	stopMetricsCh := make(chan struct{})

	if cfg.Metrics.Enabled {
		metricsCollector = metrics.New(cfg.Metrics.ServiceName)
		importMetrics = metricsCollector
		log.Info("Metrics enabled at %s", cfg.Metrics.Path)
	}

	// Хранилище
	var (
		repository branchRepository
		txMgr      transactionManager
	)

	switch cfg.Storage.Driver {
	case config.StorageDriverMemory:
		repository = memory.NewBranchRepository()
		txMgr = txmanager.NewPassthrough()
		log.Warn("Using in-memory storage, data will be lost on restart")

	default:
		db, err := sql.Open("postgres", cfg.Database.DSN())
		if err != nil {
			log.Fatal("Failed to connect to database: %v", err)
		}
		defer db.Close()

		// Настраиваем connection pool
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetime) * time.Second)

		// Проверяем соединение
		if err := db.PingContext(rootCtx); err != nil {
			log.Fatal("Failed to ping database: %v", err)
		}
		log.Info("Successfully connected to database (host=%s, port=%d, db=%s)",
			cfg.Database.Host, cfg.Database.Port, cfg.Database.DBName)

		if cfg.Database.AutoMigrate {
			if err := migrations.Up(db); err != nil {
				log.Fatal("Failed to apply migrations: %v", err)
			}
			log.Info("Database migrations applied")
		}

		var wrappedDB *dbmetrics.DB
		if cfg.Metrics.Enabled {
			wrappedDB = dbmetrics.WrapWithDefault(db, metricsCollector, cfg.Metrics.ServiceName, stopMetricsCh)
			log.Info("Database metrics collection started")
		} else {
			wrappedDB = dbmetrics.Wrap(db)
		}

		repository = branchRepo.NewRepository(wrappedDB)
		txMgr = txmanager.NewTransactionManager(wrappedDB)
	}

	// Кеш списков
	var branchCache branchesService.Cache = cache.NewNoopCache()
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer redisClient.Close()

		if err := redisClient.Ping(rootCtx).Err(); err != nil {
			log.Warn("Redis is unavailable at %s, continuing without cache: %v", cfg.Redis.Addr, err)
		} else {
			branchCache = cache.NewBranchCache(redisClient, time.Duration(cfg.Redis.TTL)*time.Second)
			log.Info("Redis cache enabled (addr=%s, ttl=%ds)", cfg.Redis.Addr, cfg.Redis.TTL)
		}
	}

	// Инициализируем сервисы и use cases
	branchSvc := branchesService.NewService(repository, txMgr, branchCache, log)

	normalizer := importUC.NewNormalizer(
		importUC.SchedulePolicy{AllowOvernight: cfg.Import.AllowOvernight},
		cfg.Import.PhoneRegion,
	)
	importUseCase := importUC.NewUseCase(normalizer, repository, txMgr, branchCache, importMetrics, log)

	// Периодический импорт фида
	var sched *scheduler.Service
	if cfg.Import.FeedEnabled() {
		client := feedclient.NewClient(
			cfg.Import.FeedURL,
			cfg.Import.FeedToken,
			time.Duration(cfg.Import.Timeout)*time.Second,
			cfg.Import.MaxFeedBytes,
			log,
		)
		job := feedimport.NewJob(client, importUseCase, time.Duration(cfg.Import.Timeout)*time.Second, log)

		sched, err = scheduler.New(log)
		if err != nil {
			log.Fatal("Failed to create scheduler: %v", err)
		}
		if _, err := sched.AddJob(feedimport.JobName, cfg.Import.Cron, job.Task(rootCtx)); err != nil {
			log.Fatal("Failed to schedule feed import: %v", err)
		}
		sched.Start()

		if cfg.Import.RunOnStart {
			go job.Task(rootCtx)()
		}
	} else {
		log.Info("Feed import disabled (import.feed_url is empty), only uploads are accepted")
	}

	// Инициализируем handlers
	listBranches := listBranchesHandler.NewHandler(branchSvc, log)
	getBranch := getBranchHandler.NewHandler(branchSvc, log)
	updateBranchStatus := updateBranchStatusHandler.NewHandler(branchSvc, log)
	listCities := listCitiesHandler.NewHandler(branchSvc, log)
	exportBranches := exportBranchesHandler.NewHandler(branchSvc, log)
	importBranches := importBranchesHandler.NewHandler(importUseCase, cfg.Server.MaxUploadBytes, log)

	// Настраиваем роутер
	r := mux.NewRouter()

	if cfg.Metrics.Enabled {
		r.Use(middleware.MetricsMiddleware(metricsCollector))
		log.Info("HTTP metrics middleware enabled")

		r.Handle(cfg.Metrics.Path, promhttp.Handler()).Methods(http.MethodGet)
		log.Info("Prometheus metrics endpoint exposed at %s", cfg.Metrics.Path)
	}

	api := r.PathPrefix("/api/v1").Subrouter()

	// Статические пути регистрируются раньше /branches/{branchId}
	api.HandleFunc("/branches", listBranches.Handle).Methods(http.MethodGet)
	api.HandleFunc("/branches/cities", listCities.Handle).Methods(http.MethodGet)
	api.HandleFunc("/branches/export", exportBranches.Handle).Methods(http.MethodGet)
	api.HandleFunc("/branches/import-json", importBranches.Handle).Methods(http.MethodPost)
	api.HandleFunc("/branches/{branchId:[0-9]+}", getBranch.Handle).Methods(http.MethodGet)
	api.HandleFunc("/branches/{branchId:[0-9]+}", updateBranchStatus.Handle).Methods(http.MethodPatch)

	// Создаем HTTP сервер
	addr := fmt.Sprintf(":%d", cfg.Server.HTTPPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Graceful shutdown
	go func() {
		log.Info("Starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Server failed to start: %v", err)
		}
	}()

	// Ожидаем сигнал завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if sched != nil {
		if err := sched.Stop(); err != nil {
			log.Error("Scheduler shutdown failed: %v", err)
		}
	}
	cancelRoot()

	// Останавливаем сбор метрик connection pool
	close(stopMetricsCh)

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
	)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown: %v", err)
	}

	log.Info("Server stopped gracefully")
}
