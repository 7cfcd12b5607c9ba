package main

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

	"github.com/Dosada05/draft-league/brackets"
	"github.com/Dosada05/draft-league/cache"
	"github.com/Dosada05/draft-league/catalog"
	"github.com/Dosada05/draft-league/config"
	"github.com/Dosada05/draft-league/db"
	"github.com/Dosada05/draft-league/handlers"
	"github.com/Dosada05/draft-league/metrics"
	"github.com/Dosada05/draft-league/middleware"
	"github.com/Dosada05/draft-league/repositories"
	api "github.com/Dosada05/draft-league/routes"
	"github.com/Dosada05/draft-league/services"
	"github.com/Dosada05/draft-league/storage"
	"github.com/go-chi/chi/v5"
	"github.com/robfig/cron/v3"
)

func main() {
	// Загрузка конфигурации
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	// Настройка логгера
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	logger.Info("configuration loaded",
		slog.Int("port", cfg.ServerPort),
		slog.String("storage_backend", cfg.StorageBackend),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	// Хранилище турниров и пользователей
	var (
		tournamentRepo repositories.TournamentRepository
		userRepo       repositories.UserRepository
	)
	switch cfg.StorageBackend {
	case config.BackendPostgres:
		dbConn, err := db.Connect(cfg.DatabaseURL, 5*time.Second)
		if err != nil {
			logger.Error("failed to connect to database", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() {
			if err := dbConn.Close(); err != nil {
				logger.Error("failed to close database connection", slog.Any("error", err))
			} else {
				logger.Info("database connection closed")
			}
		}()
		if err := db.Migrate(dbConn); err != nil {
			logger.Error("failed to apply migrations", slog.Any("error", err))
			os.Exit(1)
		}
		tournamentRepo = repositories.NewPostgresTournamentRepository(dbConn)
		userRepo = repositories.NewPostgresUserRepository(dbConn)
		logger.Info("database connection established")
	case config.BackendFirestore:
		client, err := db.ConnectFirestore(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentials)
		if err != nil {
			logger.Error("failed to connect to firestore", slog.Any("error", err))
			os.Exit(1)
		}
		defer client.Close()
		tournamentRepo = repositories.NewFirestoreTournamentRepository(client)
		userRepo = repositories.NewFirestoreUserRepository(client)
		logger.Info("firestore client initialized", slog.String("project_id", cfg.FirebaseProjectID))
	default:
		tournamentRepo = repositories.NewMemoryTournamentRepository()
		userRepo = repositories.NewMemoryUserRepository()
		logger.Warn("using in-memory storage, data is lost on restart")
	}

	// Кэш таблиц
	standingsCache := cache.NewNoop()
	if cfg.RedisURL != "" {
		redisClient, err := cache.Connect(ctx, cfg.RedisURL)
		if err != nil {
			logger.Error("failed to connect to redis", slog.Any("error", err))
			os.Exit(1)
		}
		defer redisClient.Close()
		standingsCache = cache.NewRedisStandingsCache(redisClient, cfg.StandingsTTL)
		logger.Info("redis standings cache enabled", slog.Duration("ttl", cfg.StandingsTTL))
	}

	// Инициализация загрузчика файлов (Cloudflare R2)
	var uploader storage.FileUploader
	if cfg.R2Enabled() {
		uploader, err = storage.NewCloudflareR2Uploader(ctx, storage.CloudflareR2UploaderConfig{
			AccountID:       cfg.R2AccountID,
			AccessKeyID:     cfg.R2AccessKeyID,
			SecretAccessKey: cfg.R2SecretAccessKey,
			BucketName:      cfg.R2BucketName,
			PublicBaseURL:   cfg.R2PublicBaseURL,
		})
		if err != nil {
			logger.Error("failed to initialize Cloudflare R2 uploader", slog.Any("error", err))
			os.Exit(1)
		}
		logger.Info("Cloudflare R2 uploader initialized")
	} else {
		uploader = storage.NewMemoryUploader(cfg.R2PublicBaseURL)
		logger.Info("R2 is not configured, catalog uploads are kept in memory")
	}

	appMetrics := metrics.New()

	// Инициализация WebSocket Hub
	wsHub := brackets.NewHub(logger)
	go wsHub.Run(ctx)
	logger.Info("WebSocket Hub started")

	// Каталог покемонов
	bundled, err := catalog.NewBundled()
	if err != nil {
		logger.Error("failed to load bundled catalog", slog.Any("error", err))
		os.Exit(1)
	}
	catalogService := services.NewCatalogService(bundled, uploader, cfg.CatalogObjectKey, appMetrics, logger)
	if err := catalogService.Reload(ctx); err != nil && !errors.Is(err, services.ErrCatalogUnavailable) {
		logger.Warn("catalog reload failed, using bundled catalog", slog.Any("error", err))
	}

	scheduler := cron.New()
	if cfg.CatalogRefreshCron != "" {
		if _, err := catalogService.ScheduleRefresh(scheduler, cfg.CatalogRefreshCron); err != nil {
			logger.Error("invalid CATALOG_REFRESH_CRON", slog.Any("error", err))
			os.Exit(1)
		}
		scheduler.Start()
		logger.Info("catalog refresh scheduled", slog.String("spec", cfg.CatalogRefreshCron))
	}

	// Инициализация сервисов
	deps := services.Deps{
		Repo:     tournamentRepo,
		Cache:    standingsCache,
		Notifier: wsHub,
		Metrics:  appMetrics,
		Logger:   logger,
	}
	tournamentService := services.NewTournamentService(deps)
	playerService := services.NewPlayerService(deps, bundled)
	matchService := services.NewMatchService(deps)
	knockoutService := services.NewKnockoutService(deps)
	transactionService := services.NewTransactionService(deps, bundled)
	standingsService := services.NewStandingsService(deps)
	authService := services.NewAuthService(userRepo)
	logger.Info("Services initialized")

	// Инициализация обработчиков HTTP
	renderer, err := handlers.NewRenderer(logger)
	if err != nil {
		logger.Error("failed to parse templates", slog.Any("error", err))
		os.Exit(1)
	}
	sessions := middleware.NewSessionManager(cfg.JWTSecretKey, cfg.SessionTTL, cfg.CookieSecure, cfg.AdminUserIDs)
	h := api.Handlers{
		Auth:        handlers.NewAuthHandler(renderer, authService, sessions),
		Tournament:  handlers.NewTournamentHandler(renderer, tournamentService),
		Player:      handlers.NewPlayerHandler(renderer, tournamentService, playerService, catalogService),
		Match:       handlers.NewMatchHandler(renderer, tournamentService, matchService),
		Knockout:    handlers.NewKnockoutHandler(renderer, knockoutService),
		Transaction: handlers.NewTransactionHandler(renderer, transactionService, catalogService),
		Standings:   handlers.NewStandingsHandler(renderer, tournamentService, standingsService),
		Admin:       handlers.NewAdminHandler(catalogService),
		API:         handlers.NewAPIHandler(tournamentService, standingsService, matchService, catalogService),
		WebSocket:   handlers.NewWebSocketHandler(wsHub, tournamentService, cfg.CORSOrigins, logger),
	}
	logger.Info("HTTP handlers initialized")

	// Настройка маршрутизатора
	router := chi.NewRouter()
	api.SetupRoutes(router, h, api.Options{
		Sessions:       sessions,
		LoginLimiter:   middleware.NewRateLimiter(cfg.LoginRateRPS, cfg.LoginBurst),
		Metrics:        appMetrics,
		Renderer:       renderer,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})
	logger.Info("Routes configured")

	// Настройка и запуск HTTP-сервера
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError),
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("starting server", slog.String("address", server.Addr))
		serverErrors <- server.ListenAndServe()
	}()

	// Ожидание сигнала завершения
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.Any("error", err))
			os.Exit(1)
		} else {
			logger.Info("server stopped gracefully")
		}
	case sig := <-quit:
		logger.Info("shutdown signal received", slog.String("signal", sig.String()))
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancelShutdown()

		<-scheduler.Stop().Done()
		stop()

		logger.Info("shutting down server", slog.Duration("timeout", 15*time.Second))
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", slog.Any("error", err))
			if closeErr := server.Close(); closeErr != nil {
				logger.Error("failed to force close server", slog.Any("error", closeErr))
			}
			os.Exit(1)
		} else {
			logger.Info("server shutdown complete")
		}
	}
	logger.Info("application exited")
}
