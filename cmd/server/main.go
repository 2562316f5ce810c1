package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"goride-ledger/internal/config"
	handlers "goride-ledger/internal/handlers/shared"
	"goride-ledger/internal/repositories/interfaces"
	"goride-ledger/internal/repositories/memory"
	"goride-ledger/internal/repositories/mongodb"
	"goride-ledger/internal/services"
	"goride-ledger/pkg/cache"
	"goride-ledger/pkg/database"
	"goride-ledger/pkg/logger"
	"goride-ledger/pkg/websocket"
	"goride-ledger/routes"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:      logger.LogLevel(cfg.App.LogLevel),
		Format:     cfg.App.LogFormat,
		TimeFormat: time.RFC3339,
		AppName:    cfg.App.Name,
		Version:    cfg.App.Version,
	})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, checks, closeStore, err := openStore(cfg, appLogger)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to open store")
	}
	defer closeStore()

	var redisCache *cache.RedisCache
	if cfg.Redis.Enabled {
		redisCache, err = cache.NewRedisCache(&cache.RedisConfig{
			Host:         cfg.Redis.Host,
			Port:         cfg.Redis.Port,
			Password:     cfg.Redis.Password,
			DB:           cfg.Redis.DB,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
			DialTimeout:  cfg.Redis.DialTimeout,
			ReadTimeout:  cfg.Redis.ReadTimeout,
			WriteTimeout: cfg.Redis.WriteTimeout,
		})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to connect to redis")
		}
		defer redisCache.Close()
		checks["cache"] = redisCache
	}

	hub := websocket.NewHub(appLogger)
	go hub.Run(ctx)
	relay := websocket.NewRelay(hub, redisCache, cfg.Redis.EventsChannel, appLogger)
	go relay.Run(ctx)

	cacheService := services.NewCacheService(redisCache, appLogger)
	notifier := services.NewNotificationService(relay, cfg.App.Currency, appLogger)
	walletService := services.NewWalletService(repos, cacheService, cfg.App.Currency, appLogger)
	capacityService := services.NewCapacityService(repos)
	bookingService := services.NewBookingService(repos, capacityService, walletService, notifier, services.NewFeePolicy(cfg.Ledger), appLogger)
	rideService := services.NewRideService(repos, bookingService, notifier, cfg.App.Currency, appLogger)
	ratingService := services.NewRatingService(repos, cacheService, appLogger)
	reconciliationService := services.NewReconciliationService(repos, walletService, rideService, appLogger)

	if cfg.Ledger.ReconciliationEnabled {
		go reconciliationService.Start(ctx, cfg.Ledger.ReconciliationInterval)
	}

	router := routes.NewRouter(&routes.Handlers{
		Wallet:  handlers.NewWalletHandler(walletService, appLogger),
		Ride:    handlers.NewRideHandler(rideService, appLogger),
		Booking: handlers.NewBookingHandler(bookingService, appLogger),
		Rating:  handlers.NewRatingHandler(ratingService, appLogger),
		Admin:   handlers.NewAdminHandler(reconciliationService, walletService, appLogger),
		Health:  handlers.NewHealthHandler(checks, hub.ConnectedClients),
		WebSocket: websocket.NewHandler(hub, websocket.HandlerConfig{
			ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
			WriteBufferSize: cfg.WebSocket.WriteBufferSize,
			AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
		}),
	}, routes.Options{
		JWTSecret:      cfg.Security.JWTSecret,
		AllowedOrigins: cfg.Security.CORSAllowedOrigins,
		Logger:         appLogger,
	})
	if err := router.SetTrustedProxies(cfg.Security.TrustedProxies); err != nil {
		appLogger.WithError(err).Fatal("Invalid trusted proxies")
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.App.Host, cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLogger.WithField("addr", srv.Addr).WithField("store", cfg.App.Store).Info("Starting server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		appLogger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			appLogger.WithError(err).Error("Server shutdown failed")
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Error("Server stopped")
			os.Exit(1)
		}
	}
}

// openStore connects the configured persistence backend and runs pending
// migrations for mongodb.
func openStore(cfg *config.Config, appLogger *logger.Logger) (*interfaces.Repositories, map[string]handlers.Pinger, func(), error) {
	if cfg.App.Store == "memory" {
		appLogger.Warn("Using in-memory store; data is lost on restart")
		store := memory.NewStore()
		return memory.NewRepositories(store), map[string]handlers.Pinger{"store": store}, func() {}, nil
	}

	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:                cfg.Database.URI,
		Database:           cfg.Database.Database,
		MaxPoolSize:        cfg.Database.MaxPoolSize,
		MinPoolSize:        cfg.Database.MinPoolSize,
		ConnectTimeout:     cfg.Database.ConnectTimeout,
		SocketTimeout:      cfg.Database.SocketTimeout,
		TransactionTimeout: cfg.Database.TransactionTimeout,
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	if cfg.Database.RunMigrations {
		if err := database.NewMigrator(db.Database, appLogger).Up(); err != nil {
			db.Close()
			return nil, nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
	}

	closeFn := func() {
		if err := db.Close(); err != nil {
			appLogger.WithError(err).Error("Failed to close mongodb")
		}
	}
	return mongodb.NewRepositories(db), map[string]handlers.Pinger{"store": db}, closeFn, nil
}
