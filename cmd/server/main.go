package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carpool/internal/config"
	"carpool/internal/handlers"
	"carpool/internal/matching"
	"carpool/internal/middleware"
	"carpool/internal/repositories/mongodb"
	"carpool/internal/services"
	"carpool/pkg/cache"
	"carpool/pkg/database"
	"carpool/pkg/logger"
	"carpool/pkg/websocket"
	"carpool/routes"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger, err := logger.NewLogger(&logger.Config{
		Level:  cfg.App.LogLevel,
		Format: cfg.App.LogFormat,
		Output: "stdout",
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	// MongoDB
	db, err := database.NewMongoDB(&database.DatabaseConfig{
		URI:            cfg.Database.URI,
		Database:       cfg.Database.Database,
		MaxPoolSize:    cfg.Database.MaxPoolSize,
		MinPoolSize:    cfg.Database.MinPoolSize,
		ConnectTimeout: cfg.Database.ConnectTimeout,
		SocketTimeout:  cfg.Database.SocketTimeout,
	})
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to connect to MongoDB")
	}
	defer db.Close()

	if err := database.NewMigrator(db.Database).Up(); err != nil {
		appLogger.WithError(err).Fatal("Failed to run migrations")
	}

	// Redis is an optimization, not a dependency. The ride repository
	// falls back to MongoDB reads when no cache is configured.
	var cacheService services.CacheService
	redisCache, err := cache.NewRedisCache(&cache.RedisConfig{
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
		appLogger.WithError(err).Warn("Redis unavailable, continuing without ride cache")
	} else {
		cacheService = redisCache
		defer redisCache.Close()
	}

	// Repositories
	userRepo := mongodb.NewUserRepository(db.Database)
	vehicleRepo := mongodb.NewVehicleRepository(db.Database)
	rideRepo := mongodb.NewRideRepository(db.Database, cacheService)

	// Websocket hub and the in-memory active ride index it fans out from
	index := matching.NewActiveRideIndex()
	wsHandler := websocket.NewHandler(index, cfg.Security.JWTSecret, &websocket.Config{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		PingInterval:    cfg.WebSocket.PingInterval,
		PongTimeout:     cfg.WebSocket.PongTimeout,
		WriteTimeout:    cfg.WebSocket.WriteTimeout,
		MaxMessageSize:  cfg.WebSocket.MaxMessageSize,
		SendBufferSize:  cfg.WebSocket.SendBufferSize,
		AllowedOrigins:  cfg.WebSocket.AllowedOrigins,
	}, appLogger)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	activeRides, err := rideRepo.GetActiveRides(seedCtx)
	cancel()
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load active rides")
	}
	wsHandler.GetHub().LoadActiveRides(activeRides)
	appLogger.WithField("count", len(activeRides)).Info("Active rides loaded")

	// Services
	authService := services.NewAuthService(userRepo, cfg.Security.JWTSecret, cfg.Security.JWTAccessTokenTTL, cfg.Security.BcryptCost, appLogger)
	vehicleService := services.NewVehicleService(vehicleRepo, userRepo, db, appLogger)
	rideService := services.NewRideService(rideRepo, userRepo, vehicleRepo, db, wsHandler.GetHub(), appLogger)

	// Handlers
	authHandler := handlers.NewAuthHandler(authService)
	vehicleHandler := handlers.NewVehicleHandler(vehicleService)
	rideHandler := handlers.NewRideHandler(rideService)

	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.RequestIDMiddleware())

	routes.SetupAuthRoutes(router, authHandler, cfg.Security.JWTSecret, userRepo)
	routes.SetupVehicleRoutes(router, vehicleHandler, cfg.Security.JWTSecret, userRepo)
	routes.SetupRideRoutes(router, rideHandler, cfg.Security.JWTSecret, userRepo)

	router.GET(cfg.WebSocket.Path, wsHandler.HandleWebSocket)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/health", func(c *gin.Context) {
		status := "healthy"
		code := http.StatusOK
		if err := db.Ping(); err != nil {
			status = "unhealthy"
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"status":  status,
			"version": cfg.App.Version,
		})
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.App.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.App.Port).Info("Starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}
