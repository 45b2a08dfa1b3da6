package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"calc_service/internal/api"
	"calc_service/internal/app/service"
	"calc_service/internal/common/security"
	"calc_service/internal/domain/repository"
	"calc_service/internal/platform/config"
	"calc_service/internal/platform/database"
	"calc_service/internal/platform/redisdb"

	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	// 1. Load Configuration
	cfg := config.Load()
	logger.Info("Configuration loaded")

	// 2. Initialize Database
	db, err := database.Connect(cfg.DBConnStr, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db, cfg.MigrationsPath, logger); err != nil {
		logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// 3. Initialize Redis (login throttle). The service degrades
	// gracefully without it.
	var throttle service.LoginThrottle
	rdb, err := redisdb.Connect(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
	if err != nil {
		logger.Warn("Redis unavailable, login throttling disabled", zap.Error(err))
	} else {
		defer rdb.Close()
		throttle = redisdb.NewLoginThrottle(rdb, cfg.LoginMaxAttempts, cfg.LoginAttemptWindow)
	}

	// 4. Initialize Repositories
	userRepo := repository.NewPgUserRepository(db)
	calcRepo := repository.NewPgCalculationRepository(db)

	// 5. Initialize Services
	hasher := security.NewHasher(cfg.BcryptCost)
	tokens := security.NewTokenManager(cfg.JWTKey, cfg.JWTExp)
	policy := service.PasswordPolicy{MinLength: cfg.PasswordMinLength}
	authService := service.NewAuthService(userRepo, hasher, tokens, policy, throttle, logger)
	calcService := service.NewCalculationService(calcRepo)

	// 6. Initialize Router & HTTP Server
	router := api.NewRouter(authService, calcService)

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 7. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Server starting", zap.String("port", cfg.APIPort))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Could not listen", zap.String("port", cfg.APIPort), zap.Error(err))
		}
	}()

	<-stop // Wait for interrupt signal

	logger.Info("Shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Fatal("Server shutdown failed", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
