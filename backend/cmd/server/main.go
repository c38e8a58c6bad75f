package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/config"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/api/handler"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/api/router"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/repository"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/database"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/jwt"
	applogger "github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/logger"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/redis"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/skylink"
)

func main() {
	configPath := flag.String("config", "", "path to the config file")
	flag.Parse()

	// 1. config
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	// 2. logger
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
		zap.String("skylink", cfg.Skylink.BaseURL),
	)

	// 3. database
	if err := database.EnsureDatabase(&cfg.Database); err != nil {
		logger.Fatal("ensure database failed", zap.Error(err))
	}
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("database connection failed", zap.Error(err))
	}
	logger.Info("database connected")

	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("get sql.DB failed", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	// 4. redis, optional
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("redis unavailable, token revocation, rate limiting and cluster cache disabled", zap.Error(err))
		rdb = nil
	}

	// 5. session tokens and upstream client
	jwtMgr := jwt.NewManager(&cfg.Auth)
	upstream := skylink.NewClient(&cfg.Skylink, nil)

	// 6. Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, upstream, rdb, jwtMgr, logger)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if _, err := svc.User.SeedLocalUsers(seedCtx, &cfg.Auth); err != nil {
		logger.Error("seed local users failed", zap.Error(err))
	}
	cancelSeed()

	h := handler.NewHandler(cfg, svc)

	// 7. router
	engine := router.Setup(cfg, h, jwtMgr, rdb, db, logger)

	// 8. HTTP server with graceful shutdown
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// distribution runs wait on Skylink for up to skylink.timeout
		WriteTimeout: cfg.Skylink.Timeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown failed", zap.Error(err))
	}

	if err := sqlDB.Close(); err != nil {
		logger.Warn("close database failed", zap.Error(err))
	}
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("server stopped")
}
