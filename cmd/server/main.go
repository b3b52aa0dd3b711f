package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/buytown/admin-console/config"
	"github.com/buytown/admin-console/internal/app"
	"github.com/buytown/admin-console/internal/auth"
	"github.com/buytown/admin-console/internal/console"
	"github.com/buytown/admin-console/internal/health"
	"github.com/buytown/admin-console/internal/logging"
	"github.com/buytown/admin-console/internal/middleware"
)

func main() {
	// 0. Load Config
	env := os.Getenv("APP_ENV")
	cfg, err := config.Load(env)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	// 1. Session manager and backend client
	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to wire console", zap.Error(err))
	}
	defer a.Close()

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	a.Sessions.Subscribe(func(s auth.State) {
		logger.Info("session changed",
			zap.String("status", s.Status.String()),
			zap.Bool("loading", s.Loading))
	})
	// the guard answers 503 until this finishes
	go a.Sessions.RestoreSession(rootCtx)

	// 2. Router
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())

	healthHandler := health.NewHealthHandler(a.HealthDependencies()...)
	consoleHandler := console.NewHandler(a.Sessions, a.Client, a.Catalog, logger)

	r.GET("/health", healthHandler.Check)
	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "BuyTown Admin Console",
			"env":     env,
			"status":  "running",
		})
	})
	// every console route acts as the one administrator session
	consoleRoutes := r.Group("", middleware.RequireConsoleKey(cfg.Server.ConsoleKey))
	consoleHandler.Register(consoleRoutes, middleware.RequireSession(a.Sessions))

	// 3. Run
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		logger.Info("starting admin console", zap.String("addr", srv.Addr), zap.String("env", env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server stopped", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	a.Sessions.Wait()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
