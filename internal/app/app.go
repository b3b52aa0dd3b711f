// Package app wires configuration into the session manager and its
// collaborators. Both binaries build on it.
package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/buytown/admin-console/config"
	"github.com/buytown/admin-console/internal/auth"
	"github.com/buytown/admin-console/internal/backend"
	"github.com/buytown/admin-console/internal/catalog"
	"github.com/buytown/admin-console/internal/health"
	"github.com/buytown/admin-console/internal/storage"
)

type App struct {
	Config   *config.Config
	Logger   *zap.Logger
	Store    storage.Store
	Client   *backend.Client
	Sessions *auth.Manager
	Catalog  *catalog.Service
}

func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := storage.Open(storageOptions(cfg))
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}

	creds := backend.NewCredentials()
	client := backend.NewClient(cfg.API.BaseURL, creds,
		backend.WithTimeout(cfg.RequestTimeout()),
		backend.WithLogger(logger),
	)

	sessions, err := auth.NewManager(client, store, creds, auth.Config{
		ClientID:     cfg.API.ClientID,
		ClientSecret: cfg.API.ClientSecret,
	}, logger)
	if err != nil {
		return nil, err
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		Store:    store,
		Client:   client,
		Sessions: sessions,
		Catalog:  catalog.NewService(client),
	}, nil
}

func storageOptions(cfg *config.Config) storage.Options {
	opts := storage.Options{
		Driver:    cfg.Storage.Driver,
		StateFile: cfg.Storage.StateFile,
		KeyPrefix: cfg.Redis.KeyPrefix,
	}
	if cfg.Storage.Driver == "redis" {
		opts.Redis = &redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		}
	}
	return opts
}

// Restore resolves the stored session and waits for the background service
// token fetch, bounded by timeout.
func (a *App) Restore(ctx context.Context, timeout time.Duration) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	a.Sessions.RestoreSession(ctx)
	a.Sessions.Wait()
}

// HealthDependencies lists what /health should probe.
func (a *App) HealthDependencies() []health.Dependency {
	type pinger interface {
		Ping(ctx context.Context) error
	}
	if p, ok := a.Store.(pinger); ok {
		return []health.Dependency{{Name: "redis", Ping: p.Ping}}
	}
	return nil
}

func (a *App) Close() error {
	_ = a.Logger.Sync()
	if c, ok := a.Store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
