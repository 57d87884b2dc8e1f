// Package app wires the cache, the gateway, the sync engine and the
// services into one unit the CLI layer can own.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/cache"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/config"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/gateway"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/logging"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/services"
	"github.com/DiomarGoncalves/pos-venda-cimasp-sub000/internal/syncer"
)

// App holds every long-lived component of the client.
type App struct {
	Config      *config.Config
	Cache       *cache.Cache
	Gateway     gateway.Gateway
	Engine      *syncer.Engine
	Records     services.RecordService
	Attachments services.AttachmentService
	Auth        services.AuthService
	Logger      logging.Logger
}

// New opens the local cache, connects the gateway and builds the
// services. The gateway connection may be offline; the app still comes
// up and serves from the cache.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	c, err := cache.Open(ctx, cfg.CacheDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	gw, err := gateway.NewPostgresGateway(ctx, cfg.RemoteDatabaseURL)
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("failed to init gateway: %w", err)
	}

	engine := syncer.New(c, gw, logger, syncer.WithStaleAfter(cfg.StaleAfter))

	return &App{
		Config:      cfg,
		Cache:       c,
		Gateway:     gw,
		Engine:      engine,
		Records:     services.NewRecordService(c, engine, logger),
		Attachments: services.NewAttachmentService(c, gw, engine, logger),
		Auth:        services.NewAuthService(c, engine, logger),
		Logger:      logger,
	}, nil
}

// StartAutoSync runs the periodic sync loop until ctx is cancelled.
func (a *App) StartAutoSync(ctx context.Context) {
	go a.Engine.RunAutoSync(ctx, a.Config.SyncInterval)
}

// Close releases the gateway connection and the cache.
func (a *App) Close() error {
	return errors.Join(a.Gateway.Close(), a.Cache.Close())
}
