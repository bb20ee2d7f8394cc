package main

import (
	"context"
	"fmt"

	"github.com/mehmetcc/resirent/internal/auth"
	"github.com/mehmetcc/resirent/internal/client"
	"github.com/mehmetcc/resirent/internal/config"
	"github.com/mehmetcc/resirent/internal/database"
	"github.com/mehmetcc/resirent/internal/httpx"
	"github.com/mehmetcc/resirent/internal/rental"
	"github.com/mehmetcc/resirent/internal/session"
	"go.uber.org/zap"
)

// app is the wired client side: session store, API client and services.
type app struct {
	logger   *zap.Logger
	sessions *session.Store
	api      *client.Client
	auth     auth.AuthService
	rental   rental.RentalService
}

func openStorage(ctx context.Context, cfg *config.StorageConfig, logger *zap.Logger) (session.Storage, error) {
	if cfg.Driver == config.DriverMemory {
		return session.NewMemoryStorage(), nil
	}

	// load database
	db, err := database.Init(cfg)
	if err != nil {
		return nil, err
	}

	// run migrations
	if err := database.Migrate(ctx, db, cfg.Driver, logger); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate session database: %w", err)
	}
	return session.NewSQLStorage(db, cfg.Driver, logger), nil
}

func newApp(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*app, error) {
	storage, err := openStorage(ctx, cfg.StorageConfig, logger)
	if err != nil {
		return nil, err
	}

	sessions := session.NewStore(storage, logger, session.WithKey(cfg.StorageConfig.Key))
	if err := sessions.Open(ctx); err != nil {
		_ = sessions.Close()
		return nil, fmt.Errorf("open session: %w", err)
	}

	platform := httpx.Platform(cfg.APIConfig.Platform)
	if platform == "" {
		platform = httpx.PlatformCLI
	}
	api, err := client.New(client.Config{
		BaseURL: cfg.APIConfig.BaseURL,
		Timeout: cfg.APIConfig.Timeout,
		Meta: httpx.ClientMeta{
			DeviceID:   cfg.APIConfig.DeviceID,
			Platform:   platform,
			AppVersion: cfg.APIConfig.AppVersion,
		},
	}, sessions, logger)
	if err != nil {
		_ = sessions.Close()
		return nil, err
	}

	return &app{
		logger:   logger,
		sessions: sessions,
		api:      api,
		auth:     auth.NewAuthenticationService(api, sessions, logger),
		rental:   rental.NewRentalService(api, logger),
	}, nil
}

func (a *app) Close() error {
	a.api.CloseIdleConnections()
	return a.sessions.Close()
}
