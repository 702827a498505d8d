package main

import (
	"fmt"

	"go.uber.org/zap"

	"photobooth-admin/config"
	"photobooth-admin/internal/db"
	"photobooth-admin/internal/store"
)

// openStore builds the configured photo store. The returned func releases
// any database connections.
func openStore(cfg *config.Config, log *zap.Logger) (store.Store, func(), error) {
	switch cfg.Store.Driver {
	case config.DriverREST:
		if cfg.Store.URL == "" || cfg.Store.Key == "" {
			log.Warn("store url or key missing; every store call will fail until configured")
		}
		s := store.NewRESTStore(store.RESTConfig{
			URL:     cfg.Store.URL,
			Key:     cfg.Store.Key,
			Table:   cfg.Store.Table,
			Timeout: cfg.Store.Timeout,
			Logger:  log.Named("store"),
		}, nil)
		return s, func() {}, nil

	case config.DriverPostgres, config.DriverSQLite:
		gormDB, err := db.Init(cfg.Store.Driver, cfg.Store.Table, &cfg.Database, log)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		closeDB := func() {
			if err := db.Close(gormDB); err != nil {
				log.Warn("failed to close database", zap.Error(err))
			}
		}
		return store.NewGormStore(gormDB, cfg.Store.Table), closeDB, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
}
