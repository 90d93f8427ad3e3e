// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package main

import (
	"context"
	"fmt"

	"github.com/tomtom215/agora/internal/config"
	"github.com/tomtom215/agora/internal/logging"
	"github.com/tomtom215/agora/internal/store"
)

// InitStore opens the document store selected by cfg.Driver.
func InitStore(ctx context.Context, cfg *config.DatabaseConfig) (store.Store, error) {
	switch cfg.Driver {
	case config.DriverMemory:
		logging.Warn().Msg("Using in-memory store; data is lost on restart")
		return store.NewMemoryStore(), nil

	case config.DriverMongo:
		st, err := store.NewMongoStore(ctx, store.MongoConfig{
			URI:            cfg.URI,
			Database:       cfg.Name,
			MaxPoolSize:    cfg.MaxPoolSize,
			ConnectTimeout: cfg.ConnectTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("open mongo store: %w", err)
		}
		logging.Info().Str("database", cfg.Name).Msg("MongoDB store connected")
		return st, nil

	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
