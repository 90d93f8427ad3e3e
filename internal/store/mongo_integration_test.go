// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

//go:build integration

package store

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/agora/internal/testinfra"
)

func TestMongoStoreContract(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx := context.Background()
	container, err := testinfra.NewMongoContainer(ctx)
	if err != nil {
		t.Fatalf("NewMongoContainer() error = %v", err)
	}
	defer testinfra.CleanupContainer(t, ctx, container)

	s, err := NewMongoStore(ctx, MongoConfig{
		URI:            container.URI,
		Database:       "agora_test",
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		t.Fatalf("NewMongoStore() error = %v", err)
	}
	defer s.Close(ctx) //nolint:errcheck

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	runStoreContract(t, s)
}
