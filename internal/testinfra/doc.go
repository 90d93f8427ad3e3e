// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

// Package testinfra provides container-backed infrastructure for integration tests.
//
// Everything here is behind the integration build tag:
//
//	go test -tags integration ./internal/store/...
//
// # MongoDB Container
//
//	func TestMongoStore(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    mongo, err := testinfra.NewMongoContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, mongo)
//
//	    st, err := store.NewMongoStore(ctx, store.MongoConfig{URI: mongo.URI, Database: "agora_test"})
//	    ...
//	}
package testinfra
