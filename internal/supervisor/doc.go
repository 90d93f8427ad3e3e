// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package supervisor runs Agora's long-lived services under a suture v4 tree.

	agora
	├── messaging-layer
	│   ├── realtime-server
	│   ├── relay-consumer   (relay_mode=bus)
	│   └── relay-drain      (relay_mode=socket)
	└── api-layer
	    └── http-server

A crash loop in one layer backs off without stopping the other, so a broken
event bus does not take the REST API down with it.

# Usage

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddMessagingService(services.NewRealtimeService(srv))
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return tree.Run(ctx)

Supervisor events (start, failure, backoff, restart) are logged through
sutureslog, which takes a *slog.Logger; logging.NewSlogLogger bridges it to
zerolog.
*/
package supervisor
