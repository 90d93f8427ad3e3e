// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

/*
Package services provides suture.Service wrappers for Agora components.

Each wrapper implements suture v4's Service interface and names itself via
fmt.Stringer so supervisor events identify it:

	type Service interface {
	    Serve(ctx context.Context) error
	}

# Available Services

  - HTTPServerService ("http-server"): ListenAndServe with a bounded
    graceful Shutdown. Lives in the api layer.
  - RealtimeService ("realtime-server"): the socket server's run loop.
    On shutdown every registered client is closed with 1001.
  - RelayConsumerService ("relay-consumer"): consumes relay envelopes from
    the event bus when the relay runs in bus mode. A closed subscription is
    an error, so the supervisor restarts it.
  - RelayDrainService ("relay-drain"): waits for in-flight socket relay
    deliveries during shutdown.

# Error Handling

Returning ctx.Err() after cancellation is a normal stop. Any other error is
a failure that counts toward the supervisor's failure threshold.
*/
package services
