// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// stubRunner counts runs and fails the first failures of them.
type stubRunner struct {
	runs     atomic.Int32
	failures int32
}

func (r *stubRunner) RunWithContext(ctx context.Context) error {
	if n := r.runs.Add(1); n <= r.failures {
		return errors.New("relay subscription closed")
	}
	<-ctx.Done()
	return ctx.Err()
}

type stubDrainer struct {
	waited atomic.Bool
}

func (d *stubDrainer) Wait() { d.waited.Store(true) }

var (
	_ suture.Service = (*RealtimeService)(nil)
	_ suture.Service = (*RelayConsumerService)(nil)
	_ suture.Service = (*RelayDrainService)(nil)
)

func TestServiceNames(t *testing.T) {
	tests := []struct {
		svc  interface{ String() string }
		want string
	}{
		{NewRealtimeService(&stubRunner{}), "realtime-server"},
		{NewRelayConsumerService(&stubRunner{}), "relay-consumer"},
		{NewRelayDrainService(&stubDrainer{}), "relay-drain"},
	}
	for _, tt := range tests {
		if got := tt.svc.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestRealtimeService_DelegatesToServer(t *testing.T) {
	runner := &stubRunner{}
	svc := NewRealtimeService(runner)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := svc.Serve(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected context.DeadlineExceeded, got %v", err)
	}
	if runner.runs.Load() != 1 {
		t.Errorf("expected 1 run, got %d", runner.runs.Load())
	}
}

func TestRelayConsumerService_RestartedAfterFailure(t *testing.T) {
	runner := &stubRunner{failures: 2}

	sup := suture.New("messaging-layer", suture.Spec{
		FailureThreshold: 10,
		FailureBackoff:   10 * time.Millisecond,
		Timeout:          time.Second,
	})
	sup.Add(NewRelayConsumerService(runner))

	ctx, cancel := context.WithCancel(context.Background())
	errCh := sup.ServeBackground(ctx)

	deadline := time.Now().Add(2 * time.Second)
	for runner.runs.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	cancel()
	<-errCh

	if got := runner.runs.Load(); got < 3 {
		t.Errorf("expected at least 3 runs after 2 failures, got %d", got)
	}
}

func TestRelayDrainService_WaitsOnShutdown(t *testing.T) {
	drainer := &stubDrainer{}
	svc := NewRelayDrainService(drainer)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	if drainer.waited.Load() {
		t.Fatal("drained before shutdown")
	}

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return")
	}

	if !drainer.waited.Load() {
		t.Error("relay was not drained")
	}
}
