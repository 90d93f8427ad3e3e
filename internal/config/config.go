// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Security SecurityConfig `koanf:"security"`
	Realtime RealtimeConfig `koanf:"realtime"`
	Events   EventsConfig   `koanf:"events"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // "development", "staging", "production"
}

// Addr returns the listen address in host:port form.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Database drivers.
const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

// DatabaseConfig holds document store settings
type DatabaseConfig struct {
	// Driver selects the store: "mongo" or "memory". The memory store keeps
	// nothing across restarts and is meant for local development.
	Driver         string        `koanf:"driver"`
	URI            string        `koanf:"uri"`
	Name           string        `koanf:"name"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
	MaxPoolSize    uint64        `koanf:"max_pool_size"`
}

// SecurityConfig holds authentication and HTTP protection settings
type SecurityConfig struct {
	JWTSecret      string        `koanf:"jwt_secret"`
	SessionTimeout time.Duration `koanf:"session_timeout"`

	// RelaySecret is the shared credential the event relay presents on the
	// socket endpoints in place of a bearer token.
	RelaySecret string `koanf:"relay_secret"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// Relay modes.
const (
	RelayModeSocket   = "socket"
	RelayModeBus      = "bus"
	RelayModeDisabled = "disabled"
)

// RealtimeConfig holds WebSocket and event relay settings
type RealtimeConfig struct {
	// RelayMode selects how REST handlers reach the broadcast layer:
	// "socket" dials the socket endpoints with the relay secret,
	// "bus" publishes to the event bus, "disabled" drops events.
	RelayMode    string        `koanf:"relay_mode"`
	RelayHost    string        `koanf:"relay_host"`
	RelaySecure  bool          `koanf:"relay_secure"`
	RelayTimeout time.Duration `koanf:"relay_timeout"`

	PingPeriod     time.Duration `koanf:"ping_period"`
	PongWait       time.Duration `koanf:"pong_wait"`
	WriteWait      time.Duration `koanf:"write_wait"`
	MaxMessageSize int64         `koanf:"max_message_size"`
	SendBuffer     int           `koanf:"send_buffer"`

	// InboundRate is the sustained number of frames per second a single
	// socket may send; InboundBurst is the bucket size.
	InboundRate  float64 `koanf:"inbound_rate"`
	InboundBurst int     `koanf:"inbound_burst"`

	BreakerMaxFailures uint32        `koanf:"breaker_max_failures"`
	BreakerTimeout     time.Duration `koanf:"breaker_timeout"`
}

// Event bus backends.
const (
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// EventsConfig holds the relay event bus settings
type EventsConfig struct {
	Backend        string `koanf:"backend"`
	NATSURL        string `koanf:"nats_url"`
	EmbeddedServer bool   `koanf:"embedded_server"`
	ServerPort     int    `koanf:"server_port"`
	Topic          string `koanf:"topic"`

	// QueueGroup load-balances relay events across instances subscribed to
	// the same group. Leave it empty when each instance holds its own sockets,
	// so every instance sees every event.
	QueueGroup string `koanf:"queue_group"`
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads configuration from (in order of increasing precedence):
//  1. Built-in defaults
//  2. Config file (config.yaml if exists, or path specified in CONFIG_PATH env var)
//  3. Environment variables
//
// See LoadWithKoanf() for the underlying implementation.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
