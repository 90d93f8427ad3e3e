// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/agora/config.yaml",
	"/etc/agora/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all default values.
// Secrets have no default and must be supplied.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Driver:         DriverMongo,
			URI:            "mongodb://127.0.0.1:27017",
			Name:           "agora",
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
		},
		Security: SecurityConfig{
			SessionTimeout:  24 * time.Hour,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Realtime: RealtimeConfig{
			RelayMode:          RelayModeBus,
			RelayHost:          "127.0.0.1:8080",
			RelaySecure:        false,
			RelayTimeout:       5 * time.Second,
			PingPeriod:         54 * time.Second,
			PongWait:           60 * time.Second,
			WriteWait:          10 * time.Second,
			MaxMessageSize:     64 * 1024,
			SendBuffer:         256,
			InboundRate:        20,
			InboundBurst:       40,
			BreakerMaxFailures: 5,
			BreakerTimeout:     30 * time.Second,
		},
		Events: EventsConfig{
			Backend:        BackendGoChannel,
			NATSURL:        "nats://127.0.0.1:4222",
			EmbeddedServer: true,
			ServerPort:     4222,
			Topic:          "agora.realtime",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// MONGO_URI -> database.uri, WS_PONG_WAIT -> realtime.pong_wait
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile returns the first existing config file, preferring CONFIG_PATH.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left alone.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		strVal, ok := k.Get(path).(string)
		if !ok || strVal == "" {
			continue
		}

		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps upper-case-insensitive environment variable names to
// koanf paths. Variables not listed here are ignored.
var envMappings = map[string]string{
	"http_host":    "server.host",
	"http_port":    "server.port",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"db_driver":             "database.driver",
	"mongo_uri":             "database.uri",
	"mongo_database":        "database.name",
	"mongo_connect_timeout": "database.connect_timeout",
	"mongo_max_pool_size":   "database.max_pool_size",

	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"relay_secret":        "security.relay_secret",
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"relay_mode":                 "realtime.relay_mode",
	"relay_host":                 "realtime.relay_host",
	"relay_secure":               "realtime.relay_secure",
	"relay_timeout":              "realtime.relay_timeout",
	"ws_ping_period":             "realtime.ping_period",
	"ws_pong_wait":               "realtime.pong_wait",
	"ws_write_wait":              "realtime.write_wait",
	"ws_max_message_size":        "realtime.max_message_size",
	"ws_send_buffer":             "realtime.send_buffer",
	"ws_inbound_rate":            "realtime.inbound_rate",
	"ws_inbound_burst":           "realtime.inbound_burst",
	"relay_breaker_max_failures": "realtime.breaker_max_failures",
	"relay_breaker_timeout":      "realtime.breaker_timeout",

	"events_backend":   "events.backend",
	"nats_url":         "events.nats_url",
	"nats_embedded":    "events.embedded_server",
	"nats_port":        "events.server_port",
	"events_topic":     "events.topic",
	"nats_queue_group": "events.queue_group",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
// Unmapped names return "" so koanf skips them.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
