// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

const (
	testJWTSecret   = "jwt-0123456789abcdef0123456789abcdef"
	testRelaySecret = "relay-0123456789abcdef0123456789abcdef"
)

// setRequiredEnv sets the secrets every load needs and isolates the test
// from any config file in the working directory.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Chdir(t.TempDir())
	t.Setenv(ConfigPathEnvVar, "")
	t.Setenv("JWT_SECRET", testJWTSecret)
	t.Setenv("RELAY_SECRET", testRelaySecret)
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverMongo {
		t.Errorf("Database.Driver = %q, want mongo", cfg.Database.Driver)
	}
	if cfg.Realtime.RelayMode != RelayModeBus {
		t.Errorf("Realtime.RelayMode = %q, want bus", cfg.Realtime.RelayMode)
	}
	if cfg.Realtime.PingPeriod >= cfg.Realtime.PongWait {
		t.Errorf("PingPeriod %v must be below PongWait %v", cfg.Realtime.PingPeriod, cfg.Realtime.PongWait)
	}
	if cfg.Events.Topic != "agora.realtime" {
		t.Errorf("Events.Topic = %q, want agora.realtime", cfg.Events.Topic)
	}
	if cfg.Security.JWTSecret != "" || cfg.Security.RelaySecret != "" {
		t.Error("secrets must not have defaults")
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		env  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"MONGO_URI", "database.uri"},
		{"RELAY_SECRET", "security.relay_secret"},
		{"WS_PONG_WAIT", "realtime.pong_wait"},
		{"NATS_EMBEDDED", "events.embedded_server"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.env); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.env, got, tt.want)
		}
	}
}

func TestFindConfigFile(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	t.Run("no config file exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})

	t.Run("config.yaml exists", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "")
		if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("server: {}"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		defer os.Remove(filepath.Join(dir, "config.yaml"))

		if got := findConfigFile(); got != "config.yaml" {
			t.Errorf("findConfigFile() = %q, want config.yaml", got)
		}
	})

	t.Run("CONFIG_PATH env var takes precedence", func(t *testing.T) {
		custom := filepath.Join(dir, "custom.yaml")
		if err := os.WriteFile(custom, []byte("server: {}"), 0o600); err != nil {
			t.Fatalf("Failed to create config file: %v", err)
		}
		t.Setenv(ConfigPathEnvVar, custom)

		if got := findConfigFile(); got != custom {
			t.Errorf("findConfigFile() = %q, want %q", got, custom)
		}
	})

	t.Run("CONFIG_PATH with non-existent file falls back", func(t *testing.T) {
		t.Setenv(ConfigPathEnvVar, "/non/existent/config.yaml")
		if got := findConfigFile(); got != "" {
			t.Errorf("findConfigFile() = %q, want empty string", got)
		}
	})
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("DB_DRIVER", "memory")
	t.Setenv("RELAY_MODE", "socket")
	t.Setenv("RELAY_HOST", "realtime.internal:9000")
	t.Setenv("WS_PONG_WAIT", "90s")
	t.Setenv("CORS_ORIGINS", "https://a.example.org, https://b.example.org")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Database.Driver != DriverMemory {
		t.Errorf("Database.Driver = %q, want memory", cfg.Database.Driver)
	}
	if cfg.Realtime.RelayMode != RelayModeSocket || cfg.Realtime.RelayHost != "realtime.internal:9000" {
		t.Errorf("relay = %q@%q, want socket@realtime.internal:9000", cfg.Realtime.RelayMode, cfg.Realtime.RelayHost)
	}
	if cfg.Realtime.PongWait != 90*time.Second {
		t.Errorf("Realtime.PongWait = %v, want 90s", cfg.Realtime.PongWait)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example.org" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

func TestLoadWithKoanfConfigFileAndEnvOverride(t *testing.T) {
	setRequiredEnv(t)

	content := `
server:
  port: 7000
  environment: staging
database:
  driver: mongo
  uri: mongodb://db.internal:27017
  name: agora_staging
events:
  backend: nats
  nats_url: nats://bus.internal:4222
  embedded_server: false
`
	path := filepath.Join(t.TempDir(), "agora.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("MONGO_DATABASE", "agora_override")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 7000 {
		t.Errorf("Server.Port = %d, want 7000 (file)", cfg.Server.Port)
	}
	if cfg.Database.URI != "mongodb://db.internal:27017" {
		t.Errorf("Database.URI = %q", cfg.Database.URI)
	}
	if cfg.Database.Name != "agora_override" {
		t.Errorf("Database.Name = %q, want env override", cfg.Database.Name)
	}
	if cfg.Events.Backend != BackendNATS || cfg.Events.EmbeddedServer {
		t.Errorf("Events = %+v, want external nats", cfg.Events)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"missing relay secret", map[string]string{"RELAY_SECRET": ""}},
		{"short jwt secret", map[string]string{"JWT_SECRET": "short"}},
		{"relay secret equals jwt secret", map[string]string{"RELAY_SECRET": testJWTSecret}},
		{"bad relay mode", map[string]string{"RELAY_MODE": "carrier-pigeon"}},
		{"ping not below pong", map[string]string{"WS_PING_PERIOD": "2m"}},
		{"memory store in production", map[string]string{"DB_DRIVER": "memory", "ENVIRONMENT": "production", "CORS_ORIGINS": "https://agora.example.net"}},
		{"bad port", map[string]string{"HTTP_PORT": "70000"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			if _, err := LoadWithKoanf(); err == nil {
				t.Error("LoadWithKoanf() succeeded, want validation error")
			}
		})
	}
}
