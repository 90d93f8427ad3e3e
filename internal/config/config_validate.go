// Agora - Social Networking Realtime Backend
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/agora

package config

import (
	"fmt"
	"strings"
	"time"
)

// minSecretLength applies to both the JWT secret and the relay secret.
const minSecretLength = 32

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate checks that required configuration is present and valid
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	if err := c.validateRealtime(); err != nil {
		return err
	}
	if err := c.validateEvents(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case DriverMemory:
		if c.IsProduction() {
			return fmt.Errorf("DB_DRIVER=memory is not allowed when ENVIRONMENT=production")
		}
		return nil
	case DriverMongo:
		if c.Database.URI == "" {
			return fmt.Errorf("MONGO_URI is required when DB_DRIVER=mongo")
		}
		if c.Database.Name == "" {
			return fmt.Errorf("MONGO_DATABASE is required when DB_DRIVER=mongo")
		}
		if c.Database.ConnectTimeout <= 0 {
			return fmt.Errorf("MONGO_CONNECT_TIMEOUT must be positive")
		}
		return nil
	default:
		return fmt.Errorf("DB_DRIVER must be one of: mongo, memory")
	}
}

// validateSecurity validates secrets, CORS and rate limiting
func (c *Config) validateSecurity() error {
	if err := c.validateJWTSecret(); err != nil {
		return err
	}
	if err := c.validateRelaySecret(); err != nil {
		return err
	}
	if err := c.validateCORS(); err != nil {
		return err
	}
	return c.validateRateLimits()
}

func (c *Config) validateJWTSecret() error {
	if c.Security.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if len(c.Security.JWTSecret) < minSecretLength {
		return fmt.Errorf("JWT_SECRET must be at least %d characters for security", minSecretLength)
	}
	if containsPlaceholder(c.Security.JWTSecret) {
		return fmt.Errorf("JWT_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	if c.Security.SessionTimeout <= 0 {
		return fmt.Errorf("SESSION_TIMEOUT must be positive")
	}
	return nil
}

// validateRelaySecret rejects a relay secret that could be confused with a
// bearer credential or reused from the session secret.
func (c *Config) validateRelaySecret() error {
	secret := c.Security.RelaySecret
	if secret == "" {
		return fmt.Errorf("RELAY_SECRET is required")
	}
	if len(secret) < minSecretLength {
		return fmt.Errorf("RELAY_SECRET must be at least %d characters for security", minSecretLength)
	}
	if strings.HasPrefix(strings.ToLower(secret), "bearer ") {
		return fmt.Errorf("RELAY_SECRET must not start with the Bearer scheme")
	}
	if secret == c.Security.JWTSecret {
		return fmt.Errorf("RELAY_SECRET must differ from JWT_SECRET")
	}
	if containsPlaceholder(secret) {
		return fmt.Errorf("RELAY_SECRET contains a placeholder value - generate a secure secret with: openssl rand -base64 32")
	}
	return nil
}

// validateCORS rejects wildcard origins in production.
func (c *Config) validateCORS() error {
	if c.hasWildcardCORS() && c.IsProduction() {
		return fmt.Errorf("CORS_ORIGINS=* (wildcard) is not allowed in production. " +
			"Set specific origins: CORS_ORIGINS=https://yourdomain.com,https://app.yourdomain.com")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS returns true if CORS configuration should be flagged at startup.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.hasWildcardCORS()
}

func (c *Config) validateRateLimits() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

var validRelayModes = map[string]bool{
	RelayModeSocket:   true,
	RelayModeBus:      true,
	RelayModeDisabled: true,
}

// validateRealtime validates socket timings and the relay transport
func (c *Config) validateRealtime() error {
	rt := c.Realtime
	if !validRelayModes[rt.RelayMode] {
		return fmt.Errorf("RELAY_MODE must be one of: socket, bus, disabled")
	}
	if rt.RelayMode == RelayModeSocket && rt.RelayHost == "" {
		return fmt.Errorf("RELAY_HOST is required when RELAY_MODE=socket")
	}
	if rt.RelayMode != RelayModeDisabled && rt.RelayTimeout <= 0 {
		return fmt.Errorf("RELAY_TIMEOUT must be positive")
	}
	if rt.PongWait <= 0 || rt.WriteWait <= 0 {
		return fmt.Errorf("WS_PONG_WAIT and WS_WRITE_WAIT must be positive")
	}
	if rt.PingPeriod <= 0 || rt.PingPeriod >= rt.PongWait {
		return fmt.Errorf("WS_PING_PERIOD must be positive and shorter than WS_PONG_WAIT")
	}
	if rt.MaxMessageSize < 1024 {
		return fmt.Errorf("WS_MAX_MESSAGE_SIZE must be at least 1024 bytes")
	}
	if rt.SendBuffer < 1 {
		return fmt.Errorf("WS_SEND_BUFFER must be at least 1")
	}
	if rt.InboundRate <= 0 || rt.InboundBurst < 1 {
		return fmt.Errorf("WS_INBOUND_RATE must be positive and WS_INBOUND_BURST at least 1")
	}
	if rt.BreakerMaxFailures < 1 {
		return fmt.Errorf("RELAY_BREAKER_MAX_FAILURES must be at least 1")
	}
	return nil
}

func (c *Config) validateEvents() error {
	if c.Realtime.RelayMode != RelayModeBus {
		return nil
	}
	switch c.Events.Backend {
	case BackendGoChannel:
	case BackendNATS:
		if c.Events.NATSURL == "" {
			return fmt.Errorf("NATS_URL is required when EVENTS_BACKEND=nats")
		}
		if c.Events.EmbeddedServer && (c.Events.ServerPort < 1 || c.Events.ServerPort > 65535) {
			return fmt.Errorf("NATS_PORT must be between 1 and 65535")
		}
	default:
		return fmt.Errorf("EVENTS_BACKEND must be one of: gochannel, nats")
	}
	if c.Events.Topic == "" {
		return fmt.Errorf("EVENTS_TOPIC is required when RELAY_MODE=bus")
	}
	return nil
}

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true, "disabled": true,
}

func (c *Config) validateLogging() error {
	if !validLogLevels[strings.ToLower(c.Logging.Level)] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error, fatal, panic, disabled")
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

// IsProduction returns true if the application is running in production mode.
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// placeholderMarkers are fragments found in sample configs that must never reach a deployment.
var placeholderMarkers = []string{"changeme", "change_me", "replace_with", "your_secret", "example"}

func containsPlaceholder(value string) bool {
	lower := strings.ToLower(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
