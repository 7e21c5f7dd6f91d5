// Package config loads server settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
)

// Config holds the runtime settings for the server binary.
type Config struct {
	// Host and Port locate the HTTP listener. Ignored for stdio.
	Host string
	Port int

	// Transport selects how the server is exposed: "stdio", "sse", or
	// "websocket".
	Transport string

	// APIKey, when set, requires clients to present it in the
	// X-API-Key header. HTTP transports only.
	APIKey string

	// LogLevel is one of debug, info, warn, error.
	LogLevel slog.Level
}

// Addr returns the listen address for HTTP transports.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() (Config, error) {
	cfg := Config{
		Host:      getenv("HOST", "0.0.0.0"),
		Transport: getenv("TRANSPORT", "stdio"),
		APIKey:    os.Getenv("API_KEY"),
	}

	port, err := strconv.Atoi(getenv("PORT", "7500"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid PORT: %w", err)
	}
	if port < 0 || port > 65535 {
		return Config{}, fmt.Errorf("PORT out of range: %d", port)
	}
	cfg.Port = port

	switch cfg.Transport {
	case "stdio", "sse", "websocket":
	default:
		return Config{}, fmt.Errorf("unknown TRANSPORT: %q", cfg.Transport)
	}

	level, err := parseLevel(getenv("LOG_LEVEL", "info"))
	if err != nil {
		return Config{}, err
	}
	cfg.LogLevel = level

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("unknown LOG_LEVEL: %q", s)
}
