// Package logger builds the slog loggers used across the memorybank
// service from configuration values.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config holds the options for constructing a logger.
type Config struct {
	// Level is the minimum level to emit ("debug", "info", "warn", "error").
	Level string

	// Format selects the handler ("text" or "json").
	Format string

	// Output is the destination writer. Defaults to os.Stderr, which keeps
	// log lines off stdout where the MCP stdio transport lives.
	Output io.Writer

	// Service is attached to every record as a "service" attribute.
	Service string
}

// DefaultConfig returns the configuration used when nothing is specified.
func DefaultConfig() *Config {
	return &Config{
		Level:   "info",
		Format:  FormatText,
		Output:  os.Stderr,
		Service: "memorybank",
	}
}

// New constructs a *slog.Logger from the given configuration.
func New(cfg *Config) *slog.Logger {
	if cfg == nil {
		cfg = DefaultConfig()
	}

	out := cfg.Output
	if out == nil {
		out = os.Stderr
	}

	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, FormatJSON) {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	log := slog.New(handler)
	if cfg.Service != "" {
		log = log.With("service", cfg.Service)
	}
	return log
}

// Setup constructs a logger from cfg and installs it as the process-wide
// slog default. It returns the constructed logger.
func Setup(cfg *Config) *slog.Logger {
	log := New(cfg)
	slog.SetDefault(log)
	return log
}

// ParseLevel converts a level name to a slog.Level, defaulting to Info
// for unrecognized names.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
