package config

import (
	"log/slog"
	"strings"
)

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug|info|warn|error
	Format string `yaml:"format,omitempty"` // text|json
}

// SlogLevel maps the configured level string onto a slog.Level, defaulting
// to info for unknown values.
func (l LoggingConfig) SlogLevel() slog.Level {
	switch strings.ToLower(strings.TrimSpace(l.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// JSONFormat reports whether JSON log output was requested.
func (l LoggingConfig) JSONFormat() bool {
	return strings.EqualFold(strings.TrimSpace(l.Format), "json")
}
