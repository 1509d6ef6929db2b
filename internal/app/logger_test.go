package app

import (
	"log/slog"
	"testing"
)

func TestLogLevelMapping(t *testing.T) {
	cases := []struct {
		name string
		cfg  *Config
		want slog.Level
	}{
		{"nil config", nil, slog.LevelInfo},
		{"debug", &Config{LogLevel: "debug"}, slog.LevelDebug},
		{"warn", &Config{LogLevel: "warn"}, slog.LevelWarn},
		{"error", &Config{LogLevel: "error"}, slog.LevelError},
		{"unknown falls back to info", &Config{LogLevel: "loud"}, slog.LevelInfo},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := logLevel(tc.cfg); got != tc.want {
				t.Fatalf("logLevel() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestNewLoggerHonorsLevel(t *testing.T) {
	logger := NewLogger(&Config{LogLevel: "warn"})
	if logger.Enabled(t.Context(), slog.LevelInfo) {
		t.Fatal("info enabled at warn level")
	}
	if !logger.Enabled(t.Context(), slog.LevelWarn) {
		t.Fatal("warn disabled at warn level")
	}
}
