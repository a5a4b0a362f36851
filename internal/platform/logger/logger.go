package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/phrazzld/studyrooms-api/internal/config"
)

// ServiceName is attached to every record.
const ServiceName = "studyrooms-api"

// Setup builds the JSON logger writing to stdout and installs it as the
// slog default.
func Setup(cfg config.ServerConfig) (*slog.Logger, error) {
	return SetupWithWriter(cfg, os.Stdout)
}

// SetupWithWriter is Setup writing to out.
func SetupWithWriter(cfg config.ServerConfig, out io.Writer) (*slog.Logger, error) {
	level, ok := ParseLevel(cfg.LogLevel)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", cfg.LogLevel)
	}

	l := slog.New(newTraceHandler(slog.NewJSONHandler(out, &slog.HandlerOptions{Level: level}))).
		With(slog.String("service", ServiceName))
	slog.SetDefault(l)
	return l, nil
}

// ParseLevel maps a level name to a slog.Level. Unknown names return info
// and false.
func ParseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}
