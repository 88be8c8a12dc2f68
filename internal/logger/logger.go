package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/polkiloo/storefront/internal/config"
)

const serviceName = "storefront"

// New creates a JSON slog.Logger writing to w at level. Unknown levels fall
// back to info.
func New(w io.Writer, level string) *slog.Logger {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(handler).With(slog.String("service", serviceName))
}

func newFromConfig(cfg *config.Config) *slog.Logger {
	return New(os.Stdout, cfg.LogLevel)
}
