package config

import (
	"log/slog"

	"go.uber.org/fx"
)

// Module exposes the configuration loader for fx graphs and warns when the
// service runs with the built-in token secret.
var Module = fx.Options(
	fx.Provide(Load),
	fx.Invoke(warnInsecureDefaults),
)

func warnInsecureDefaults(cfg *Config, logger *slog.Logger) {
	if cfg.AuthSecret == defaultAuthSecret {
		logger.Warn("auth secret is the built-in default, set AUTH_SECRET or AUTH_SECRET_FILE")
	}
}
