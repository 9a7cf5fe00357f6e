// Package diag builds the runtime's zap logger and defines the narrow
// Sink interface the ecs/system packages use to report lifecycle
// events without depending on any concrete observability backend.
// Grounded on cmd/l1jgo/main.go's newLogger (level/format switch over
// zap.NewProductionConfig/zap.NewDevelopmentConfig).
package diag

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogConfig controls logger construction; decoded from config.Config's
// Logging section.
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // "json" or "console"
}

// NewLogger builds a *zap.Logger from cfg, defaulting to an info-level
// console logger when cfg is the zero value.
func NewLogger(cfg LogConfig) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
			return nil, fmt.Errorf("diag: invalid log level %q: %w", cfg.Level, err)
		}
	}

	var zc zap.Config
	switch cfg.Format {
	case "json":
		zc = zap.NewProductionConfig()
	default:
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}
