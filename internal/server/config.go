package server

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config controls the serve daemon. Values come from the environment so the
// daemon runs under a process manager without flags; the serve command may
// still override the address.
type Config struct {
	Addr         string        `env:"W3POOL_SERVE_ADDR" envDefault:":8546"`
	LogLevel     string        `env:"W3POOL_LOG_LEVEL" envDefault:"INFO"`
	PollInterval time.Duration `env:"W3POOL_POLL_INTERVAL" envDefault:"2s"`
}

// ConfigFromEnv reads the daemon configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var c Config
	if err := env.Parse(&c); err != nil {
		return Config{}, fmt.Errorf("parsing serve environment: %w", err)
	}
	return c, nil
}

// Logger builds the daemon logger at the given level ("DEBUG", "INFO", ...).
func Logger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()

	var lvl zapcore.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("bad log level %q: %w", level, err)
	}
	cfg.Level.SetLevel(lvl)

	return cfg.Build()
}
