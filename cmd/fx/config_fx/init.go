package config_fx

import (
	"go.uber.org/fx"
	"linkhub/internal/config"
	"linkhub/pkg/logger"
)

var Module = fx.Provide(
	config.Load, provideLogger)

func provideLogger(cfg *config.Config) logger.Interface {
	return logger.New(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
	})
}
