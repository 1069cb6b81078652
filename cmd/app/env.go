package main

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
	"linkhub/internal/config"
	"linkhub/internal/infra"
	"linkhub/pkg/logger"
)

// cliEnv is the subset of the server wiring the one-off commands need.
type cliEnv struct {
	cfg *config.Config
	log logger.Interface
	db  *gorm.DB
}

func initEnv() (*cliEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	log := logger.New(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})

	if cfg.PostgresURL == "" {
		return nil, errors.New("POSTGRES_URL is required")
	}
	db, err := infra.InitPostgresql(cfg.PostgresURL, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return &cliEnv{cfg: cfg, log: log, db: db}, nil
}

func (e *cliEnv) close() {
	infra.ClosePostgresql(e.db, e.log)
}
