package infra

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"linkhub/pkg/logger"
)

// NewGormConfig is shared by the Postgres pool and the SQLite test databases
// so unique violations translate to gorm.ErrDuplicatedKey on both.
func NewGormConfig() *gorm.Config {
	return &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	}
}

func InitPostgresql(dsn string, log logger.Interface) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("POSTGRES_URL is not set")
	}

	db, err := gorm.Open(postgres.Open(dsn), NewGormConfig())
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("postgres handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	log.Infow("postgres connected")
	return db, nil
}

func ClosePostgresql(db *gorm.DB, log logger.Interface) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Errorw("get database instance", "error", err)
		return
	}

	if err := sqlDB.Close(); err != nil {
		log.Errorw("close database connection", "error", err)
		return
	}
	log.Infow("postgres connection closed")
}
