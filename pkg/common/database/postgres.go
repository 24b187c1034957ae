package database

import (
	"errors"
	"fmt"
	"sync"

	"github.com/journeyboard/platform/pkg/common/config"
	"github.com/journeyboard/platform/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrPostgresNotConfigured is returned when no POSTGRES_HOST was set; the
// tracker then runs against the local store only.
var ErrPostgresNotConfigured = errors.New("postgres not configured")

var (
	db     *gorm.DB
	dbErr  error
	dbOnce sync.Once
)

func GetPostgres() (*gorm.DB, error) {
	dbOnce.Do(func() {
		cfg := config.Load()
		if !cfg.PostgresConfigured() {
			dbErr = ErrPostgresNotConfigured
			return
		}

		dsn := fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.PostgresHost,
			cfg.PostgresUser,
			cfg.PostgresPassword,
			cfg.PostgresDB,
			cfg.PostgresPort,
			cfg.PostgresSSLMode,
		)

		db, dbErr = gorm.Open(postgres.Open(dsn), &gorm.Config{})
		if dbErr != nil {
			logger.Log.WithError(dbErr).Error("Failed to connect to PostgreSQL")
			return
		}

		logger.Log.Info("Connected to PostgreSQL")
	})

	return db, dbErr
}

func ClosePostgres() error {
	if db != nil {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}
