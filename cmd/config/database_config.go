package config

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"glucolog/internal/utils"
)

// ConnectDB returns (nil, nil) when no database is configured; the stores
// then run in memory.
func ConnectDB(cfg *utils.Config) (*gorm.DB, error) {
	if !cfg.DatabaseConfigured() {
		return nil, nil
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		SkipDefaultTransaction: true,
		TranslateError:         true,
		Logger:                 logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}
