package database

import (
	"fmt"
	"sync"

	"github.com/Fe2Far/fiap-challenge4/pkg/common/config"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var (
	db     *gorm.DB
	dbErr  error
	dbOnce sync.Once
)

// GetPostgres opens the diagnosis audit database once per process. Only
// called when audit is enabled.
func GetPostgres(cfg *config.Config) (*gorm.DB, error) {
	dbOnce.Do(func() {
		db, dbErr = gorm.Open(postgres.Open(postgresDSN(cfg)), &gorm.Config{})
		log := logger.Component("database").WithFields(map[string]interface{}{
			"host":     cfg.PostgresHost,
			"database": cfg.PostgresDB,
		})
		if dbErr != nil {
			log.WithError(dbErr).Error("Failed to connect to audit database")
			return
		}
		log.Info("Connected to audit database")
	})

	return db, dbErr
}

func postgresDSN(cfg *config.Config) string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		cfg.PostgresHost,
		cfg.PostgresUser,
		cfg.PostgresPassword,
		cfg.PostgresDB,
		cfg.PostgresPort,
		cfg.PostgresSSLMode,
	)
}

// ClosePostgres releases the audit connection pool on shutdown. It is a
// no-op when audit was never enabled.
func ClosePostgres() error {
	if db == nil {
		return nil
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
