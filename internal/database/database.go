package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
	"github.com/onegreenvn/ads-proposal-backend/internal/models"
)

// InitDB initializes the database connection and performs migrations
func InitDB(cfg config.DatabaseConfig) (*gorm.DB, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Open database connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:                                   NewLogger(),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set connection pool settings
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database connection: %w", err)
	}
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Set search_path to public
	if err := db.Exec("SET search_path TO public").Error; err != nil {
		return nil, fmt.Errorf("failed to set search_path: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	logrus.Info("Database connection established and migrations completed")
	return db, nil
}

// NewLogger bridges GORM logging to logrus
func NewLogger() logger.Interface {
	return logger.New(
		logrus.StandardLogger(),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Error,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Migrate creates or updates every table the engine owns
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Proposal{},
		&models.Execution{},
		&models.Snapshot{},
		&models.Result{},
		&models.WeeklyReport{},
		&models.Campaign{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}
