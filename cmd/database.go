package cmd

import (
	"fmt"

	"github.com/shahzaib-autos/shahzaib-autos-api/config"
	"github.com/shahzaib-autos/shahzaib-autos-api/models"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// openDatabase connects with the loaded config and optionally migrates the schema
func openDatabase(cfg *config.Config, migrate bool) (*gorm.DB, error) {
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		return nil, err
	}

	if migrate {
		if err := db.AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		zap.L().Info("Database migration completed successfully")
	}
	return db, nil
}

func closeDatabase(db *gorm.DB) {
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
