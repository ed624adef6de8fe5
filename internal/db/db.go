package db

import (
	"errors"
	"fmt"

	"github.com/steelhall/steelhall/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var DB *gorm.DB

// InitDB initializes the database connection
func InitDB(dbType, dbPath string) error {
	database, err := Open(dbType, dbPath)
	if err != nil {
		return err
	}
	DB = database
	return nil
}

// Open connects to the database and migrates all models
func Open(dbType, dbPath string) (*gorm.DB, error) {
	var dialector gorm.Dialector

	switch dbType {
	case "sqlite":
		dialector = sqlite.Open(dbPath)
	case "mysql", "mariadb":
		dialector = mysql.Open(dbPath) // dbPath is DSN for MySQL
	default:
		return nil, fmt.Errorf("unsupported database type: %s", dbType)
	}

	database, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Every connection to ":memory:" is a separate database
	if dbType == "sqlite" && dbPath == ":memory:" {
		sqlDB, err := database.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to get sql.DB: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := database.AutoMigrate(models.All()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return database, nil
}

// GetDB returns the database connection
func GetDB() *gorm.DB {
	return DB
}

// SetDB sets the database connection (used for testing)
func SetDB(database *gorm.DB) {
	DB = database
}

// LoadSettings returns the site settings row, or the defaults when none has
// been saved yet.
func LoadSettings(database *gorm.DB) (models.SiteSettings, error) {
	var settings models.SiteSettings
	err := database.First(&settings).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.DefaultSettings(), nil
	}
	if err != nil {
		return models.SiteSettings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return settings, nil
}

// SaveSettings writes the singleton settings row
func SaveSettings(database *gorm.DB, settings *models.SiteSettings) error {
	var existing models.SiteSettings
	err := database.First(&existing).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		settings.ID = 0
		if err := database.Create(settings).Error; err != nil {
			return fmt.Errorf("failed to create settings: %w", err)
		}
	case err != nil:
		return fmt.Errorf("failed to load settings: %w", err)
	default:
		settings.ID = existing.ID
		if err := database.Save(settings).Error; err != nil {
			return fmt.Errorf("failed to save settings: %w", err)
		}
	}
	return nil
}
