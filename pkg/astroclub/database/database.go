package database

import (
	"fmt"
	"strings"

	"github.com/mikepea/astroclub/pkg/astroclub/config"
	"github.com/mikepea/astroclub/pkg/astroclub/models"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Connect opens the configured database. Driver errors such as unique and
// foreign key violations are translated to gorm's sentinel errors.
func Connect(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DSN)
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Every connection to ":memory:" is a separate database
	if isMemory(cfg) {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}
	return db, nil
}

// ConnectAndMigrate opens the database and migrates every model
func ConnectAndMigrate(cfg config.DatabaseConfig) (*gorm.DB, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := models.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// OpenMemory returns a migrated in-memory SQLite database. Used by tests.
func OpenMemory() (*gorm.DB, error) {
	return ConnectAndMigrate(config.DatabaseConfig{Driver: "sqlite", DSN: ":memory:"})
}

func isMemory(cfg config.DatabaseConfig) bool {
	if cfg.Driver != "sqlite" && cfg.Driver != "" {
		return false
	}
	return cfg.DSN == ":memory:" || strings.Contains(cfg.DSN, "mode=memory")
}
