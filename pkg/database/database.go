package database

import (
	"fmt"

	"snappoint/pkg/config"

	"gorm.io/gorm"
)

// Open picks the driver from cfg.DBDriver.
func Open(cfg *config.Config) (*gorm.DB, error) {
	switch cfg.DBDriver {
	case config.DBDriverPostgres, "":
		return NewPostgresDB(cfg)
	case config.DBDriverSQLite:
		return OpenSQLite(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.DBDriver)
	}
}
