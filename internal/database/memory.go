package database

import (
	"github.com/pomegranateis/webfinalserver/internal/config"
	"gorm.io/gorm"
)

// OpenInMemory returns a migrated SQLite database that lives as long as the
// returned handle. A single connection keeps every query on the same memory DB.
func OpenInMemory() (*gorm.DB, error) {
	db, err := Open(config.Database{
		Driver:       config.DriverSQLite,
		URL:          ":memory:",
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, false)
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
