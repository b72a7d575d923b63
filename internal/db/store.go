// Package db is classbot's relational store: classroom orgs, assignments,
// users, and the alert/submission ledger. Built on gorm with driver error
// translation enabled, so unique-key collisions surface as a distinct,
// recognizable error kind.
package db

import (
	"errors"
	"fmt"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// ErrNotFound is returned by lookups that match no row.
var ErrNotFound = gorm.ErrRecordNotFound

// Open connects to the configured database. Supported drivers: mysql
// (the usual classroom deployment) and postgres.
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = mysql.Open(dsn)
	case "postgres":
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	gdb, err := gorm.Open(dialector, &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("connecting to %s database: %w", driver, err)
	}
	return gdb, nil
}

// Migrate creates or updates the schema.
func Migrate(gdb *gorm.DB) error {
	return gdb.AutoMigrate(
		&User{},
		&ClassroomOrg{},
		&Assignment{},
		&Alert{},
		&Submission{},
		&CodeSubmission{},
	)
}

// IsDuplicateKey reports whether err is a unique-constraint violation,
// as opposed to any other database failure. Callers use this to treat
// "already recorded" as idempotent re-processing.
func IsDuplicateKey(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey)
}
