package state

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

// VersionTable records applied payload cache migrations. It is kept apart
// from goose's default so the cache can share a database file with other tools.
const VersionTable = "figvars_cache_version"

//go:embed migrations/*.sql
var migrations embed.FS

// configureGoose points goose at the embedded payload cache migrations.
func configureGoose() error {
	goose.SetBaseFS(migrations)
	goose.SetLogger(goose.NopLogger())
	goose.SetTableName(VersionTable)
	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set dialect: %w", err)
	}
	return nil
}

// Migrate brings the payload cache schema up to date.
func (s *SQLiteStore) Migrate() error {
	if s.db == nil {
		return fmt.Errorf("database not opened")
	}
	return MigrateWithDB(s.db)
}

// MigrateWithDB applies the payload cache migrations to db.
func MigrateWithDB(db *sql.DB) error {
	if err := configureGoose(); err != nil {
		return err
	}
	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("failed to migrate payload cache: %w", err)
	}
	return nil
}

// GetMigrationVersion returns the applied payload cache schema version.
func (s *SQLiteStore) GetMigrationVersion() (int64, error) {
	if s.db == nil {
		return 0, fmt.Errorf("database not opened")
	}
	if err := configureGoose(); err != nil {
		return 0, err
	}
	return goose.GetDBVersion(s.db)
}
