package sqlite

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// newMigrator binds the embedded migrations to the open database.
// The migrator must not be closed with m.Close(): that would close the shared *sql.DB.
func (s *SQLiteDB) newMigrator() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return nil, nil, fmt.Errorf("%w: load migrations: %w", ErrMigration, err)
	}

	driver, err := migratesqlite.WithInstance(s.db, &migratesqlite.Config{})
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("%w: %w", ErrMigration, err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		src.Close()
		return nil, nil, fmt.Errorf("%w: %w", ErrMigration, err)
	}

	return m, func() { src.Close() }, nil
}

// migrate brings the schema up to the latest embedded version
func (s *SQLiteDB) migrate() error {
	m, release, err := s.newMigrator()
	if err != nil {
		return err
	}
	defer release()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("%w: %w", ErrMigration, err)
	}

	s.logger.Debug().
		Int("version", int(version)).
		Str("dirty", fmt.Sprintf("%t", dirty)).
		Msg("Database schema migrated")

	return nil
}

// SchemaVersion reports the applied migration version and whether the last migration left the schema dirty
func (s *SQLiteDB) SchemaVersion() (uint, bool, error) {
	m, release, err := s.newMigrator()
	if err != nil {
		return 0, false, err
	}
	defer release()

	return m.Version()
}
