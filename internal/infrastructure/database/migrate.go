package database

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/migrations"
)

// MigrationStatus is the schema version recorded by the migrator.
type MigrationStatus struct {
	Version uint
	Dirty   bool
}

// MigrateUp applies every pending migration. It reports false when the
// schema was already current.
func (db *DB) MigrateUp() (bool, error) {
	return db.runMigration(func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateDown rolls back every migration.
func (db *DB) MigrateDown() (bool, error) {
	return db.runMigration(func(m *migrate.Migrate) error { return m.Down() })
}

// MigrationVersion reads the current schema version.
func (db *DB) MigrationVersion() (MigrationStatus, error) {
	m, closeFn, err := db.migrator()
	if err != nil {
		return MigrationStatus{}, err
	}
	defer closeFn()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return MigrationStatus{}, nil
	}
	if err != nil {
		return MigrationStatus{}, fmt.Errorf("failed to get migration version: %w", err)
	}
	return MigrationStatus{Version: version, Dirty: dirty}, nil
}

func (db *DB) runMigration(step func(*migrate.Migrate) error) (bool, error) {
	m, closeFn, err := db.migrator()
	if err != nil {
		return false, err
	}
	defer closeFn()

	err = step(m)
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migration failed: %w", err)
	}
	return true, nil
}

// migrator builds a migrate instance over the embedded files. Postgres gets
// its own connection so closing the migrator leaves the pool alone; sqlite
// must share the pool (an in-memory database exists only there), and the
// sqlite driver closes its handle on Close, so that path never closes.
func (db *DB) migrator() (*migrate.Migrate, func(), error) {
	src, err := iofs.New(migrations.FS, migrations.Dir(db.config.Driver))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open migration source: %w", err)
	}

	switch db.config.Driver {
	case config.DriverPostgres:
		m, err := migrate.NewWithSourceInstance("iofs", src, postgresURL(db.config))
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
		}
		return m, func() { _, _ = m.Close() }, nil

	case config.DriverSQLite:
		driver, err := sqlite3.WithInstance(db.DB.DB, &sqlite3.Config{})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migration driver: %w", err)
		}
		m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create migration instance: %w", err)
		}
		return m, func() {}, nil

	default:
		return nil, nil, fmt.Errorf("unsupported database driver %q", db.config.Driver)
	}
}

func postgresURL(cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": []string{cfg.SSLMode}}.Encode(),
	}
	return u.String()
}
