package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/taskmaster/planner/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	healthTimeout  = 5 * time.Second
)

// DB is the task store's connection pool. Queries are written with ?
// placeholders and passed through Rebind.
type DB struct {
	DB     *sqlx.DB
	config config.DatabaseConfig
}

// New opens a pool for cfg.Driver (postgres or sqlite3) and pings it.
func New(cfg config.DatabaseConfig) (*DB, error) {
	pool, err := sqlx.Open(cfg.Driver, cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", cfg.Driver, err)
	}
	tunePool(pool, cfg)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	if err := pool.PingContext(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", cfg.Driver, err)
	}

	return &DB{DB: pool, config: cfg}, nil
}

// tunePool applies the configured limits. SQLite gets a single connection
// that never expires: it serializes writers and keeps a :memory: database
// alive for the life of the pool.
func tunePool(pool *sqlx.DB, cfg config.DatabaseConfig) {
	if cfg.Driver == config.DriverSQLite {
		pool.SetMaxOpenConns(1)
		pool.SetMaxIdleConns(1)
		return
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)
}

func (db *DB) Driver() string {
	return db.config.Driver
}

// Rebind converts ? placeholders to the driver's bindvar style.
func (db *DB) Rebind(query string) string {
	return db.DB.Rebind(query)
}

func (db *DB) Close() error {
	if db.DB == nil {
		return nil
	}
	return db.DB.Close()
}

// HealthCheck pings the database with a short deadline
func (db *DB) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	if err := db.DB.PingContext(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// GetConnectionInfo reports pool statistics for the detailed health check
func (db *DB) GetConnectionInfo() map[string]interface{} {
	stats := db.DB.Stats()
	return map[string]interface{}{
		"driver":           db.config.Driver,
		"max_open":         stats.MaxOpenConnections,
		"open":             stats.OpenConnections,
		"in_use":           stats.InUse,
		"idle":             stats.Idle,
		"wait_count":       stats.WaitCount,
		"wait_duration_ms": stats.WaitDuration.Milliseconds(),
	}
}

// WithTransaction runs fn in a transaction, committing when it returns nil.
// A panic in fn rolls back and is re-raised.
func (db *DB) WithTransaction(ctx context.Context, fn func(*sqlx.Tx) error) error {
	tx, err := db.DB.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(err, fmt.Errorf("failed to rollback transaction: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
