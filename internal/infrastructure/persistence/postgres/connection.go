// Package postgres implements the PostgreSQL persistence layer for relations
// and content.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/streamhub/engagement-hub/config"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrConnectionClosed indicates the connection pool is closed.
	ErrConnectionClosed = errors.New("postgres: connection pool is closed")

	// ErrMigrationFailed indicates a migration failure.
	ErrMigrationFailed = errors.New("postgres: migration failed")
)

// ══════════════════════════════════════════════════════════════════════════════
// CONNECTION POOL
// ══════════════════════════════════════════════════════════════════════════════

// Config holds PostgreSQL connection configuration.
type Config struct {
	// URL is a postgres:// connection string.
	URL string

	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration

	// QueryTimeout bounds every statement issued by the repositories.
	// Zero means the caller's context alone decides.
	QueryTimeout time.Duration
}

// DefaultConfig returns pool defaults for the given URL.
func DefaultConfig(url string) Config {
	return Config{
		URL:               url,
		MaxConns:          10,
		MinConns:          2,
		MaxConnLifetime:   time.Hour,
		MaxConnIdleTime:   30 * time.Minute,
		HealthCheckPeriod: time.Minute,
		QueryTimeout:      10 * time.Second,
	}
}

// ConfigFrom builds a Config from the application database section.
func ConfigFrom(c config.DatabaseConfig) Config {
	cfg := DefaultConfig(c.URL)
	if c.MaxConns > 0 {
		cfg.MaxConns = c.MaxConns
	}
	if c.MinConns > 0 {
		cfg.MinConns = c.MinConns
	}
	if c.ConnMaxLifetime > 0 {
		cfg.MaxConnLifetime = c.ConnMaxLifetime
	}
	if c.ConnMaxIdleTime > 0 {
		cfg.MaxConnIdleTime = c.ConnMaxIdleTime
	}
	cfg.QueryTimeout = c.QueryTimeout
	return cfg
}

func (c Config) poolConfig() (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(c.URL)
	if err != nil {
		return nil, fmt.Errorf("postgres: parse database url: %w", err)
	}
	pc.MaxConns = c.MaxConns
	pc.MinConns = c.MinConns
	pc.MaxConnLifetime = c.MaxConnLifetime
	pc.MaxConnIdleTime = c.MaxConnIdleTime
	pc.HealthCheckPeriod = c.HealthCheckPeriod
	return pc, nil
}

// Connection is a pgx pool shared by the relation and content repositories.
type Connection struct {
	pool         *pgxpool.Pool
	queryTimeout time.Duration
	closed       atomic.Bool
}

// NewConnection creates the pool and pings it once.
// Callers retry this on startup; a failed ping leaves nothing open.
func NewConnection(ctx context.Context, cfg Config) (*Connection, error) {
	pc, err := cfg.poolConfig()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, fmt.Errorf("postgres: create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: ping: %w", err)
	}

	return &Connection{pool: pool, queryTimeout: cfg.QueryTimeout}, nil
}

// Close closes the pool. Safe to call more than once.
func (c *Connection) Close() {
	if c.closed.CompareAndSwap(false, true) {
		c.pool.Close()
	}
}

// Ping reports whether the database answers. Used by the readiness check.
func (c *Connection) Ping(ctx context.Context) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	return c.pool.Ping(ctx)
}

func (c *Connection) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, c.queryTimeout)
}

// Exec executes a statement that doesn't return rows.
func (c *Connection) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if c.closed.Load() {
		return pgconn.CommandTag{}, ErrConnectionClosed
	}
	return c.pool.Exec(ctx, sql, args...)
}

// Query executes a query that returns rows.
func (c *Connection) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if c.closed.Load() {
		return nil, ErrConnectionClosed
	}
	return c.pool.Query(ctx, sql, args...)
}

// QueryRow executes a query that returns a single row.
func (c *Connection) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return c.pool.QueryRow(ctx, sql, args...)
}

// inTx runs fn in a read-committed transaction, committing when fn returns nil.
func (c *Connection) inTx(ctx context.Context, fn func(pgx.Tx) error) error {
	if c.closed.Load() {
		return ErrConnectionClosed
	}
	return pgx.BeginTxFunc(ctx, c.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// ══════════════════════════════════════════════════════════════════════════════
// MIGRATIONS
// ══════════════════════════════════════════════════════════════════════════════

// Migration is one versioned schema step.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Migrator applies the embedded migrations and records them in schema_migrations.
type Migrator struct {
	conn       *Connection
	migrations []Migration
}

// NewMigrator creates a migrator over the embedded migrations.
func NewMigrator(conn *Connection) *Migrator {
	migs := GetMigrations()
	sort.Slice(migs, func(i, j int) bool { return migs[i].Version < migs[j].Version })
	return &Migrator{conn: conn, migrations: migs}
}

const createMigrationTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INTEGER PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
)`

func (m *Migrator) applied(ctx context.Context) (map[int]bool, error) {
	if _, err := m.conn.Exec(ctx, createMigrationTable); err != nil {
		return nil, fmt.Errorf("%w: create schema_migrations: %v", ErrMigrationFailed, err)
	}

	rows, err := m.conn.Query(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, fmt.Errorf("%w: list applied: %v", ErrMigrationFailed, err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		done[v] = true
	}
	return done, rows.Err()
}

// Migrate applies every pending migration, each in its own transaction.
// Running it again is a no-op.
func (m *Migrator) Migrate(ctx context.Context) error {
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for _, mig := range m.migrations {
		if done[mig.Version] {
			continue
		}
		err := m.conn.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.UpSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, mig.Version, mig.Name)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: %03d_%s: %v", ErrMigrationFailed, mig.Version, mig.Name, err)
		}
	}
	return nil
}

// Rollback reverts the newest applied migration. It does nothing on an empty schema.
func (m *Migrator) Rollback(ctx context.Context) error {
	done, err := m.applied(ctx)
	if err != nil {
		return err
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if !done[mig.Version] {
			continue
		}
		err := m.conn.inTx(ctx, func(tx pgx.Tx) error {
			if _, err := tx.Exec(ctx, mig.DownSQL); err != nil {
				return err
			}
			_, err := tx.Exec(ctx, `DELETE FROM schema_migrations WHERE version = $1`, mig.Version)
			return err
		})
		if err != nil {
			return fmt.Errorf("%w: rollback %03d_%s: %v", ErrMigrationFailed, mig.Version, mig.Name, err)
		}
		return nil
	}
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ERROR HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// IsUniqueViolation reports a unique constraint violation (23505).
func IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// IsCheckViolation reports a check constraint violation (23514).
func IsCheckViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23514"
}

// IsNoRows reports an empty single-row result.
func IsNoRows(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}
