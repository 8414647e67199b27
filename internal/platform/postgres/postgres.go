// Package postgres opens the service database: a pgx pool for the attempt
// store and a database/sql handle for the audit outbox and migrations.
package postgres

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"

	"surebet/internal/platform/config"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

const connectTimeout = 5 * time.Second

// DB bundles both handles onto the same database.
type DB struct {
	Pool *pgxpool.Pool
	SQL  *sql.DB
}

// Open connects to Postgres. It returns nil, nil when no URL is configured.
func Open(ctx context.Context, cfg config.PostgresConfig) (*DB, error) {
	if cfg.URL == "" {
		return nil, nil
	}
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	sqlDB, err := sql.Open("postgres", cfg.URL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("open sql db: %w", err)
	}
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetConnMaxIdleTime(5 * time.Minute)
	if err := sqlDB.PingContext(ctx); err != nil {
		pool.Close()
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sql db: %w", err)
	}

	db := &DB{Pool: pool, SQL: sqlDB}
	if cfg.MigrateOnStart {
		if err := db.Migrate(); err != nil {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}

// Migrate applies all embedded migrations.
func (db *DB) Migrate() error {
	return MigrateUp(db.SQL)
}

// MigrateUp applies the embedded migrations on an open connection.
func MigrateUp(sqlDB *sql.DB) error {
	source, err := iofs.New(migrationFiles, "migrations")
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	driver, err := migratepg.WithInstance(sqlDB, &migratepg.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return fmt.Errorf("init migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Health pings both handles.
func (db *DB) Health(ctx context.Context) error {
	if err := db.Pool.Ping(ctx); err != nil {
		return err
	}
	return db.SQL.PingContext(ctx)
}

func (db *DB) Close() {
	db.Pool.Close()
	_ = db.SQL.Close()
}
