// Package sqldb implements ports.Store on top of gorm, for PostgreSQL and
// SQLite.
package sqldb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tokengate/rbac-api/internal/core/ports"
)

// Dialect names a supported SQL engine.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Config captures the settings for opening a SQL store.
type Config struct {
	Dialect Dialect
	DSN     string
	// LogSQL logs every statement at debug level. Slow queries and errors are
	// logged regardless.
	LogSQL bool
}

// Store is a gorm-backed ports.Store.
type Store struct {
	db *gorm.DB
}

// Open connects to the database and tunes the connection pool for the dialect.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.Dialect {
	case Postgres:
		dialector = postgres.Open(cfg.DSN)
	case SQLite:
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, fmt.Errorf("sqldb: unsupported dialect %q", cfg.Dialect)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         NewGormLogger(log, cfg.LogSQL),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	switch cfg.Dialect {
	case SQLite:
		// A single connection keeps ":memory:" databases alive and serializes
		// writers, which SQLite requires anyway.
		sqlDB.SetMaxOpenConns(1)
		if _, err := sqlDB.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("enable foreign keys: %w", err)
		}
		if !isMemoryDSN(cfg.DSN) {
			_, _ = sqlDB.ExecContext(ctx, "PRAGMA journal_mode = WAL;")
		}
	case Postgres:
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(20)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	return &Store{db: db}, nil
}

func isMemoryDSN(dsn string) bool {
	return dsn == ":memory:" || strings.Contains(dsn, "mode=memory")
}

// Tx runs fn inside a database transaction. gorm commits when fn returns nil
// and rolls back on error or panic.
func (s *Store) Tx(ctx context.Context, fn func(ctx context.Context, r ports.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, repositories{tx: tx})
	})
}

// Migrate creates or updates the schema.
func (s *Store) Migrate(ctx context.Context) error {
	err := s.db.WithContext(ctx).AutoMigrate(
		&roleModel{},
		&userModel{},
		&sessionModel{},
		&permissionModel{},
	)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (s *Store) Close(context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

type repositories struct {
	tx *gorm.DB
}

func (r repositories) Users() ports.UserRepository             { return userRepository{tx: r.tx} }
func (r repositories) Sessions() ports.SessionRepository       { return sessionRepository{tx: r.tx} }
func (r repositories) Roles() ports.RoleRepository             { return roleRepository{tx: r.tx} }
func (r repositories) Permissions() ports.PermissionRepository { return permissionRepository{tx: r.tx} }
