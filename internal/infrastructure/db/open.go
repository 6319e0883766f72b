// Package db selects and opens the persistence backend.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/tokengate/rbac-api/internal/core/ports"
	"github.com/tokengate/rbac-api/internal/infrastructure/db/mongo"
	"github.com/tokengate/rbac-api/internal/infrastructure/db/sqldb"
)

// Backend identifies a store implementation.
type Backend string

const (
	BackendPostgres Backend = "postgres"
	BackendSQLite   Backend = "sqlite"
	BackendMongo    Backend = "mongo"
)

// Config captures the settings for opening a store.
type Config struct {
	URL           string
	MongoDatabase string
	LogSQL        bool
}

// DetectBackend infers the backend from the connection URL. Anything that is
// neither a postgres nor a mongodb URL is treated as a SQLite DSN.
func DetectBackend(url string) Backend {
	switch {
	case strings.HasPrefix(url, "postgres://"), strings.HasPrefix(url, "postgresql://"):
		return BackendPostgres
	case strings.HasPrefix(url, "mongodb://"), strings.HasPrefix(url, "mongodb+srv://"):
		return BackendMongo
	default:
		return BackendSQLite
	}
}

// Open connects to the backend selected by cfg.URL.
func Open(ctx context.Context, cfg Config, log zerolog.Logger) (ports.Store, error) {
	backend := DetectBackend(cfg.URL)
	log.Info().Str("backend", string(backend)).Msg("opening store")

	switch backend {
	case BackendPostgres:
		return sqldb.Open(ctx, sqldb.Config{Dialect: sqldb.Postgres, DSN: cfg.URL, LogSQL: cfg.LogSQL}, log)
	case BackendSQLite:
		return sqldb.Open(ctx, sqldb.Config{Dialect: sqldb.SQLite, DSN: cfg.URL, LogSQL: cfg.LogSQL}, log)
	case BackendMongo:
		client, database, err := mongo.Connect(ctx, mongo.Config{URI: cfg.URL, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, err
		}
		return mongo.NewStore(client, database), nil
	default:
		return nil, fmt.Errorf("unsupported store url %q", cfg.URL)
	}
}
