package db

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
)

func TestDetectBackend(t *testing.T) {
	cases := map[string]Backend{
		"postgres://u:p@localhost/rbac": BackendPostgres,
		"postgresql://localhost/rbac":   BackendPostgres,
		"mongodb://localhost:27017":     BackendMongo,
		"mongodb+srv://cluster.example": BackendMongo,
		":memory:":                      BackendSQLite,
		"file:rbac.db?cache=shared":     BackendSQLite,
		"/var/lib/rbac/rbac.db":         BackendSQLite,
	}
	for url, want := range cases {
		if got := DetectBackend(url); got != want {
			t.Fatalf("DetectBackend(%q) = %s, want %s", url, got, want)
		}
	}
}

func TestOpen_SQLiteMemory(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{URL: ":memory:"}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open failed: %v", err)
	}
	defer store.Close(ctx)

	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	if err := store.Ping(ctx); err != nil {
		t.Fatalf("ping failed: %v", err)
	}
}
