package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tokengate/rbac-api/internal/core/ports"
	"github.com/tokengate/rbac-api/internal/core/service"
	"github.com/tokengate/rbac-api/internal/infrastructure/db"
	"github.com/tokengate/rbac-api/pkg/logger"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Store management commands",
	Long:  `Commands for preparing the schema and the bootstrap records.`,
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the schema",
	Long:  `Creates the tables (or collections) and indexes. Safe to run repeatedly.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(store)

		log := logger.Get()
		log.Info().Msg("schema is up to date")
		return nil
	},
}

var dbBootstrapCmd = &cobra.Command{
	Use:   "bootstrap",
	Short: "Ensure the admin and default roles and the admin account",
	Long: `Migrates the schema, then ensures the admin role, the default role and the
admin account exist. An existing admin account keeps its password.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(cmd.Context())
		if err != nil {
			return err
		}
		defer closeStore(store)

		return bootstrap(cmd.Context(), store)
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbBootstrapCmd)
}

// openStore connects to the configured backend and migrates it.
func openStore(ctx context.Context) (ports.Store, error) {
	store, err := db.Open(ctx, db.Config{
		URL:           cfg.Store.DatabaseURL,
		MongoDatabase: cfg.Store.MongoDB,
		LogSQL:        cfg.Store.LogSQL,
	}, logger.Component("store"))
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	if err := store.Migrate(ctx); err != nil {
		closeStore(store)
		return nil, fmt.Errorf("failed to migrate store: %w", err)
	}
	return store, nil
}

func closeStore(store ports.Store) {
	if err := store.Close(context.Background()); err != nil {
		log := logger.Component("store")
		log.Warn().Err(err).Msg("store close failed")
	}
}

func bootstrap(ctx context.Context, store ports.Store) error {
	opts := service.BootstrapOptions{
		AdminEmail:      cfg.Bootstrap.AdminEmail,
		AdminPassword:   cfg.Bootstrap.AdminPassword,
		DefaultRoleName: cfg.Bootstrap.DefaultRole,
	}
	if err := service.Bootstrap(ctx, store, newHasher(), opts, logger.Component("bootstrap")); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

func newHasher() *service.BcryptHasher {
	return service.NewBcryptHasher(cfg.Security.BcryptCost)
}
