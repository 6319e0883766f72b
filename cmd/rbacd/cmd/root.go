package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tokengate/rbac-api/internal/infrastructure/config"
	"github.com/tokengate/rbac-api/pkg/logger"
)

const serviceName = "rbac-api"

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "rbacd",
	Short: "RBAC API server",
	Long: `rbacd serves session-token authentication and role-based access control
over HTTP. Users register and log in, administrators manage roles and
permissions, and protected routes check (resource, action) grants.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		applyFlags(cmd)

		logger.Init(logger.Options{
			Level:   cfg.LogLevel,
			Pretty:  cfg.IsDevelopment(),
			Service: serviceName,
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("db-url", "", "Store URL: postgres://, mongodb:// or a SQLite path (env: DATABASE_URL)")
	rootCmd.PersistentFlags().String("log-level", "", "Minimum log level (env: LOG_LEVEL)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dbCmd)
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(cmd *cobra.Command) {
	flags := cmd.Flags()
	if flags.Changed("db-url") {
		cfg.Store.DatabaseURL, _ = flags.GetString("db-url")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetString("port")
	}
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
