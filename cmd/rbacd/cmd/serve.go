package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tokengate/rbac-api/internal/api"
	"github.com/tokengate/rbac-api/internal/api/handler"
	"github.com/tokengate/rbac-api/internal/core/ports"
	"github.com/tokengate/rbac-api/internal/core/service"
	redisdb "github.com/tokengate/rbac-api/internal/infrastructure/db/redis"
	"github.com/tokengate/rbac-api/pkg/logger"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Migrates and bootstraps the store, then serves the API until SIGINT or
SIGTERM. The Redis session cache is used when REDIS_ADDR is set.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log := logger.Get()
		svcLog := logger.Component("service")

		store, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer closeStore(store)

		if err := bootstrap(ctx, store); err != nil {
			return err
		}

		health := map[string]handler.Pinger{"store": store}

		var cache ports.SessionCache
		if cfg.Redis.Addr != "" {
			client, err := redisdb.Connect(ctx, redisdb.Config{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			if err != nil {
				return fmt.Errorf("failed to connect to redis: %w", err)
			}
			defer client.Close()

			sessionCache := redisdb.NewSessionCache(client, cfg.Redis.TTL)
			cache = sessionCache
			health["redis"] = sessionCache
			log.Info().Str("addr", cfg.Redis.Addr).Msg("session cache enabled")
		}

		hasher := newHasher()
		sessions := service.NewSessionManager(store, cache, logger.Component("session"))

		e := api.NewRouter(api.Deps{
			Auth:          service.NewAuthService(store, hasher, sessions, cfg.Bootstrap.DefaultRole, svcLog),
			Profile:       service.NewProfileService(store, svcLog),
			Identity:      service.NewIdentity(store, sessions),
			Access:        service.NewAccess(store),
			Admin:         service.NewAdminService(store, svcLog),
			SessionHeader: cfg.SessionHeader,
			Health:        health,
			Log:           logger.Component("http"),
		})

		srv := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      e,
			ReadTimeout:  cfg.HTTP.ReadTimeout,
			WriteTimeout: cfg.HTTP.WriteTimeout,
			IdleTimeout:  cfg.HTTP.IdleTimeout,
		}

		errCh := make(chan error, 1)
		go func() {
			log.Info().Str("addr", srv.Addr).Str("env", cfg.Env).Msg("http server listening")
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().String("port", "", "Listen port (env: PORT)")
}
