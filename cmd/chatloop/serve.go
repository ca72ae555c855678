// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Chatloop Contributors

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/chatloop/chatloop/internal/auth"
	authpostgres "github.com/chatloop/chatloop/internal/auth/postgres"
	"github.com/chatloop/chatloop/internal/config"
	"github.com/chatloop/chatloop/internal/httpapi"
	"github.com/chatloop/chatloop/internal/logging"
	"github.com/chatloop/chatloop/internal/observability"
	"github.com/chatloop/chatloop/internal/store"
	"github.com/chatloop/chatloop/internal/token"
)

const shutdownTimeout = 10 * time.Second

// newServeCmd creates the serve subcommand. Flag names are the dotted
// config keys so they override file values directly.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication API server",
		Long: `Start the authentication API server, serving the JSON endpoints
for registration, login, logout, and profile retrieval, plus a separate
metrics/health listener.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	defaults := config.Default()
	cmd.Flags().String("server.addr", defaults.Server.Addr, "API listen address")
	cmd.Flags().String("metrics.addr", defaults.Metrics.Addr, "metrics/health listen address (empty = disabled)")
	cmd.Flags().String("database.url", "", "PostgreSQL connection URL")
	cmd.Flags().String("log.format", defaults.Log.Format, "log format (json or text)")

	return cmd
}

// runServe starts the API and observability servers and blocks until
// a shutdown signal or a server failure.
func runServe(ctx context.Context, cfg *config.Config) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if err := logging.SetDefault("chatloop", version, cfg.Log.Format); err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	slog.Info("starting chatloop",
		"server_addr", cfg.Server.Addr,
		"metrics_addr", cfg.Metrics.Addr,
		"log_format", cfg.Log.Format,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Open(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	slog.Info("connected to database")

	hasher := auth.NewBcryptHasher(cfg.Auth.BcryptCost)
	tokens, err := token.NewManager([]byte(cfg.Auth.Secret), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to create token manager: %w", err)
	}

	svc, err := auth.NewService(authpostgres.NewUserRepository(pool), hasher)
	if err != nil {
		return fmt.Errorf("failed to create credential service: %w", err)
	}

	opts := httpapi.Options{
		CookieTTL:    cfg.Auth.TokenTTL,
		CookieSecure: cfg.Auth.CookieSecure,
	}

	var obs *observability.Server
	var obsErrCh <-chan error
	if cfg.Metrics.Addr != "" {
		obs = observability.NewServer(cfg.Metrics.Addr, func() bool {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, err = obs.Start()
		if err != nil {
			return fmt.Errorf("failed to start observability server: %w", err)
		}
		opts.Metrics = obs.Metrics()
	}

	handler, err := httpapi.NewHandler(svc, tokens, tokens, opts)
	if err != nil {
		return fmt.Errorf("failed to create api handler: %w", err)
	}

	api := httpapi.NewServer(cfg.Server.Addr, handler.Routes())
	apiErrCh, err := api.Start()
	if err != nil {
		return fmt.Errorf("failed to start api server: %w", err)
	}

	select {
	case <-ctx.Done():
		slog.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		if serveErr != nil {
			slog.Error("api server failed", "error", serveErr)
		}
	case serveErr := <-obsErrCh:
		if serveErr != nil {
			slog.Error("observability server failed", "error", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := api.Stop(shutdownCtx); err != nil {
		slog.Warn("error stopping api server", "error", err)
	}
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil {
			slog.Warn("error stopping observability server", "error", err)
		}
	}

	slog.Info("shutdown complete")
	return nil
}
