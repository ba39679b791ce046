// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 UNxchange Contributors

package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/UNxchange/back-pappi-calculator-auth/internal/auth"
	authpg "github.com/UNxchange/back-pappi-calculator-auth/internal/auth/postgres"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/config"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/httpapi"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/logging"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/observability"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/store"
	"github.com/UNxchange/back-pappi-calculator-auth/internal/xdg"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the authentication HTTP service",
		Long: `Start the HTTP API (register, login, health) and, when configured,
the observability server with metrics and readiness probes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := configFile
			if path == "" {
				// First run creates the config dir so a config.yaml
				// dropped there is picked up on the next start.
				if err := xdg.EnsureDir(xdg.ConfigDir()); err != nil {
					return err
				}
				path = xdg.DefaultConfigFile()
			}
			cfg, err := config.Load(path, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault(cfg.App.Name, version, cfg.Log.Format)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.URL, cfg.App.Debug, slog.Default())
	if err != nil {
		return err
	}
	defer pool.Close()

	slog.Info("connected to database")

	issuer, err := auth.NewTokenIssuer([]byte(cfg.Auth.SecretKey), cfg.Auth.Algorithm, cfg.TokenTTL())
	if err != nil {
		return err
	}

	students := authpg.NewStudentRepository(pool)
	hasher := auth.NewArgon2idHasher()

	svc, err := auth.NewService(students, hasher, issuer, slog.Default())
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var metrics *observability.Metrics
	var obsServer *observability.Server
	if cfg.Server.MetricsAddr != "" {
		obsServer = observability.NewServer(cfg.Server.MetricsAddr, func() bool {
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return pool.Ping(pingCtx) == nil
		})
		obsErrCh, obsErr := obsServer.Start()
		if obsErr != nil {
			return obsErr
		}
		go monitorServerErrors(ctx, cancel, obsErrCh, "observability")
		metrics = obsServer.Metrics()
	}

	api, err := httpapi.NewServer(cfg.Server.Addr, cfg.App.Name, version, svc, metrics, slog.Default())
	if err != nil {
		return stopServers(nil, obsServer, err)
	}

	apiErrCh, err := api.Start()
	if err != nil {
		return stopServers(nil, obsServer, err)
	}
	go monitorServerErrors(ctx, cancel, apiErrCh, "api")

	slog.Info("auth service ready",
		"addr", api.Addr(),
		"token_ttl", cfg.TokenTTL().String(),
	)

	<-ctx.Done()
	slog.Info("shutting down")

	return stopServers(api, obsServer, nil)
}

// monitorServerErrors cancels the run context when a server reports a fatal
// error after startup.
func monitorServerErrors(ctx context.Context, cancel context.CancelFunc, errCh <-chan error, name string) {
	select {
	case err, ok := <-errCh:
		if ok && err != nil {
			slog.Error("server failed", "server", name, "error", err)
			cancel()
		}
	case <-ctx.Done():
	}
}

// stopServers shuts both servers down, preserving the first error.
func stopServers(api *httpapi.Server, obs *observability.Server, firstErr error) error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if api != nil {
		if err := api.Stop(shutdownCtx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if obs != nil {
		if err := obs.Stop(shutdownCtx); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
