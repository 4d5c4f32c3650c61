package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/marmos91/deckd/internal/logger"
	"github.com/marmos91/deckd/pkg/api"
	"github.com/marmos91/deckd/pkg/config"
	"github.com/marmos91/deckd/pkg/router"
	"github.com/marmos91/deckd/pkg/server"
	"github.com/spf13/cobra"
)

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the deckd server",
	Long: `Loads the configuration, opens the database connection pool and serves
HTTP until SIGINT or SIGTERM. Startup aborts if any pooled connection cannot be
established or the listener cannot be bound.`,
	Args: cobra.NoArgs,
	RunE: runStart,
}

func init() {
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	// Past this point failures are runtime errors, not usage errors.
	cmd.SilenceUsage = true

	log, err := logger.Open(cfg.Logging.Output, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}
	defer func() { _ = log.Close() }()

	log.Info("deckd %s starting", version)
	log.Debug("Log level set to: %s", cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := config.InitializeMetrics(cfg, log)
	if m.Server != nil {
		go func() {
			if err := m.Server.Start(ctx); err != nil {
				log.Error("Metrics server error: %v", err)
			}
		}()
	}

	pool, err := config.CreateDBPool(ctx, &cfg.Database, log, m.DBPool)
	if err != nil {
		return err
	}

	r := router.New()
	api.Register(r, pool, log)

	adapters, err := config.CreateAdapters(cfg, r, log, m)
	if err != nil {
		_ = pool.Close()
		return fmt.Errorf("failed to create adapters: %w", err)
	}

	srv := server.New(log, cfg.Server.ShutdownTimeout)
	srv.AddCloser("database pool", pool)
	for _, a := range adapters {
		if err := srv.AddAdapter(a); err != nil {
			_ = pool.Close()
			return err
		}
	}

	log.Debug("Registered routes: %v", r.Routes())

	return srv.Serve(ctx)
}
