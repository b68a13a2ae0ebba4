package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/panelhost/canvas/internal/api"
	"github.com/panelhost/canvas/internal/config"
	"github.com/panelhost/canvas/internal/log"
	"github.com/panelhost/canvas/internal/panel"
	"github.com/panelhost/canvas/internal/render"
	"github.com/panelhost/canvas/internal/session"
	"github.com/panelhost/canvas/internal/surface"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the display host",
	Long: `Starts the display host on a loopback websocket port and waits
for CLI clients. Panel lifecycle events are echoed to the terminal, and
each render is archived under <storage-root>/tmp/<namespace>/.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parsing log level: %w", err)
	}
	if verbose {
		level = slog.LevelDebug
	}
	logger := log.New(log.Config{Level: level, JSON: cfg.LogJSON})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	root, err := cfg.ResolveStorageRoot()
	if err != nil {
		logger.Warn("no storage root, persistence disabled", "error", err)
		root = ""
	}

	store := session.New(root, cfg.Namespace, logger)
	if store.Active() {
		if removed, err := store.Cleanup(cfg.SessionKeepCount); err != nil {
			logger.Warn("session cleanup failed", "error", err)
		} else if removed > 0 {
			logger.Info("cleaned up old sessions", "removed", removed, "kept", cfg.SessionKeepCount)
		}
	}

	registry := render.NewDefault(logger, cfg.MaxDiffLines)
	term := surface.NewTerminal(os.Stdout)
	manager := panel.NewManager(term, registry, store, logger)

	srv := api.NewServer(api.ServerConfig{
		Addr:          cfg.Addr(),
		Handler:       api.NewHandler(manager, logger),
		Logger:        logger,
		RatePerSecond: cfg.RatePerSecond,
		RateBurst:     cfg.RateBurst,
	})

	logger.Info("display host starting",
		"addr", cfg.Addr(),
		"session", store.ID(),
		"persistence", store.Active(),
	)

	if err := srv.Serve(ctx); err != nil {
		return fmt.Errorf("serving: %w", err)
	}
	logger.Info("display host stopped")
	return nil
}
