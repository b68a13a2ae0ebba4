package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/panelhost/canvas/internal/config"
	"github.com/panelhost/canvas/internal/log"
	"github.com/panelhost/canvas/internal/session"
)

var (
	sessionIDStyle   = lipgloss.NewStyle().Bold(true)
	sessionPathStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

var sessionsCmd = &cobra.Command{
	Use:   "sessions",
	Short: "Inspect archived artifact sessions",
}

var sessionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List archived sessions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessionsList()
	},
}

var sessionsCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete all but the most recent sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSessionsCleanup()
	},
}

var cleanupKeep int

func init() {
	sessionsCleanupCmd.Flags().IntVar(&cleanupKeep, "keep", 0,
		"sessions to retain (default: configured session_keep_count)")
	sessionsCmd.AddCommand(sessionsListCmd)
	sessionsCmd.AddCommand(sessionsCleanupCmd)
	rootCmd.AddCommand(sessionsCmd)
}

func openStore() (*session.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	root, err := cfg.ResolveStorageRoot()
	if err != nil {
		return nil, nil, err
	}
	return session.New(root, cfg.Namespace, log.NewNop()), cfg, nil
}

func runSessionsList() error {
	store, _, err := openStore()
	if err != nil {
		return err
	}

	sessions, err := store.Sessions()
	if err != nil {
		return fmt.Errorf("listing sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Println("No archived sessions.")
		return nil
	}

	for _, s := range sessions {
		fmt.Printf("%s  %d artifacts\n  %s\n",
			sessionIDStyle.Render(s.ID),
			s.FileCount,
			sessionPathStyle.Render(s.Path),
		)
	}
	return nil
}

func runSessionsCleanup() error {
	store, cfg, err := openStore()
	if err != nil {
		return err
	}

	keep := cleanupKeep
	if keep <= 0 {
		keep = cfg.SessionKeepCount
	}

	removed, err := store.Cleanup(keep)
	if err != nil {
		return fmt.Errorf("cleaning up sessions: %w", err)
	}
	fmt.Printf("Removed %d sessions, keeping the %d most recent.\n", removed, keep)
	return nil
}
