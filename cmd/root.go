// Package cmd wires the canvas CLI together.
package cmd

import (
	"github.com/spf13/cobra"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "canvas",
	Short: "canvas - artifact display host for CLI tools",
	Long: `canvas hosts rich visual output for command-line tools.

Run "canvas serve" to start the display host; CLI processes then push
charts, tables, diffs and other artifacts to it over a local websocket,
and every render is archived into a per-run session directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd, args)
	},
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}
