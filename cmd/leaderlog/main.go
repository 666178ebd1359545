// Leaderlog is a leadership journal for the terminal.
//
// It records three kinds of entries: reflections, emotional triggers and
// accomplishments. It charts them per ISO week and can ask a
// text-generation service for a short coaching summary of the last 30 days.
//
// Usage:
//
//	# Log entries
//	leaderlog reflect add --category communication "Ran a calm all-hands"
//	leaderlog trigger add --intensity 7 --notes "took a walk" "Release slipped"
//	leaderlog win add "Promoted my first report"
//
//	# Review
//	leaderlog stats
//	leaderlog insight
//	leaderlog dashboard
//
// Configuration is read from ~/.config/leaderlog/config.yaml and LEADERLOG_*
// environment variables. See internal/config for details.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// Global flags
var (
	configPath string
	statePath  string
	backend    string
	logLevel   string
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "leaderlog",
	Short: "A leadership journal for reflections, triggers and wins",
	Long: `leaderlog keeps a private leadership journal on your machine.

Log reflections, emotional triggers and accomplishments, review weekly
activity, and generate coaching insights from the last 30 days.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: ~/.config/leaderlog/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&statePath, "state", "", "state file or database path (default: ~/.local/share/leaderlog/)")
	rootCmd.PersistentFlags().StringVar(&backend, "backend", "", "storage backend: file or sqlite (default: from config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error (default: from config)")
}
