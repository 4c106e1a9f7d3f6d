// Package cmd wires the shipper pipelines into a cobra command tree.
package cmd

import (
	"context"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/hive-corporation/watchtower-shippers/internal/config"
	"github.com/hive-corporation/watchtower-shippers/internal/logging"
)

var rootCmd = &cobra.Command{
	Use:   "wtship",
	Short: "Watchtower feed shippers",
	Long: `wtship ships IOC feeds from the Watchtower threat-intelligence API
into downstream observability platforms.

Each pipeline runs once and exits: it fetches the feed, normalizes the
records, and forwards them to its sink. Behavior is controlled entirely
by environment variables; see the command help for the variables each
pipeline reads.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the command tree. ctx is canceled on user interrupt so
// every blocking call unwinds promptly.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// newLogger builds the run logger and installs it as the process
// default. Every run carries a fresh run_id so interleaved cron output
// stays attributable.
func newLogger(cfg *config.Config, service string) *logging.Logger {
	logger := logging.New(
		logging.ParseLevel(cfg.Logging.Level),
		cfg.Logging.Format,
	).With(logging.Service(service), logging.RunID(uuid.NewString()))
	logging.SetDefault(logger)
	return logger
}
