package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/hive-corporation/watchtower-shippers/internal/config"
	"github.com/hive-corporation/watchtower-shippers/internal/feed"
	"github.com/hive-corporation/watchtower-shippers/internal/logging"
	"github.com/hive-corporation/watchtower-shippers/internal/sink/datadog"
)

var datadogCmd = &cobra.Command{
	Use:   "datadog",
	Short: "Ship the IOC feed to the Datadog logs intake",
	Long: `Fetch the Watchtower IOC feed and submit it to Datadog as log
events, in batches of 100 with a fixed pause between batches. A failed
batch is reported and skipped; the run continues with the next batch.

Environment:
  DATADOG_API_KEY      Datadog API key (required)
  DATADOG_SITE         Datadog site (default: datadoghq.com)
  WATCHTOWER_API_URL   Watchtower API URL (default: http://localhost:8080)
  WATCHTOWER_API_TOKEN Watchtower bearer token (optional)
  FEED_FORMAT          cef or stix (default: cef)
  FETCH_SINCE          relative time window, e.g. 1h, 24h, 7d (default: 1h)`,
	RunE: runDatadog,
}

func init() {
	rootCmd.AddCommand(datadogCmd)
}

func runDatadog(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(string(feed.FormatCEF))
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "datadog-shipper")

	format, err := feed.ParseFormat(cfg.Watchtower.FeedFormat)
	if err != nil {
		return err
	}
	if cfg.Datadog.APIKey == "" {
		return errors.New("DATADOG_API_KEY environment variable not set")
	}

	logger.Info("starting ingestion",
		logging.Format(string(format)),
		logging.Since(cfg.Watchtower.FetchSince),
	)

	client := feed.NewClient(cfg.Watchtower.APIURL, cfg.Watchtower.APIToken, logger)
	raw, err := client.Fetch(ctx, format, cfg.Watchtower.FetchSince)
	if err != nil {
		return err
	}

	var messages []string
	switch format {
	case feed.FormatCEF:
		messages = feed.SplitCEF(raw)
	case feed.FormatSTIX:
		objects, err := feed.ParseSTIXBundle(raw)
		if err != nil {
			return err
		}
		messages, err = feed.EncodeSTIXObjects(objects)
		if err != nil {
			return err
		}
	}

	forwarder := datadog.New(cfg.Datadog.APIKey, cfg.Datadog.Site, logger)
	results, err := forwarder.Forward(ctx, messages, format)

	sent, failedBatches := 0, 0
	for _, r := range results {
		if r.Err != nil {
			failedBatches++
		} else {
			sent += r.Size
		}
	}
	logger.Info("ingestion complete",
		logging.Count(sent),
		logging.Batches(len(results)),
		"failed_batches", failedBatches,
	)

	// A per-batch failure does not fail the run; only cancellation
	// propagates out of Forward.
	return err
}
