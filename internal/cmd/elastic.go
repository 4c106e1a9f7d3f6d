package cmd

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/hive-corporation/watchtower-shippers/internal/config"
	"github.com/hive-corporation/watchtower-shippers/internal/feed"
	"github.com/hive-corporation/watchtower-shippers/internal/logging"
	"github.com/hive-corporation/watchtower-shippers/internal/sink/elastic"
)

var elasticCmd = &cobra.Command{
	Use:   "elastic",
	Short: "Index the IOC feed into an Elasticsearch cluster",
	Long: `Fetch the Watchtower IOC feed and index it into a dated index
(<INDEX_NAME>-YYYY.MM.DD) via one bulk operation that continues past
individual document errors. The run reports the indexed count and the
first few document errors.

Environment:
  ELASTIC_CLOUD_ID     Elastic Cloud ID
  ELASTIC_API_KEY      Elastic API key
  ELASTIC_USERNAME     basic-auth username (default: elastic)
  ELASTIC_PASSWORD     basic-auth password
  ELASTIC_ENDPOINT     cluster endpoint URL (for self-hosted)
  INDEX_NAME           index name prefix (default: watchtower-iocs)
  WATCHTOWER_API_URL   Watchtower API URL (default: http://localhost:8080)
  WATCHTOWER_API_TOKEN Watchtower bearer token (optional)
  FEED_FORMAT          cef or stix (default: stix)
  FETCH_SINCE          relative time window, e.g. 1h, 24h, 7d (default: 1h)

Credentials are tried in order: cloud id + api key, cloud id + basic
auth, endpoint + api key, endpoint + basic auth.`,
	RunE: runElastic,
}

func init() {
	rootCmd.AddCommand(elasticCmd)
}

func runElastic(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(string(feed.FormatSTIX))
	if err != nil {
		return err
	}
	logger := newLogger(cfg, "elastic-shipper")

	format, err := feed.ParseFormat(cfg.Watchtower.FeedFormat)
	if err != nil {
		return err
	}

	logger.Info("starting ingestion",
		logging.Format(string(format)),
		logging.Since(cfg.Watchtower.FetchSince),
	)

	sink, err := elastic.Connect(ctx, elastic.Config{
		CloudID:  cfg.Elastic.CloudID,
		APIKey:   cfg.Elastic.APIKey,
		Username: cfg.Elastic.Username,
		Password: cfg.Elastic.Password,
		Endpoint: cfg.Elastic.Endpoint,
	}, logger)
	if err != nil {
		return err
	}

	client := feed.NewClient(cfg.Watchtower.APIURL, cfg.Watchtower.APIToken, logger)
	raw, err := client.Fetch(ctx, format, cfg.Watchtower.FetchSince)
	if err != nil {
		return err
	}

	now := time.Now()
	index := elastic.IndexName(cfg.Elastic.IndexName, now)

	var docs []elastic.Document
	switch format {
	case feed.FormatCEF:
		docs = elastic.BuildCEFDocs(feed.SplitCEF(raw), now)
	case feed.FormatSTIX:
		objects, err := feed.ParseSTIXBundle(raw)
		if err != nil {
			return err
		}
		docs = elastic.BuildSTIXDocs(objects, now)
	}

	result, err := sink.Ingest(ctx, index, docs)
	if err != nil {
		return err
	}

	logger.Info("ingestion complete",
		logging.Index(index),
		logging.Count(result.Indexed),
		"failed", result.Failed,
	)
	for _, msg := range result.Errors {
		logger.Warn("document error", slog.String(logging.FieldError, msg))
	}

	return nil
}
