// Package datadog forwards feed records to the Datadog logs-intake API
// in fixed-size batches.
package datadog

import (
	"context"
	"time"

	"github.com/DataDog/datadog-api-client-go/v2/api/datadog"
	"github.com/DataDog/datadog-api-client-go/v2/api/datadogV2"

	"github.com/hive-corporation/watchtower-shippers/internal/feed"
	"github.com/hive-corporation/watchtower-shippers/internal/logging"
)

const (
	batchSize = 100

	// Fixed envelope metadata carried by every log item.
	logSource   = "watchtower"
	logHostname = "watchtower-api"
	logService  = "threat-intelligence"

	// Pause after every batch to respect the intake rate limit.
	interBatchDelay = 500 * time.Millisecond
)

// Submitter is the one sink operation the forwarder needs. The
// production implementation wraps the Datadog SDK; tests substitute a
// recording fake.
type Submitter interface {
	SubmitLog(ctx context.Context, items []datadogV2.HTTPLogItem) error
}

type apiSubmitter struct {
	api    *datadogV2.LogsApi
	apiKey string
	site   string
}

func (s *apiSubmitter) SubmitLog(ctx context.Context, items []datadogV2.HTTPLogItem) error {
	ctx = context.WithValue(ctx, datadog.ContextAPIKeys, map[string]datadog.APIKey{
		"apiKeyAuth": {Key: s.apiKey},
	})
	ctx = context.WithValue(ctx, datadog.ContextServerVariables, map[string]string{
		"site": s.site,
	})
	_, _, err := s.api.SubmitLog(ctx, items)
	return err
}

// BatchResult records the outcome of one batch submission. Batch is
// 1-based; Err is nil on success. A failed batch is neither retried nor
// re-queued.
type BatchResult struct {
	Batch int
	Total int
	Size  int
	Err   error
}

// Forwarder partitions records into batches and submits each batch to
// the logs sink, pausing between batches.
type Forwarder struct {
	submitter Submitter
	log       *logging.Logger
	pause     func(ctx context.Context) error
}

// New creates a Forwarder backed by the Datadog logs API.
func New(apiKey, site string, log *logging.Logger) *Forwarder {
	client := datadog.NewAPIClient(datadog.NewConfiguration())
	return NewWithSubmitter(&apiSubmitter{
		api:    datadogV2.NewLogsApi(client),
		apiKey: apiKey,
		site:   site,
	}, log)
}

// NewWithSubmitter creates a Forwarder over a custom Submitter.
func NewWithSubmitter(s Submitter, log *logging.Logger) *Forwarder {
	return &Forwarder{
		submitter: s,
		log:       log,
		pause:     defaultPause,
	}
}

func defaultPause(ctx context.Context) error {
	timer := time.NewTimer(interBatchDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Forward submits records in feed order in batches of up to 100. Each
// record becomes one log item whose message is the record verbatim. A
// batch failure is reported in its BatchResult and the run continues
// with the next batch. Forward returns early only when ctx is canceled.
func (f *Forwarder) Forward(ctx context.Context, records []string, format feed.Format) ([]BatchResult, error) {
	if len(records) == 0 {
		f.log.Info("no records to forward", logging.Format(string(format)))
		return nil, nil
	}

	tags := "source:watchtower,format:" + string(format) + ",type:threat-intel"
	total := (len(records) + batchSize - 1) / batchSize

	f.log.Info("forwarding records",
		logging.Count(len(records)),
		logging.Batches(total),
		logging.Format(string(format)),
	)

	results := make([]BatchResult, 0, total)
	for i := 0; i < len(records); i += batchSize {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		end := i + batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[i:end]
		batchNum := i/batchSize + 1

		items := make([]datadogV2.HTTPLogItem, 0, len(batch))
		for _, record := range batch {
			item := datadogV2.NewHTTPLogItem(record)
			item.SetDdsource(logSource)
			item.SetDdtags(tags)
			item.SetHostname(logHostname)
			item.SetService(logService)
			items = append(items, *item)
		}

		result := BatchResult{Batch: batchNum, Total: total, Size: len(batch)}
		if err := f.submitter.SubmitLog(ctx, items); err != nil {
			result.Err = err
			f.log.Error("failed to send batch",
				logging.Batch(batchNum),
				logging.Batches(total),
				logging.Error(err),
			)
		} else {
			f.log.Info("sent batch",
				logging.Batch(batchNum),
				logging.Batches(total),
				logging.Count(len(batch)),
			)
		}
		results = append(results, result)

		if err := f.pause(ctx); err != nil {
			return results, err
		}
	}

	return results, nil
}
