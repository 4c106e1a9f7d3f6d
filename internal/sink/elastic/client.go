// Package elastic indexes feed records into the search cluster through
// one bulk operation per run.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"

	"github.com/hive-corporation/watchtower-shippers/internal/logging"
)

// maxReportedErrors caps how many individual document errors the run
// summary surfaces.
const maxReportedErrors = 5

// Config holds the search cluster credentials. Exactly one of the four
// credential combinations is used; see Connect.
type Config struct {
	CloudID  string
	APIKey   string
	Username string
	Password string
	Endpoint string
}

// Client wraps an Elasticsearch connection for bulk IOC indexing.
type Client struct {
	es  *elasticsearch.Client
	log *logging.Logger
}

// buildConfig selects the first credential combination for which the
// required fields are present: cloud ID + API key, cloud ID + basic
// auth, endpoint + API key, endpoint + basic auth.
func buildConfig(cfg Config) (elasticsearch.Config, string, error) {
	switch {
	case cfg.CloudID != "" && cfg.APIKey != "":
		return elasticsearch.Config{
			CloudID: cfg.CloudID,
			APIKey:  cfg.APIKey,
		}, "cloud id + api key", nil
	case cfg.CloudID != "" && cfg.Password != "":
		return elasticsearch.Config{
			CloudID:  cfg.CloudID,
			Username: cfg.Username,
			Password: cfg.Password,
		}, "cloud id + basic auth", nil
	case cfg.Endpoint != "" && cfg.APIKey != "":
		return elasticsearch.Config{
			Addresses: []string{cfg.Endpoint},
			APIKey:    cfg.APIKey,
		}, "endpoint + api key", nil
	case cfg.Endpoint != "" && cfg.Password != "":
		return elasticsearch.Config{
			Addresses: []string{cfg.Endpoint},
			Username:  cfg.Username,
			Password:  cfg.Password,
		}, "endpoint + basic auth", nil
	default:
		return elasticsearch.Config{}, "", fmt.Errorf(
			"no search cluster credentials configured: set ELASTIC_CLOUD_ID or ELASTIC_ENDPOINT with an api key or password")
	}
}

// Connect builds the cluster client and verifies connectivity before
// any indexing is attempted. A cluster that cannot be reached aborts
// the run.
func Connect(ctx context.Context, cfg Config, log *logging.Logger) (*Client, error) {
	esCfg, authMode, err := buildConfig(cfg)
	if err != nil {
		return nil, err
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	log.Info("connecting to search cluster", "auth", authMode)

	res, err := es.Info(es.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("connect to elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("elasticsearch returned error: %s", res.Status())
	}

	var info struct {
		ClusterName string `json:"cluster_name"`
		Version     struct {
			Number string `json:"number"`
		} `json:"version"`
	}
	if err := json.NewDecoder(res.Body).Decode(&info); err == nil {
		log.Info("connected to search cluster",
			"cluster", info.ClusterName,
			"version", info.Version.Number,
		)
	}

	return &Client{es: es, log: log}, nil
}

// IngestResult summarizes one bulk run. Errors holds at most the first
// maxReportedErrors individual document failures.
type IngestResult struct {
	Indexed int
	Failed  int
	Errors  []string
}

// Ingest submits every document in one bulk operation that continues
// past individual document errors. Records are added in feed order; the
// indexer runs a single worker so that order is preserved on the wire.
func (c *Client) Ingest(ctx context.Context, index string, docs []Document) (*IngestResult, error) {
	result := &IngestResult{}

	if len(docs) == 0 {
		c.log.Info("no documents to index", logging.Index(index))
		return result, nil
	}

	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Client:     c.es,
		Index:      index,
		NumWorkers: 1,
	})
	if err != nil {
		return nil, fmt.Errorf("create bulk indexer: %w", err)
	}

	c.log.Info("indexing documents", logging.Index(index), logging.Count(len(docs)))

	// Callbacks fire on the indexer's worker goroutine.
	var mu sync.Mutex

	for _, doc := range docs {
		data, err := json.Marshal(doc)
		if err != nil {
			mu.Lock()
			result.Failed++
			result.recordError(fmt.Sprintf("marshal document: %v", err))
			mu.Unlock()
			continue
		}

		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action: "index",
			Body:   bytes.NewReader(data),
			OnSuccess: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem) {
				mu.Lock()
				result.Indexed++
				mu.Unlock()
			},
			OnFailure: func(ctx context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				mu.Lock()
				result.Failed++
				if err != nil {
					result.recordError(err.Error())
				} else {
					result.recordError(fmt.Sprintf("%s: %s", res.Error.Type, res.Error.Reason))
				}
				mu.Unlock()
			},
		})
		if err != nil {
			mu.Lock()
			result.Failed++
			result.recordError(fmt.Sprintf("add to bulk indexer: %v", err))
			mu.Unlock()
		}
	}

	if err := bi.Close(ctx); err != nil {
		return result, fmt.Errorf("flush bulk indexer: %w", err)
	}

	return result, nil
}

func (r *IngestResult) recordError(msg string) {
	if len(r.Errors) < maxReportedErrors {
		r.Errors = append(r.Errors, msg)
	}
}
