package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config is the immutable runtime configuration for one shipper run.
// It is constructed once at startup and passed explicitly to every
// component; nothing reads the environment after Load returns.
type Config struct {
	Watchtower WatchtowerConfig `mapstructure:"watchtower"`
	Datadog    DatadogConfig    `mapstructure:"datadog"`
	Elastic    ElasticConfig    `mapstructure:"elastic"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// WatchtowerConfig locates the upstream feed endpoint.
type WatchtowerConfig struct {
	APIURL     string `mapstructure:"api_url"`
	APIToken   string `mapstructure:"api_token"`
	FeedFormat string `mapstructure:"feed_format"`
	FetchSince string `mapstructure:"fetch_since"`
}

// DatadogConfig holds the logs-sink credentials.
type DatadogConfig struct {
	APIKey string `mapstructure:"api_key"`
	Site   string `mapstructure:"site"`
}

// ElasticConfig holds the search-sink credentials. Exactly one of the
// four credential combinations is selected at connect time; see
// sink/elastic.Connect for the precedence order.
type ElasticConfig struct {
	CloudID   string `mapstructure:"cloud_id"`
	APIKey    string `mapstructure:"api_key"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	Endpoint  string `mapstructure:"endpoint"`
	IndexName string `mapstructure:"index_name"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load builds the configuration from the environment. defaultFormat is
// the feed format used when FEED_FORMAT is unset; the two pipelines
// historically default differently (cef for the logs sink, stix for the
// search sink).
func Load(defaultFormat string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("watchtower.api_url", "http://localhost:8080")
	v.SetDefault("watchtower.api_token", "")
	v.SetDefault("watchtower.feed_format", defaultFormat)
	v.SetDefault("watchtower.fetch_since", "1h")
	v.SetDefault("datadog.api_key", "")
	v.SetDefault("datadog.site", "datadoghq.com")
	v.SetDefault("elastic.cloud_id", "")
	v.SetDefault("elastic.api_key", "")
	v.SetDefault("elastic.username", "elastic")
	v.SetDefault("elastic.password", "")
	v.SetDefault("elastic.endpoint", "")
	v.SetDefault("elastic.index_name", "watchtower-iocs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")

	// The shippers are configured entirely by environment; the env var
	// names are a published contract, so bind each one explicitly.
	bindings := map[string]string{
		"watchtower.api_url":     "WATCHTOWER_API_URL",
		"watchtower.api_token":   "WATCHTOWER_API_TOKEN",
		"watchtower.feed_format": "FEED_FORMAT",
		"watchtower.fetch_since": "FETCH_SINCE",
		"datadog.api_key":        "DATADOG_API_KEY",
		"datadog.site":           "DATADOG_SITE",
		"elastic.cloud_id":       "ELASTIC_CLOUD_ID",
		"elastic.api_key":        "ELASTIC_API_KEY",
		"elastic.username":       "ELASTIC_USERNAME",
		"elastic.password":       "ELASTIC_PASSWORD",
		"elastic.endpoint":       "ELASTIC_ENDPOINT",
		"elastic.index_name":     "INDEX_NAME",
		"logging.level":          "LOG_LEVEL",
		"logging.format":         "LOG_FORMAT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
