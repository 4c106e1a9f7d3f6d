package elastic

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hive-corporation/watchtower-shippers/internal/logging"
)

func testLogger() *logging.Logger {
	return logging.New(slog.LevelError, "text")
}

func TestBuildConfig_CloudIDAndAPIKey(t *testing.T) {
	esCfg, mode, err := buildConfig(Config{
		CloudID:  "deployment:abc",
		APIKey:   "key",
		Username: "elastic",
		Password: "pw",
		Endpoint: "https://example:9200",
	})
	require.NoError(t, err)
	assert.Equal(t, "cloud id + api key", mode)
	assert.Equal(t, "deployment:abc", esCfg.CloudID)
	assert.Equal(t, "key", esCfg.APIKey)
	assert.Empty(t, esCfg.Addresses)
	assert.Empty(t, esCfg.Username)
	assert.Empty(t, esCfg.Password)
}

func TestBuildConfig_CloudIDAndBasicAuth(t *testing.T) {
	esCfg, mode, err := buildConfig(Config{
		CloudID:  "deployment:abc",
		Username: "elastic",
		Password: "pw",
	})
	require.NoError(t, err)
	assert.Equal(t, "cloud id + basic auth", mode)
	assert.Equal(t, "deployment:abc", esCfg.CloudID)
	assert.Empty(t, esCfg.APIKey)
	assert.Equal(t, "elastic", esCfg.Username)
	assert.Equal(t, "pw", esCfg.Password)
}

func TestBuildConfig_EndpointAndAPIKey(t *testing.T) {
	esCfg, mode, err := buildConfig(Config{
		APIKey:   "key",
		Username: "elastic",
		Endpoint: "https://example:9200",
	})
	require.NoError(t, err)
	assert.Equal(t, "endpoint + api key", mode)
	assert.Equal(t, []string{"https://example:9200"}, esCfg.Addresses)
	assert.Equal(t, "key", esCfg.APIKey)
	assert.Empty(t, esCfg.Username)
}

func TestBuildConfig_EndpointAndBasicAuth(t *testing.T) {
	esCfg, mode, err := buildConfig(Config{
		Username: "elastic",
		Password: "pw",
		Endpoint: "https://example:9200",
	})
	require.NoError(t, err)
	assert.Equal(t, "endpoint + basic auth", mode)
	assert.Equal(t, []string{"https://example:9200"}, esCfg.Addresses)
	assert.Equal(t, "elastic", esCfg.Username)
	assert.Equal(t, "pw", esCfg.Password)
}

func TestBuildConfig_NoCredentials(t *testing.T) {
	for _, cfg := range []Config{
		{},
		{Username: "elastic"},
		{Endpoint: "https://example:9200"}, // endpoint alone is not enough
		{CloudID: "deployment:abc"},        // neither is a bare cloud id
	} {
		_, _, err := buildConfig(cfg)
		require.Error(t, err, "config %+v", cfg)
		assert.Contains(t, err.Error(), "no search cluster credentials")
	}
}

// fakeCluster emulates the two endpoints the client touches: the root
// info endpoint and _bulk. failFrom makes every document at or after
// that 1-based position fail; 0 fails nothing.
func fakeCluster(t *testing.T, failFrom int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")

		if !strings.Contains(r.URL.Path, "_bulk") {
			fmt.Fprint(w, `{"name":"node-1","cluster_name":"test-cluster","version":{"number":"8.14.0"}}`)
			return
		}

		var items []string
		scanner := bufio.NewScanner(r.Body)
		doc := 0
		for scanner.Scan() {
			line := scanner.Text()
			if strings.Contains(line, `"index"`) && strings.HasPrefix(line, `{"index"`) {
				continue
			}
			doc++
			if failFrom > 0 && doc >= failFrom {
				items = append(items, `{"index":{"status":400,"error":{"type":"mapper_parsing_exception","reason":"failed to parse field"}}}`)
			} else {
				items = append(items, fmt.Sprintf(`{"index":{"_index":"watchtower-iocs","_id":"%d","status":201}}`, doc))
			}
		}
		hasErrors := failFrom > 0
		fmt.Fprintf(w, `{"took":5,"errors":%t,"items":[%s]}`, hasErrors, strings.Join(items, ","))
	}))
}

func TestConnect_Success(t *testing.T) {
	server := fakeCluster(t, 0)
	defer server.Close()

	client, err := Connect(context.Background(), Config{
		Endpoint: server.URL,
		Username: "elastic",
		Password: "pw",
	}, testLogger())
	require.NoError(t, err)
	require.NotNil(t, client)
}

func TestConnect_NoCredentials(t *testing.T) {
	_, err := Connect(context.Background(), Config{}, testLogger())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no search cluster credentials")
}

func TestConnect_ClusterError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	_, err := Connect(context.Background(), Config{
		Endpoint: server.URL,
		Username: "elastic",
		Password: "pw",
	}, testLogger())
	require.Error(t, err)
}

func TestConnect_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := Connect(context.Background(), Config{
		Endpoint: server.URL,
		Username: "elastic",
		Password: "pw",
	}, testLogger())
	require.Error(t, err)
}

func mustConnect(t *testing.T, server *httptest.Server) *Client {
	t.Helper()
	client, err := Connect(context.Background(), Config{
		Endpoint: server.URL,
		Username: "elastic",
		Password: "pw",
	}, testLogger())
	require.NoError(t, err)
	return client
}

func TestIngest_Success(t *testing.T) {
	server := fakeCluster(t, 0)
	defer server.Close()
	client := mustConnect(t, server)

	docs := []Document{
		{"message": "one"},
		{"message": "two"},
		{"message": "three"},
	}

	result, err := client.Ingest(context.Background(), "watchtower-iocs-2026.08.23", docs)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Indexed)
	assert.Equal(t, 0, result.Failed)
	assert.Empty(t, result.Errors)
}

func TestIngest_ContinuesPastDocumentErrors(t *testing.T) {
	server := fakeCluster(t, 2)
	defer server.Close()
	client := mustConnect(t, server)

	docs := make([]Document, 9)
	for i := range docs {
		docs[i] = Document{"message": fmt.Sprintf("doc-%d", i)}
	}

	result, err := client.Ingest(context.Background(), "watchtower-iocs-2026.08.23", docs)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Indexed)
	assert.Equal(t, 8, result.Failed)

	// Only the first 5 individual errors are surfaced.
	require.Len(t, result.Errors, 5)
	for _, msg := range result.Errors {
		assert.Contains(t, msg, "mapper_parsing_exception")
	}
}

func TestIngest_Empty(t *testing.T) {
	bulkCalls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(r.URL.Path, "_bulk") {
			bulkCalls++
		}
		fmt.Fprint(w, `{"name":"node-1","cluster_name":"test-cluster","version":{"number":"8.14.0"}}`)
	}))
	defer server.Close()
	client := mustConnect(t, server)

	result, err := client.Ingest(context.Background(), "watchtower-iocs-2026.08.23", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Indexed)
	assert.Equal(t, 0, result.Failed)
	assert.Zero(t, bulkCalls)
}

func TestIngest_ResultShape(t *testing.T) {
	var r IngestResult
	for i := 0; i < 10; i++ {
		r.recordError("boom")
	}
	assert.Len(t, r.Errors, maxReportedErrors)

	data, err := json.Marshal(r.Errors)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}
