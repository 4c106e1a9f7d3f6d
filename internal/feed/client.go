package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/hive-corporation/watchtower-shippers/internal/logging"
)

const (
	feedPath     = "/api/v1/iocs/feed"
	fetchTimeout = 30 * time.Second
)

// Client fetches the IOC feed from the Watchtower API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *logging.Logger
}

// NewClient creates a feed client. token may be empty, in which case no
// Authorization header is sent.
func NewClient(baseURL, token string, log *logging.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: fetchTimeout,
		},
		log: log,
	}
}

// Fetch performs one GET against the feed endpoint and returns the raw
// response body. Any transport failure or non-2xx status is an error;
// the caller terminates the run rather than retrying.
func (c *Client) Fetch(ctx context.Context, format Format, since string) ([]byte, error) {
	u, err := url.Parse(c.baseURL + feedPath)
	if err != nil {
		return nil, fmt.Errorf("parse feed url: %w", err)
	}

	q := u.Query()
	q.Set("format", string(format))
	q.Set("since", since)
	u.RawQuery = q.Encode()

	c.log.Info("fetching feed",
		logging.URL(u.String()),
		logging.Format(string(format)),
		logging.Since(since),
	)

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		request.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("feed response status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	c.log.Info("feed fetched", logging.Count(len(body)))
	return body, nil
}
