package logstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/notifid/logextractor/internal/domain/errors"
	"github.com/notifid/logextractor/internal/domain/logs"
)

// Config carries the log store connection settings.
type Config struct {
	URL      string
	Username string
	Password string
	Timeout  time.Duration
}

// Client executes multi-search requests against the log store.
type Client struct {
	httpClient *http.Client
	url        string
	username   string
	password   string
	logger     *slog.Logger
}

// NewClient creates a log store client.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		url:        strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		logger:     logger.With(slog.String("component", "logstore")),
	}
}

type msearchResponse struct {
	Responses []struct {
		Status int `json:"status"`
		Error  *struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
		Hits struct {
			Hits []struct {
				Source json.RawMessage `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	} `json:"responses"`
}

// Search executes the specs as one multi-search request and returns one
// ordered result list per spec, in spec order.
func (c *Client) Search(ctx context.Context, specs []QuerySpec) ([][]logs.Record, error) {
	body, err := BuildMultiSearch(specs)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/_msearch", strings.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "creating msearch request")
	}
	req.Header.Set("Content-Type", "application/x-ndjson")
	req.SetBasicAuth(c.username, c.password)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.NewUpstreamUnavailableError("log store", "request failed").WithCause(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, errors.NewUpstreamUnavailableError("log store",
			fmt.Sprintf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(payload))))
	}

	var parsed msearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, errors.NewUpstreamUnavailableError("log store", "malformed response").WithCause(err)
	}
	if len(parsed.Responses) != len(specs) {
		return nil, errors.NewUpstreamUnavailableError("log store",
			fmt.Sprintf("expected %d responses, got %d", len(specs), len(parsed.Responses)))
	}

	results := make([][]logs.Record, len(parsed.Responses))
	total := 0
	for i, sub := range parsed.Responses {
		if sub.Error != nil {
			return nil, errors.NewUpstreamUnavailableError("log store",
				fmt.Sprintf("sub-query %d failed: %s: %s", i, sub.Error.Type, sub.Error.Reason))
		}
		records := make([]logs.Record, 0, len(sub.Hits.Hits))
		for _, hit := range sub.Hits.Hits {
			records = append(records, logs.Record(hit.Source))
		}
		results[i] = records
		total += len(records)
	}

	c.logger.InfoContext(ctx, "msearch executed",
		slog.Int("queries", len(specs)),
		slog.Int("documents", total),
		slog.Int64("elapsed_ms", time.Since(start).Milliseconds()),
	)

	return results, nil
}
