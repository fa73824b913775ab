package teztok

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"fxhashETL/internal/collect"
	"fxhashETL/internal/metrics"
)

// DefaultEndpoint is the public teztok GraphQL endpoint.
const DefaultEndpoint = "https://api.teztok.com/v1/graphql"

// Config holds transport settings for the teztok client.
type Config struct {
	Endpoint     string
	Timeout      time.Duration
	MaxRetries   int
	RetryBackoff time.Duration
}

// Client queries the teztok GraphQL API.
type Client struct {
	endpoint     string
	httpClient   *http.Client
	maxRetries   int
	retryBackoff time.Duration
	logger       *zap.Logger
}

type graphQLRequest struct {
	Query string `json:"query"`
}

type graphQLError struct {
	Message string `json:"message"`
}

type eventsResponse struct {
	Data struct {
		Events []json.RawMessage `json:"events"`
	} `json:"data"`
	Errors []graphQLError `json:"errors"`
}

// NewClient creates a teztok client. An empty endpoint selects DefaultEndpoint.
func NewClient(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		endpoint:     endpoint,
		httpClient:   &http.Client{Timeout: timeout},
		maxRetries:   cfg.MaxRetries,
		retryBackoff: cfg.RetryBackoff,
		logger:       logger,
	}
}

// ActivityOnDate returns one page of fxhash events for a calendar day. Records
// are returned undecoded so that one malformed event cannot void the page.
func (c *Client) ActivityOnDate(ctx context.Context, limit, offset int, date string) ([]json.RawMessage, error) {
	query, err := ActivityQuery(limit, offset, date)
	if err != nil {
		return nil, err
	}

	var events []json.RawMessage
	err = withRetry(ctx, c.maxRetries, c.retryBackoff, func(ctx context.Context, attempt int) error {
		var err error
		events, err = c.queryEvents(ctx, query)
		if err != nil {
			c.logger.Warn("teztok request failed",
				zap.Error(err),
				zap.String("date", date),
				zap.Int("offset", offset),
				zap.Int("attempt", attempt),
			)
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return events, nil
}

// ActivityFetcher binds date into a page fetcher for collect.Collect.
func (c *Client) ActivityFetcher(date string) collect.FetchFunc[json.RawMessage] {
	return func(ctx context.Context, limit, offset int) ([]json.RawMessage, error) {
		return c.ActivityOnDate(ctx, limit, offset, date)
	}
}

func (c *Client) queryEvents(ctx context.Context, query string) (events []json.RawMessage, err error) {
	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.Observe(time.Since(start).Seconds())
		result := "ok"
		if err != nil {
			result = "error"
		}
		metrics.UpstreamRequestsTotal.WithLabelValues(result).Inc()
	}()

	body, err := json.Marshal(graphQLRequest{Query: query})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post query: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		err := fmt.Errorf("teztok returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests {
			return nil, permanent(err)
		}
		return nil, err
	}

	var decoded eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(decoded.Errors) > 0 {
		messages := make([]string, 0, len(decoded.Errors))
		for _, e := range decoded.Errors {
			messages = append(messages, e.Message)
		}
		return nil, permanent(fmt.Errorf("teztok query error: %s", strings.Join(messages, "; ")))
	}

	if decoded.Data.Events == nil {
		return []json.RawMessage{}, nil
	}
	return decoded.Data.Events, nil
}
