package brasilio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/couchcryptid/covid-br-dashboard/internal/domain"
	"github.com/couchcryptid/covid-br-dashboard/internal/observability"
)

// DefaultBaseURL is the Brasil.io COVID-19 case dataset endpoint.
const DefaultBaseURL = "https://brasil.io/api/dataset/covid19/caso/data"

const userAgent = "covid-br-dashboard/1.0"

// maxErrorBody caps how much of a non-200 body is kept in the error.
const maxErrorBody = 512

// Client fetches the latest per-state records from the Brasil.io API.
// It implements pipeline.Fetcher.
type Client struct {
	token      string
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a Brasil.io client. An empty token sends no Authorization header.
func NewClient(baseURL, token string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		token: token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		metrics: metrics,
		logger:  logger,
	}
}

// response is the Brasil.io paginated envelope. Only results is used.
type response struct {
	Results *[]domain.RawRecord `json:"results"`
	Count   int                 `json:"count"`
	Next    *string             `json:"next"`
}

// FetchLatest issues one GET for the most recent state-level records.
// Every failure is a *domain.FetchError; nothing is retried.
func (c *Client) FetchLatest(ctx context.Context) ([]domain.RawRecord, error) {
	start := time.Now()
	records, err := c.fetch(ctx)
	c.metrics.FetchDuration.Observe(time.Since(start).Seconds())

	outcome := "success"
	var fetchErr *domain.FetchError
	if errors.As(err, &fetchErr) {
		outcome = fetchErr.Kind.String()
	}
	c.metrics.FetchRequests.WithLabelValues(outcome).Inc()

	if err != nil {
		c.logger.Warn("brasil.io fetch failed", "error", err, "outcome", outcome)
		return nil, err
	}
	c.logger.Debug("brasil.io fetch complete", "records", len(records), "duration", time.Since(start))
	return records, nil
}

func (c *Client) fetch(ctx context.Context) ([]domain.RawRecord, error) {
	params := url.Values{
		"is_last":    {"True"},
		"place_type": {"state"},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.NetworkError, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.token != "" {
		req.Header.Set("Authorization", "Token "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.NetworkError, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		fetchErr := &domain.FetchError{Kind: domain.HTTPStatusError, StatusCode: resp.StatusCode}
		if len(body) > 0 {
			fetchErr.Err = errors.New(string(body))
		}
		return nil, fetchErr
	}

	var body response
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		// A body cut off by a timeout or reset is a transport failure, not bad JSON.
		var netErr net.Error
		if errors.As(err, &netErr) || ctx.Err() != nil {
			return nil, &domain.FetchError{Kind: domain.NetworkError, Err: fmt.Errorf("read response: %w", err)}
		}
		return nil, &domain.FetchError{Kind: domain.ParseError, Err: fmt.Errorf("decode response: %w", err)}
	}
	if body.Next != nil {
		c.logger.Warn("brasil.io response is paginated, only the first page is used", "count", body.Count)
	}
	return body.results()
}

func (r response) results() ([]domain.RawRecord, error) {
	if r.Results == nil {
		return nil, &domain.FetchError{Kind: domain.ParseError, Err: errors.New(`missing "results" key`)}
	}
	return *r.Results, nil
}

// ReadResults decodes a saved Brasil.io response body, such as one written
// with curl. Failures are *domain.FetchError with Kind ParseError.
func ReadResults(r io.Reader) ([]domain.RawRecord, error) {
	var body response
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return nil, &domain.FetchError{Kind: domain.ParseError, Err: fmt.Errorf("decode response: %w", err)}
	}
	return body.results()
}

// FileFetcher serves records from a saved response file. It implements
// pipeline.Fetcher and re-reads the file on every call.
type FileFetcher struct {
	Path string
}

func (f FileFetcher) FetchLatest(_ context.Context) ([]domain.RawRecord, error) {
	file, err := os.Open(f.Path)
	if err != nil {
		return nil, &domain.FetchError{Kind: domain.NetworkError, Err: err}
	}
	defer file.Close()
	return ReadResults(file)
}
