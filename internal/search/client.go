// Package search queries the web search API used to corroborate claims.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/time/rate"

	"yuvai/internal/config"
	"yuvai/internal/metrics"
)

// Errors returned by Search. None of them are retried.
var (
	ErrUnavailable = errors.New("search service unreachable")
	ErrBadStatus   = errors.New("search service returned an error status")
	ErrMalformed   = errors.New("search service returned a malformed response")
)

// DefaultResultCount is the number of organic results requested per query.
const DefaultResultCount = 10

// DefaultTimeout bounds a search call when no positive timeout is configured.
const DefaultTimeout = 10 * time.Second

// Query is one outbound search request.
type Query struct {
	Q       string
	Region  string // gl
	Lang    string // hl
	Recency string // tbs, e.g. "qdr:d"; empty for no filter
}

// Result is one organic search result.
type Result struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	Link    string `json:"link"`
	Date    string `json:"date,omitempty"` // format varies by provider
}

// Searcher is implemented by Client and by test fakes.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Client posts queries to a Serper-compatible search API.
type Client struct {
	endpoint string
	apiKey   string
	client   *http.Client
	limiter  *rate.Limiter
	policy   *bluemonday.Policy
}

// NewClient creates a search client from configuration.
func NewClient(cfg *config.Config) *Client {
	limit := rate.Inf
	if cfg.SearchRatePerSec > 0 {
		limit = rate.Limit(cfg.SearchRatePerSec)
	}
	timeout := cfg.SearchTimeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	burst := int(cfg.SearchRatePerSec)
	if burst < 1 {
		burst = 1
	}

	return &Client{
		endpoint: cfg.SearchAPIURL,
		apiKey:   cfg.SearchAPIKey,
		client: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(limit, burst),
		policy:  bluemonday.StrictPolicy(),
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl,omitempty"`
	HL  string `json:"hl,omitempty"`
	Num int    `json:"num"`
	TBS string `json:"tbs,omitempty"`
}

type searchResponse struct {
	Organic []Result `json:"organic"`
}

// Search issues a single POST and returns the organic results.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	start := time.Now()
	results, outcome, err := c.do(ctx, q)
	metrics.ObserveSearch(outcome, time.Since(start))
	return results, err
}

func (c *Client) do(ctx context.Context, q Query) ([]Result, string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, metrics.SearchUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	body, err := json.Marshal(searchRequest{
		Q:   q.Q,
		GL:  q.Region,
		HL:  q.Lang,
		Num: DefaultResultCount,
		TBS: q.Recency,
	})
	if err != nil {
		return nil, metrics.SearchBadResponse, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, metrics.SearchUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("User-Agent", "YUVAi-ClaimChecker/1.0")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, metrics.SearchUnavailable, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, metrics.SearchBadResponse, fmt.Errorf("%w: HTTP %d", ErrBadStatus, resp.StatusCode)
	}

	var parsed searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 2<<20)).Decode(&parsed); err != nil {
		return nil, metrics.SearchBadResponse, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	results := make([]Result, 0, len(parsed.Organic))
	for _, r := range parsed.Organic {
		if r.Link == "" {
			continue
		}
		results = append(results, Result{
			Title:   c.plain(r.Title),
			Snippet: c.plain(r.Snippet),
			Link:    r.Link,
			Date:    strings.TrimSpace(r.Date),
		})
	}

	if len(results) == 0 {
		return results, metrics.SearchEmpty, nil
	}
	return results, metrics.SearchOK, nil
}

// plain strips any markup the provider left in a title or snippet.
func (c *Client) plain(s string) string {
	return strings.TrimSpace(html.UnescapeString(c.policy.Sanitize(s)))
}
