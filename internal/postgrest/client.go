// Package postgrest is a minimal client for PostgREST-style query endpoints.
// It covers only what the directory layer needs: offset/limit range reads
// with equality and ilike filters, ordered for deterministic paging.
package postgrest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopfinder/shopfinder-server/internal/ratelimit"
)

const (
	// Outbound pacing: generous for a paged bulk read, still bounded.
	defaultRPS   = 10.0
	defaultBurst = 5

	defaultTimeout = 30 * time.Second
)

// Sentinel errors mapped from upstream status codes.
var (
	ErrBadRequest   = errors.New("postgrest: bad request")
	ErrUnauthorized = errors.New("postgrest: unauthorized")
	ErrNotFound     = errors.New("postgrest: not found")
	ErrRateLimited  = errors.New("postgrest: rate limited")
	ErrServer       = errors.New("postgrest: server error")
)

// Client is a rate-limited PostgREST client.
type Client struct {
	http    *http.Client
	baseURL string
	apiKey  string
	limiter *ratelimit.KeyedRateLimiter
	logger  *slog.Logger
}

// New creates a new PostgREST client for the given base endpoint URL.
func New(baseURL, apiKey string, timeout time.Duration, logger *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		http: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		limiter: ratelimit.New(defaultRPS, defaultBurst),
		logger:  logger,
	}
}

// Query describes one range-bounded read.
type Query struct {
	Select  string   // Column projection (default "*")
	Order   string   // e.g. "name.asc"
	Offset  int
	Limit   int      // 0 means no limit parameter
	Filters []Filter // AND-combined
}

// Filter is a single column predicate.
type Filter struct {
	Column string
	Op     string // "eq", "ilike", ...
	Value  string
}

// Eq builds an equality filter.
func Eq(column, value string) Filter {
	return Filter{Column: column, Op: "eq", Value: value}
}

// ILike builds a case-insensitive pattern filter. PostgREST uses * as the
// wildcard in URL syntax.
func ILike(column, pattern string) Filter {
	return Filter{Column: column, Op: "ilike", Value: pattern}
}

// Select executes a range read against the given table and returns the raw
// JSON array body. Callers own decoding; rows arrive exactly as upstream
// stores them.
func (c *Client) Select(ctx context.Context, table string, q Query) ([]byte, error) {
	if err := c.limiter.Wait(ctx, c.baseURL); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	query := url.Values{}
	sel := q.Select
	if sel == "" {
		sel = "*"
	}
	query.Set("select", sel)
	if q.Order != "" {
		query.Set("order", q.Order)
	}
	if q.Offset > 0 {
		query.Set("offset", strconv.Itoa(q.Offset))
	}
	if q.Limit > 0 {
		query.Set("limit", strconv.Itoa(q.Limit))
	}
	for _, f := range q.Filters {
		query.Set(f.Column, f.Op+"."+f.Value)
	}

	u := c.baseURL + "/" + url.PathEscape(table) + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("apikey", c.apiKey)
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	c.logger.Debug("postgrest request",
		"table", table,
		"offset", q.Offset,
		"limit", q.Limit,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusPartialContent:
		return body, nil
	case resp.StatusCode == http.StatusBadRequest:
		return nil, ErrBadRequest
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 500:
		return nil, ErrServer
	default:
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}
}
