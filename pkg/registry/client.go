// Package registry provides a cached HTTP client for package registry APIs.
//
// The client layers three concerns over net/http: JSON decoding, response
// caching through a pluggable [cache.Cache] backend, and retry with
// exponential backoff for transient failures (connection errors and 5xx
// responses). 404 responses map to [cache.ErrNotFound] so callers can
// distinguish a missing package from a network problem.
package registry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/matzehuels/depscope/pkg/cache"
)

const httpTimeout = 10 * time.Second

// Client performs cached, retried JSON GET requests against a registry.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	ttl     time.Duration
	prefix  string
	headers map[string]string
}

// NewClient creates a Client backed by store. Cache keys are prefixed with
// prefix to keep different registries from colliding in a shared backend.
// Pass nil headers if no default headers are needed.
func NewClient(store cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	return &Client{
		http:    &http.Client{Timeout: httpTimeout},
		cache:   store,
		ttl:     ttl,
		prefix:  prefix,
		headers: headers,
	}
}

// SetHTTPClient replaces the underlying HTTP client. Used by tests to
// point the client at an httptest server.
func (c *Client) SetHTTPClient(h *http.Client) { c.http = h }

// GetCached fetches url with caching: a fresh cache entry short-circuits
// the request entirely, and successful responses are stored for the
// client's TTL. The response body is JSON-decoded into v.
func (c *Client) GetCached(ctx context.Context, url string, v any) error {
	key := c.prefix + url
	if data, hit, _ := c.cache.Get(ctx, key); hit {
		return json.Unmarshal(data, v)
	}

	var body []byte
	err := cache.RetryWithBackoff(ctx, func() error {
		data, err := c.fetch(ctx, url)
		if err != nil {
			return err
		}
		body = data
		return nil
	})
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	_ = c.cache.Set(ctx, key, body, c.ttl)
	return nil
}

// Get performs an uncached GET request, JSON-decoding the response into v.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	data, err := c.fetch(ctx, url)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, cache.Retryable(fmt.Errorf("%w: %v", cache.ErrNetwork, err))
	}
	defer resp.Body.Close()

	if err := checkStatus(resp.StatusCode); err != nil {
		return nil, err
	}
	return io.ReadAll(resp.Body)
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return cache.ErrNotFound
	case code >= 500:
		return cache.Retryable(fmt.Errorf("%w: status %d", cache.ErrNetwork, code))
	default:
		return fmt.Errorf("%w: status %d", cache.ErrNetwork, code)
	}
}
