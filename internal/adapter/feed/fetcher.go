// Package feed normalizes external OSINT feed payloads into canonical
// indicator and vulnerability records and orchestrates concurrent
// fetch-and-normalize across sources.
package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/sony/gobreaker"
)

const fetchUserAgent = "ThreatLens/1.0 (Security Research)"

// HTTPFetcher retrieves raw feed payloads. Each host gets its own
// circuit breaker so a repeatedly failing source fails fast without
// delaying the others. Failed fetches are never retried; the caller
// records them as per-source errors.
type HTTPFetcher struct {
	client      *http.Client
	maxFailures uint32
	openTimeout time.Duration

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker
}

func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPFetcher{
		client:      client,
		maxFailures: 3,
		openTimeout: 60 * time.Second,
		breakers:    make(map[string]*gobreaker.CircuitBreaker),
	}
}

func (f *HTTPFetcher) breakerFor(host string) *gobreaker.CircuitBreaker {
	f.mu.Lock()
	defer f.mu.Unlock()

	if cb, ok := f.breakers[host]; ok {
		return cb
	}
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        host,
		MaxRequests: 1,
		Timeout:     f.openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= f.maxFailures
		},
	})
	f.breakers[host] = cb
	return cb
}

// Fetch downloads one payload. Context carries the per-fetch timeout.
func (f *HTTPFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid feed url %q: %w", rawURL, err)
	}

	cb := f.breakerFor(parsed.Host)
	result, err := cb.Execute(func() (interface{}, error) {
		return f.doFetch(ctx, rawURL)
	})
	if err != nil {
		if err == gobreaker.ErrOpenState {
			return nil, fmt.Errorf("source %s is failing, circuit open: %w", parsed.Host, err)
		}
		return nil, err
	}
	return result.([]byte), nil
}

func (f *HTTPFetcher) doFetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", fetchUserAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read body from %s: %w", rawURL, err)
	}
	return body, nil
}
