// Package upstream fetches raw documents from the third party data services,
// caching successful bodies by URL.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spencer-p/winddash/pkg/cache"
	"github.com/spencer-p/winddash/pkg/metrics"
)

const maxBody = 8 << 20

var (
	ErrNotReady  = errors.New("provider is not ready")
	ErrNoContent = errors.New("no content")
)

// StatusError is returned for a non 2xx upstream response. Body holds the
// start of the response so callers can extract a reason.
type StatusError struct {
	Source string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s responded %d %s", e.Source, e.Status, http.StatusText(e.Status))
}

// HTTPProvider performs cached GET requests on behalf of one upstream.
type HTTPProvider struct {
	Source string

	client *http.Client
	cache  *cache.Timed[[]byte]
	logger *slog.Logger
}

// NewHTTPProvider creates a provider. A zero ttl disables caching.
func NewHTTPProvider(source string, client *http.Client, ttl time.Duration, logger *slog.Logger) *HTTPProvider {
	p := &HTTPProvider{
		Source: source,
		client: client,
		logger: logger,
	}
	if ttl > 0 {
		p.cache = cache.NewTimed[[]byte](ttl)
	}
	return p
}

func (p *HTTPProvider) IsReady() bool {
	return p != nil && p.client != nil && p.logger != nil
}

// Get returns the body at url, from cache when fresh.
func (p *HTTPProvider) Get(ctx context.Context, url string) ([]byte, error) {
	if !p.IsReady() {
		return nil, ErrNotReady
	}

	if p.cache != nil {
		if body, ok := p.cache.Get(url); ok {
			metrics.ObserveUpstream(p.Source, metrics.OutcomeCached)
			return body, nil
		}
	}

	body, err := p.fetch(ctx, url)
	if err != nil {
		metrics.ObserveUpstream(p.Source, metrics.OutcomeError)
		p.logger.Error("Upstream fetch failed", "source", p.Source, "url", url, "error", err)
		return nil, err
	}
	metrics.ObserveUpstream(p.Source, metrics.OutcomeOK)
	p.logger.Info("Upstream content retrieved", "source", p.Source, "url", url, "length", len(body))

	if p.cache != nil {
		p.cache.Set(url, body)
	}
	return body, nil
}

func (p *HTTPProvider) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", p.Source, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.Source, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			p.logger.Error("Failed to close response body", "url", url, "error", err)
		}
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("%s: reading body: %w", p.Source, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Source: p.Source, Status: resp.StatusCode, Body: body}
	}
	if len(body) == 0 {
		return nil, fmt.Errorf("%s: %w", p.Source, ErrNoContent)
	}
	return body, nil
}
