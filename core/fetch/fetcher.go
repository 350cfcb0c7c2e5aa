// Package fetch implements the Fetcher interface.
// It performs one HTTP GET per call and classifies the outcome; retrying is
// left to the caller.
package fetch

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"dario.cat/mergo"
	"github.com/gaurav-prasanna/senseiharvest/core"
	"github.com/go-resty/resty/v2"
)

const (
	DefaultTimeout   = 30 * time.Second
	DefaultUserAgent = "senseiharvest/1.0 (https://github.com/gaurav-prasanna/senseiharvest)"
)

// HTTPFetcher fetches pages and media via resty.
type HTTPFetcher struct {
	client *resty.Client
}

// Options configures an HTTPFetcher. Zero values use the defaults.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Transport replaces the underlying round tripper, mostly for tests.
	Transport http.RoundTripper
}

// New creates an HTTPFetcher with a per-request timeout.
func New(opts Options) *HTTPFetcher {
	if opts.Timeout < 0 {
		opts.Timeout = 0
	}
	// Only zero fields are filled; a type mismatch is impossible here.
	_ = mergo.Merge(&opts, Options{Timeout: DefaultTimeout, UserAgent: DefaultUserAgent})

	client := resty.New()
	client.SetTimeout(opts.Timeout)
	client.SetHeader("User-Agent", opts.UserAgent)
	client.SetHeader("Accept", "text/html,application/xhtml+xml,image/*;q=0.8,*/*;q=0.5")
	client.SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))
	if opts.Transport != nil {
		client.SetTransport(opts.Transport)
	}

	return &HTTPFetcher{client: client}
}

// Fetch retrieves url. 2xx is Success, 4xx NotFound, and everything else
// (network, DNS, timeout, 5xx) Transient.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) core.FetchResult {
	res, err := f.client.R().
		SetContext(ctx).
		Get(url)
	if err != nil {
		slog.DebugContext(ctx, "request failed", "url", url, "err", err)
		return core.FetchResult{
			URL:    url,
			Status: core.FetchTransient,
			Err:    fmt.Errorf("fetching %s: %w", url, err),
		}
	}

	code := res.StatusCode()
	slog.DebugContext(ctx, "request done", "url", url, "status", code, "bytes", len(res.Body()))

	switch {
	case res.IsSuccess():
		return core.FetchResult{
			URL:        url,
			Status:     core.FetchSuccess,
			StatusCode: code,
			Body:       res.Body(),
		}
	case code >= 400 && code < 500:
		return core.FetchResult{URL: url, Status: core.FetchNotFound, StatusCode: code}
	default:
		return core.FetchResult{
			URL:        url,
			Status:     core.FetchTransient,
			StatusCode: code,
			Err:        fmt.Errorf("unexpected status %d for %s", code, url),
		}
	}
}
