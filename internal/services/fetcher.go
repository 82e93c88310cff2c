// HTTP fetcher for upstream artist pages
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/desertthunder/ymscrape/internal/shared"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "ymscrape"
	defaultMaxBody   = 16 << 20
)

// FetchError reports a failed fetch of URL. StatusCode is zero when no response was received.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Is reports FetchError as [shared.ErrFetchFailed].
func (e *FetchError) Is(target error) bool {
	return target == shared.ErrFetchFailed
}

// Timeout reports whether the fetch failed because its deadline expired.
func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, shared.ErrTimeout)
}

// HTTPFetcher implements [Fetcher] over [http.Client].
type HTTPFetcher struct {
	httpClient *http.Client
	userAgent  string
	timeout    time.Duration
	maxBody    int64
	limiter    *rate.Limiter
}

// FetcherOpts configures an [HTTPFetcher].
type FetcherOpts struct {
	Client            *http.Client  // defaults to http.DefaultClient
	UserAgent         string        // defaults to "ymscrape"
	Timeout           time.Duration // per-request deadline, defaults to 30s
	RequestsPerSecond float64       // zero disables rate limiting
	MaxBodyBytes      int64         // larger bodies fail the fetch, defaults to 16 MiB
}

// NewHTTPFetcher creates a fetcher with the given options.
func NewHTTPFetcher(opts FetcherOpts) *HTTPFetcher {
	if opts.Client == nil {
		opts.Client = http.DefaultClient
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBody
	}

	f := &HTTPFetcher{
		httpClient: opts.Client,
		userAgent:  opts.UserAgent,
		timeout:    opts.Timeout,
		maxBody:    opts.MaxBodyBytes,
	}
	if opts.RequestsPerSecond > 0 {
		f.limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	return f
}

// Fetch performs a GET to url and returns the body when the status is 2xx.
func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{URL: url, Err: classify(err)}
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &FetchError{URL: url, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{URL: url, Err: classify(err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("HTTP %d", resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBody+1))
	if err != nil {
		return nil, &FetchError{URL: url, StatusCode: resp.StatusCode, Err: classify(err)}
	}
	if int64(len(body)) > f.maxBody {
		return nil, &FetchError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("response body exceeds %d bytes", f.maxBody),
		}
	}

	return body, nil
}

// classify wraps deadline failures with [shared.ErrTimeout].
func classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return fmt.Errorf("%w: %v", shared.ErrTimeout, err)
	}
	return err
}
