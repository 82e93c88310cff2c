package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/ymscrape/internal/shared"
	tu "github.com/desertthunder/ymscrape/internal/testing"
)

func TestHTTPFetcher(t *testing.T) {
	t.Run("New", func(t *testing.T) {
		t.Run("With Defaults", func(t *testing.T) {
			f := NewHTTPFetcher(FetcherOpts{})

			if f.httpClient != http.DefaultClient {
				t.Error("expected http.DefaultClient to be used")
			}
			if f.timeout != defaultTimeout {
				t.Errorf("expected default timeout %v, got %v", defaultTimeout, f.timeout)
			}
			if f.userAgent != defaultUserAgent {
				t.Errorf("expected default user agent, got %s", f.userAgent)
			}
			if f.limiter != nil {
				t.Error("expected no limiter without a rate")
			}
			if f.maxBody != defaultMaxBody {
				t.Errorf("expected default body limit %d, got %d", defaultMaxBody, f.maxBody)
			}
		})

		t.Run("With Custom Options", func(t *testing.T) {
			client := &http.Client{}
			f := NewHTTPFetcher(FetcherOpts{Client: client, UserAgent: "test-agent", Timeout: time.Second, RequestsPerSecond: 2})

			if f.httpClient != client {
				t.Error("expected custom client to be used")
			}
			if f.timeout != time.Second {
				t.Errorf("expected 1s timeout, got %v", f.timeout)
			}
			if f.limiter == nil {
				t.Error("expected limiter to be configured")
			}
		})
	})

	t.Run("Fetch", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					t.Errorf("expected GET method, got %s", r.Method)
				}
				if r.URL.Path != "/artist/123/tracks" {
					t.Errorf("expected path '/artist/123/tracks', got %s", r.URL.Path)
				}
				if got := r.Header.Get("User-Agent"); got != "test-agent" {
					t.Errorf("expected user agent 'test-agent', got %s", got)
				}
				w.Write([]byte("<html></html>"))
			}))
			defer server.Close()

			f := NewHTTPFetcher(FetcherOpts{UserAgent: "test-agent"})
			body, err := f.Fetch(context.Background(), server.URL+"/artist/123/tracks")

			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(body) != "<html></html>" {
				t.Errorf("unexpected body %q", string(body))
			}
		})

		t.Run("Non-Success Status", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
			}))
			defer server.Close()

			url := server.URL + "/artist/0/tracks"
			_, err := NewHTTPFetcher(FetcherOpts{}).Fetch(context.Background(), url)

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *FetchError, got %T: %v", err, err)
			}
			if fetchErr.StatusCode != http.StatusNotFound {
				t.Errorf("expected status 404, got %d", fetchErr.StatusCode)
			}
			if fetchErr.URL != url {
				t.Errorf("expected URL %s, got %s", url, fetchErr.URL)
			}
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Error("expected error to match ErrFetchFailed")
			}
			if !strings.Contains(err.Error(), "HTTP 404") {
				t.Errorf("expected status in message, got %v", err)
			}
		})

		t.Run("Body Too Large", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html><body>too long</body></html>"))
			}))
			defer server.Close()

			_, err := NewHTTPFetcher(FetcherOpts{MaxBodyBytes: 8}).Fetch(context.Background(), server.URL)

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *FetchError, got %T: %v", err, err)
			}
			if fetchErr.StatusCode != http.StatusOK {
				t.Errorf("expected status 200 on the error, got %d", fetchErr.StatusCode)
			}
			if !strings.Contains(err.Error(), "exceeds 8 bytes") {
				t.Errorf("expected size limit in message, got %v", err)
			}
		})

		t.Run("Body At Limit", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("12345678"))
			}))
			defer server.Close()

			body, err := NewHTTPFetcher(FetcherOpts{MaxBodyBytes: 8}).Fetch(context.Background(), server.URL)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(body) != "12345678" {
				t.Errorf("unexpected body %q", string(body))
			}
		})

		t.Run("Transport Failure", func(t *testing.T) {
			client := &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

			_, err := NewHTTPFetcher(FetcherOpts{Client: client}).Fetch(context.Background(), "http://example.com")

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *FetchError, got %v", err)
			}
			if fetchErr.StatusCode != 0 {
				t.Errorf("expected no status code, got %d", fetchErr.StatusCode)
			}
			if fetchErr.Timeout() {
				t.Error("transport failure should not be a timeout")
			}
			if !strings.Contains(err.Error(), "connection refused") {
				t.Errorf("expected cause in message, got %v", err)
			}
		})

		t.Run("Body Read Failure", func(t *testing.T) {
			client := &http.Client{
				Transport: tu.NewMockRoundTripper(&http.Response{
					StatusCode: http.StatusOK,
					Body:       &tu.FCloser{},
					Header:     http.Header{},
				}, nil),
			}

			_, err := NewHTTPFetcher(FetcherOpts{Client: client}).Fetch(context.Background(), "http://example.com")
			if !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected fetch failure, got %v", err)
			}
		})

		t.Run("Invalid URL", func(t *testing.T) {
			_, err := NewHTTPFetcher(FetcherOpts{}).Fetch(context.Background(), "http://example.com/\x00")
			if err == nil || !strings.Contains(err.Error(), "failed to create request") {
				t.Errorf("expected 'failed to create request' error, got %v", err)
			}
		})

		t.Run("Timeout", func(t *testing.T) {
			done := make(chan struct{})
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-done:
				}
			}))
			defer server.Close()
			defer close(done)

			f := NewHTTPFetcher(FetcherOpts{Timeout: 50 * time.Millisecond})
			_, err := f.Fetch(context.Background(), server.URL)

			var fetchErr *FetchError
			if !errors.As(err, &fetchErr) {
				t.Fatalf("expected *FetchError, got %v", err)
			}
			if !fetchErr.Timeout() || !errors.Is(err, shared.ErrTimeout) {
				t.Errorf("expected timeout error, got %v", err)
			}
		})

		t.Run("Canceled Context While Rate Limited", func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			defer server.Close()

			f := NewHTTPFetcher(FetcherOpts{RequestsPerSecond: 0.001})
			if _, err := f.Fetch(context.Background(), server.URL); err != nil {
				t.Fatalf("first fetch should use the burst token, got %v", err)
			}

			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			if _, err := f.Fetch(ctx, server.URL); !errors.Is(err, shared.ErrFetchFailed) {
				t.Errorf("expected fetch failure for canceled wait, got %v", err)
			}
		})
	})
}
