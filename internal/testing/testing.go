// package testing contains shared testing utilities
package testing

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/shared"
)

// MockFetcher is a test double for [services.Fetcher] serving canned bodies by URL.
type MockFetcher struct {
	mu     sync.Mutex
	pages  map[string][]byte
	errs   map[string]error
	called []string
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{pages: map[string][]byte{}, errs: map[string]error{}}
}

// Page registers body for url.
func (m *MockFetcher) Page(url, body string) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[url] = []byte(body)
	return m
}

// Fail registers err for url.
func (m *MockFetcher) Fail(url string, err error) *MockFetcher {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[url] = err
	return m
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.called = append(m.called, url)

	if err := m.errs[url]; err != nil {
		return nil, err
	}
	body, ok := m.pages[url]
	if !ok {
		return nil, fmt.Errorf("%w: no page registered for %s", shared.ErrFetchFailed, url)
	}
	return body, nil
}

// Calls returns the URLs fetched so far.
func (m *MockFetcher) Calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.called...)
}

type trackKey struct {
	name     string
	artistID int64
}

// MockPersistence is an in-memory [models.Persistence] with upsert semantics on natural keys.
type MockPersistence struct {
	mu          sync.Mutex
	artists     map[string]*models.Artist
	tracks      map[trackKey]*models.Track
	nextID      int64
	ArtistCalls int
	TrackCalls  int
	FailOn      string // "artist" or "track" makes that upsert fail
}

func NewMockPersistence() *MockPersistence {
	return &MockPersistence{artists: map[string]*models.Artist{}, tracks: map[trackKey]*models.Track{}}
}

func (m *MockPersistence) UpsertArtist(ctx context.Context, artist *models.Artist) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ArtistCalls++

	if m.FailOn == "artist" {
		return errors.New("artist upsert failed")
	}
	if err := artist.Validate(); err != nil {
		return err
	}

	if existing, ok := m.artists[artist.Name]; ok {
		artist.ID = existing.ID
	} else {
		m.nextID++
		artist.ID = m.nextID
	}
	stored := *artist
	m.artists[artist.Name] = &stored
	return nil
}

func (m *MockPersistence) UpsertTrack(ctx context.Context, track *models.Track) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TrackCalls++

	if m.FailOn == "track" {
		return errors.New("track upsert failed")
	}
	if err := track.Validate(); err != nil {
		return err
	}

	key := trackKey{track.Name, track.ArtistID}
	if existing, ok := m.tracks[key]; ok {
		track.ID = existing.ID
	} else {
		m.nextID++
		track.ID = m.nextID
	}
	stored := *track
	m.tracks[key] = &stored
	return nil
}

// Artist returns the stored artist with name, or nil.
func (m *MockPersistence) Artist(name string) *models.Artist {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.artists[name]
}

// Counts returns the number of distinct stored artists and tracks.
func (m *MockPersistence) Counts() (artists, tracks int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.artists), len(m.tracks)
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// ArtistPage renders a minimal tracks page in the upstream markup.
func ArtistPage(name, subscribers, listeners string, titles, durations []string) string {
	page := `<html><body>`
	if name != "" {
		page += `<h1 class="page-artist__title typo-h1">` + name + `</h1>`
	}
	if subscribers != "" {
		page += `<span class="d-like d-like_theme-count">` + subscribers + `</span>`
	}
	if listeners != "" {
		page += `<div class="page-artist__summary typo"><span>` + listeners + `</span></div>`
	}
	for _, t := range titles {
		page += `<div class="d-track"><a class="d-track__title deco-link" href="#">` + t + `</a></div>`
	}
	for _, d := range durations {
		page += `<div class="d-track__end-column">` + d + `</div>`
	}
	return page + `</body></html>`
}

// AlbumsPage renders a minimal albums page with n album titles.
func AlbumsPage(n int) string {
	page := `<html><body>`
	for i := 0; i < n; i++ {
		page += fmt.Sprintf(`<div class="album"><div class="album__title deco-typo">Album %d</div></div>`, i+1)
	}
	return page + `</body></html>`
}
