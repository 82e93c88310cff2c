package tasks

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/repositories"
	"github.com/desertthunder/ymscrape/internal/services"
	"github.com/desertthunder/ymscrape/internal/shared"
	tu "github.com/desertthunder/ymscrape/internal/testing"
)

const testBaseURL = "https://music.example.com"

func tracksURL(id string) string { return testBaseURL + "/artist/" + id + "/tracks" }
func albumsURL(id string) string { return testBaseURL + "/artist/" + id + "/albums" }

// artistFetcher serves artist X with three tracks and four albums under id.
func artistFetcher(id string) *tu.MockFetcher {
	return tu.NewMockFetcher().
		Page(tracksURL(id), tu.ArtistPage("X", "100", "5000", []string{"A", "B", "C"}, []string{"1:00", "2:30", "0:45"})).
		Page(albumsURL(id), tu.AlbumsPage(4))
}

func newTestEngine(t *testing.T, f services.Fetcher, p models.Persistence) *ArtistEngine {
	t.Helper()
	engine, err := NewArtistEngine(EngineOpts{
		Fetcher: f,
		Store:   p,
		BaseURL: testBaseURL + "/",
		Logger:  shared.NewLogger(io.Discard),
	})
	if err != nil {
		t.Fatalf("failed to create engine: %v", err)
	}
	return engine
}

type failingTransactor struct {
	*tu.MockPersistence
	committed bool
}

// WithinTx stages writes in a scratch store and only applies them when fn succeeds.
func (f *failingTransactor) WithinTx(ctx context.Context, fn func(models.Persistence) error) error {
	scratch := tu.NewMockPersistence()
	scratch.FailOn = f.FailOn
	if err := fn(scratch); err != nil {
		return err
	}
	f.committed = true
	return fn(f.MockPersistence)
}

func TestNewArtistEngine(t *testing.T) {
	tests := []struct {
		name string
		opts EngineOpts
	}{
		{"missing fetcher", EngineOpts{Store: tu.NewMockPersistence(), BaseURL: testBaseURL}},
		{"missing store", EngineOpts{Fetcher: tu.NewMockFetcher(), BaseURL: testBaseURL}},
		{"missing base url", EngineOpts{Fetcher: tu.NewMockFetcher(), Store: tu.NewMockPersistence()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewArtistEngine(tt.opts); !errors.Is(err, shared.ErrMissingConfig) {
				t.Errorf("expected ErrMissingConfig, got %v", err)
			}
		})
	}
}

func TestArtistEngine_ParseArtist(t *testing.T) {
	ctx := context.Background()

	t.Run("Full Run", func(t *testing.T) {
		fetcher := artistFetcher("123")
		store := tu.NewMockPersistence()
		engine := newTestEngine(t, fetcher, store)
		progress := make(chan ProgressUpdate, 16)

		res, err := engine.ParseArtist(ctx, "123", progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		want := models.ArtistSummary{Artist: "X", Subscribers: 100, MonthlyListeners: 5000, AlbumsCount: 4, Tracks: 3}
		if res.Summary != want {
			t.Errorf("expected summary %+v, got %+v", want, res.Summary)
		}
		if res.RunID == "" {
			t.Error("expected run ID to be set")
		}
		if res.Mismatch {
			t.Error("expected no mismatch")
		}

		artists, tracks := store.Counts()
		if artists != 1 || tracks != 3 {
			t.Errorf("expected 1 artist and 3 tracks, got %d and %d", artists, tracks)
		}
		for _, tr := range res.Tracks {
			if tr.ArtistID != res.Artist.ID {
				t.Errorf("track %s references artist %d, want %d", tr.Name, tr.ArtistID, res.Artist.ID)
			}
		}
		if res.Tracks[1].Duration != 150 {
			t.Errorf("expected B to last 150s, got %d", res.Tracks[1].Duration)
		}

		if len(fetcher.Calls()) != 2 {
			t.Errorf("expected 2 fetches, got %v", fetcher.Calls())
		}

		close(progress)
		phases := map[Phase]bool{}
		for u := range progress {
			phases[u.Phase] = true
		}
		for _, p := range []Phase{FetchPages, ExtractFields, PersistRecords} {
			if !phases[p] {
				t.Errorf("expected a %s progress update", p)
			}
		}
	})

	t.Run("Rerun Is Idempotent", func(t *testing.T) {
		store := tu.NewMockPersistence()
		engine := newTestEngine(t, artistFetcher("123"), store)

		first, err := engine.ParseArtist(ctx, "123", nil)
		if err != nil {
			t.Fatalf("first run failed: %v", err)
		}
		second, err := engine.ParseArtist(ctx, "123", nil)
		if err != nil {
			t.Fatalf("second run failed: %v", err)
		}

		if first.Summary != second.Summary {
			t.Errorf("expected identical summaries, got %+v and %+v", first.Summary, second.Summary)
		}
		if first.Artist.ID != second.Artist.ID {
			t.Errorf("expected artist ID to be stable, got %d and %d", first.Artist.ID, second.Artist.ID)
		}
		if artists, tracks := store.Counts(); artists != 1 || tracks != 3 {
			t.Errorf("expected 1 artist and 3 tracks after rerun, got %d and %d", artists, tracks)
		}
	})

	t.Run("Artist Not Found Writes Nothing", func(t *testing.T) {
		fetcher := tu.NewMockFetcher().
			Page(tracksURL("0"), tu.ArtistPage("", "100", "5000", []string{"A"}, []string{"1:00"})).
			Page(albumsURL("0"), tu.AlbumsPage(2))
		store := tu.NewMockPersistence()

		_, err := newTestEngine(t, fetcher, store).ParseArtist(ctx, "0", nil)
		if !errors.Is(err, shared.ErrArtistNotFound) {
			t.Fatalf("expected ErrArtistNotFound, got %v", err)
		}
		if !strings.HasPrefix(err.Error(), "error parsing artist: ") {
			t.Errorf("expected wrapped message, got %q", err.Error())
		}
		if store.ArtistCalls != 0 || store.TrackCalls != 0 {
			t.Errorf("expected no persistence calls, got %d artist and %d track", store.ArtistCalls, store.TrackCalls)
		}
	})

	t.Run("Fetch Failure", func(t *testing.T) {
		fetchErr := &services.FetchError{URL: tracksURL("123"), StatusCode: 503, Err: errors.New("HTTP 503")}
		fetcher := artistFetcher("123").Fail(tracksURL("123"), fetchErr)
		store := tu.NewMockPersistence()

		_, err := newTestEngine(t, fetcher, store).ParseArtist(ctx, "123", nil)
		if !errors.Is(err, shared.ErrFetchFailed) {
			t.Fatalf("expected ErrFetchFailed, got %v", err)
		}

		var target *services.FetchError
		if !errors.As(err, &target) || target.StatusCode != 503 {
			t.Errorf("expected FetchError with status 503, got %v", err)
		}
		if !strings.Contains(err.Error(), "failed to fetch tracks page") {
			t.Errorf("expected page context in message, got %q", err.Error())
		}
		if store.ArtistCalls != 0 {
			t.Error("expected no persistence after fetch failure")
		}
	})

	t.Run("Invalid Identifier", func(t *testing.T) {
		fetcher := tu.NewMockFetcher()
		for _, id := range []string{"../etc", "a b", "1?x=2"} {
			_, err := newTestEngine(t, fetcher, tu.NewMockPersistence()).ParseArtist(ctx, id, nil)
			if !errors.Is(err, shared.ErrInvalidArgument) {
				t.Errorf("%q: expected ErrInvalidArgument, got %v", id, err)
			}
		}
		if len(fetcher.Calls()) != 0 {
			t.Errorf("expected no fetches for invalid identifiers, got %v", fetcher.Calls())
		}
	})

	t.Run("Mismatched Durations", func(t *testing.T) {
		fetcher := tu.NewMockFetcher().
			Page(tracksURL("7"), tu.ArtistPage("Y", "1", "2", []string{"A", "B"}, []string{"0:10"})).
			Page(albumsURL("7"), tu.AlbumsPage(0))

		res, err := newTestEngine(t, fetcher, tu.NewMockPersistence()).ParseArtist(ctx, "7", nil)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !res.Mismatch {
			t.Error("expected mismatch to be reported")
		}
		if res.Tracks[1].Duration != 0 {
			t.Errorf("expected default duration 0, got %d", res.Tracks[1].Duration)
		}
	})

	t.Run("Track Failure Rolls Back Within Transaction", func(t *testing.T) {
		store := &failingTransactor{MockPersistence: tu.NewMockPersistence()}
		store.FailOn = "track"

		_, err := newTestEngine(t, artistFetcher("123"), store).ParseArtist(ctx, "123", nil)
		if err == nil {
			t.Fatal("expected error from failing track upsert")
		}
		if store.committed {
			t.Error("expected transaction not to commit")
		}
		if artists, _ := store.Counts(); artists != 0 {
			t.Errorf("expected no artist to be stored, got %d", artists)
		}
	})
}

func TestArtistEngine_ParseArtistSQLite(t *testing.T) {
	ctx := context.Background()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()
	if err := shared.RunMigrations(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	store := repositories.NewStore(db)
	engine := newTestEngine(t, artistFetcher("123"), store)

	for i := 0; i < 2; i++ {
		if _, err := engine.ParseArtist(ctx, "123", nil); err != nil {
			t.Fatalf("run %d failed: %v", i+1, err)
		}
	}

	artist, tracks, err := store.ArtistTracks(ctx, "X")
	if err != nil {
		t.Fatalf("failed to load artist: %v", err)
	}
	if artist.AlbumsCount != 4 || artist.Subscribers != 100 || artist.MonthlyListeners != 5000 {
		t.Errorf("unexpected stored artist %+v", artist)
	}
	if len(tracks) != 3 {
		t.Errorf("expected 3 stored tracks after two runs, got %d", len(tracks))
	}
}

func TestArtistEngine_UntitledTracksSQLite(t *testing.T) {
	ctx := context.Background()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	defer db.Close()
	if err := shared.RunMigrations(ctx, db); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	fetcher := tu.NewMockFetcher().
		Page(tracksURL("9"), tu.ArtistPage("Z", "1", "1", []string{" ", "Song B", ""}, []string{"1:00", "2:00", "3:00"})).
		Page(albumsURL("9"), tu.AlbumsPage(1))

	store := repositories.NewStore(db)
	res, err := newTestEngine(t, fetcher, store).ParseArtist(ctx, "9", nil)
	if err != nil {
		t.Fatalf("expected untitled tracks to be saved, got %v", err)
	}
	if res.Summary.Tracks != 3 || res.Untitled != 2 {
		t.Errorf("expected 3 tracks with 2 untitled, got %d and %d", res.Summary.Tracks, res.Untitled)
	}

	_, tracks, err := store.ArtistTracks(ctx, "Z")
	if err != nil {
		t.Fatalf("failed to load artist: %v", err)
	}
	if len(tracks) != 2 {
		t.Fatalf("expected untitled tracks to share one row, got %d rows", len(tracks))
	}

	byName := map[string]int64{}
	for _, tr := range tracks {
		byName[tr.Name] = tr.Duration
	}
	if byName[""] != 180 || byName["Song B"] != 120 {
		t.Errorf("unexpected stored tracks %+v", byName)
	}
}

func TestArtistEngine_BulkParse(t *testing.T) {
	ctx := context.Background()

	t.Run("Partial Failure", func(t *testing.T) {
		fetcher := artistFetcher("1").
			Page(tracksURL("2"), tu.ArtistPage("Z", "5", "6", []string{"Only"}, []string{"3:00"})).
			Page(albumsURL("2"), tu.AlbumsPage(1))
		store := tu.NewMockPersistence()
		engine := newTestEngine(t, fetcher, store)
		progress := make(chan ProgressUpdate, 8)

		res, err := engine.BulkParse(ctx, []string{"1", "2", "missing"}, BulkParseOpts{NumWorkers: 2, RateLimit: 100}, progress)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if res.Total != 3 || res.Successful != 2 || res.Failed != 1 {
			t.Errorf("expected 3 total, 2 successful, 1 failed, got %+v", res)
		}
		for _, r := range res.Results {
			if r.ArtistID == "missing" && r.Error == nil {
				t.Error("expected error for missing artist")
			}
		}
		if artists, tracks := store.Counts(); artists != 2 || tracks != 4 {
			t.Errorf("expected 2 artists and 4 tracks, got %d and %d", artists, tracks)
		}

		close(progress)
		count := 0
		for u := range progress {
			if u.Phase != BulkParseArtists {
				t.Errorf("unexpected phase %s", u.Phase)
			}
			count++
		}
		if count != 3 {
			t.Errorf("expected 3 progress updates, got %d", count)
		}
	})

	t.Run("Canceled Context", func(t *testing.T) {
		engine := newTestEngine(t, artistFetcher("1"), tu.NewMockPersistence())
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		res, err := engine.BulkParse(cctx, []string{"1", "1"}, BulkParseOpts{}, nil)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if res.Successful != 0 {
			t.Errorf("expected no successful parses, got %d", res.Successful)
		}
	})
}
