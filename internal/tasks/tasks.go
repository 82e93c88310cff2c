// package tasks implements the scrape-and-store workflow for artist pages.
//
// The core abstraction is ArtistEngine, which fetches, extracts and persists a single artist or a batch of them.
// Operations emit progress updates via channels for non-blocking status reporting to CLI/server layers.
package tasks

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/services"
	"github.com/desertthunder/ymscrape/internal/shared"
)

var artistIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidateArtistID reports whether id can be used to build upstream URLs.
func ValidateArtistID(id string) error {
	if id == "" {
		return fmt.Errorf("%w: artist ID is required", shared.ErrMissingArgument)
	}
	if !artistIDPattern.MatchString(id) {
		return fmt.Errorf("%w: artist ID %q must contain only letters, digits, '-' or '_'", shared.ErrInvalidArgument, id)
	}
	return nil
}

// ParseResult contains everything produced by one successful scrape.
type ParseResult struct {
	RunID    string               // Correlates log lines of one run
	Summary  models.ArtistSummary // What callers report back
	Artist   *models.Artist       // Persisted artist with ID set
	Tracks   []*models.Track      // Persisted tracks with IDs set
	Mismatch bool                 // Title and duration counts differed
	Untitled int                  // Tracks saved with an empty name
}

// Engine defines the scrape operations exposed to the CLI and server.
type Engine interface {
	// ParseArtist scrapes the artist pages for id and upserts the artist and its tracks.
	ParseArtist(ctx context.Context, id string, progress chan<- ProgressUpdate) (*ParseResult, error)

	// BulkParse runs ParseArtist for every id through a rate-limited worker pool.
	BulkParse(ctx context.Context, ids []string, opts BulkParseOpts, progress chan<- ProgressUpdate) (*BulkParseResult, error)
}

// ArtistEngine implements [Engine].
type ArtistEngine struct {
	fetcher   services.Fetcher
	extractor *services.Extractor
	store     models.Persistence
	baseURL   string
	logger    *log.Logger
}

// EngineOpts contains the collaborators of an [ArtistEngine].
type EngineOpts struct {
	Fetcher   services.Fetcher
	Extractor *services.Extractor // defaults to the built-in markers
	Store     models.Persistence
	BaseURL   string
	Logger    *log.Logger
}

// NewArtistEngine creates an ArtistEngine. Fetcher, Store and BaseURL are required.
func NewArtistEngine(opts EngineOpts) (*ArtistEngine, error) {
	if opts.Fetcher == nil {
		return nil, fmt.Errorf("%w: fetcher is required", shared.ErrMissingConfig)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: persistence is required", shared.ErrMissingConfig)
	}
	if opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: scraper base_url is required", shared.ErrMissingConfig)
	}
	if opts.Extractor == nil {
		e, err := services.NewExtractor(shared.DefaultMarkers())
		if err != nil {
			return nil, err
		}
		opts.Extractor = e
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	return &ArtistEngine{
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		store:     opts.Store,
		baseURL:   strings.TrimRight(opts.BaseURL, "/"),
		logger:    opts.Logger,
	}, nil
}

// sendProgress sends a progress update through the channel without blocking.
func (e *ArtistEngine) sendProgress(progress chan<- ProgressUpdate, update ProgressUpdate) {
	if progress == nil {
		return
	}
	select {
	case progress <- update:
	default:
	}
}

// pageURL returns {base}/artist/{id}/{page}.
func (e *ArtistEngine) pageURL(id, page string) string {
	return fmt.Sprintf("%s/artist/%s/%s", e.baseURL, url.PathEscape(id), page)
}

// ParseArtist fetches the tracks and albums pages for id, extracts the artist and tracks, then upserts them.
//
// No record is written when the page has no artist name. When the store implements [models.Transactor] the
// artist and all of its tracks are written in one transaction.
func (e *ArtistEngine) ParseArtist(ctx context.Context, id string, progress chan<- ProgressUpdate) (*ParseResult, error) {
	if err := ValidateArtistID(id); err != nil {
		return nil, fmt.Errorf("error parsing artist: %w", err)
	}

	runID := shared.GenerateID()
	logger := shared.WithLogger(e.logger, "run", runID, "artist_id", id)
	logger.Debug("starting artist parse")

	e.sendProgress(progress, fetchPagesUpdate(id))
	tracksDoc, albumsDoc, err := e.fetchPages(ctx, id)
	if err != nil {
		logger.Error("fetch failed", "error", err)
		return nil, fmt.Errorf("error parsing artist: %w", err)
	}

	name := e.extractor.ExtractArtistName(tracksDoc)
	if name == services.UnknownArtist {
		logger.Warn("artist name not found on page")
		return nil, fmt.Errorf("error parsing artist: %w", shared.ErrArtistNotFound)
	}

	artist := &models.Artist{
		Name:             name,
		Subscribers:      e.extractor.ExtractSubscribers(tracksDoc),
		MonthlyListeners: e.extractor.ExtractMonthlyListeners(tracksDoc),
		AlbumsCount:      e.extractor.ExtractAlbumsCount(albumsDoc),
	}
	list := e.extractor.ExtractTracks(tracksDoc)
	if list.Mismatch() {
		logger.Warn("track title and duration counts differ", "titles", list.Titles, "durations", list.Durations)
	}
	if list.Untitled > 0 {
		logger.Warn("saving tracks without a title", "count", list.Untitled)
	}
	e.sendProgress(progress, extractFieldsUpdate(name, len(list.Tracks)))

	var tracks []*models.Track
	persist := func(p models.Persistence) error {
		var err error
		tracks, err = e.persist(ctx, p, artist, list.Tracks, progress)
		return err
	}

	if tx, ok := e.store.(models.Transactor); ok {
		err = tx.WithinTx(ctx, persist)
	} else {
		err = persist(e.store)
	}
	if err != nil {
		logger.Error("persist failed", "error", err)
		return nil, fmt.Errorf("error parsing artist: %w", err)
	}

	result := &ParseResult{
		RunID: runID,
		Summary: models.ArtistSummary{
			Artist:           artist.Name,
			Subscribers:      artist.Subscribers,
			MonthlyListeners: artist.MonthlyListeners,
			AlbumsCount:      artist.AlbumsCount,
			Tracks:           len(tracks),
		},
		Artist:   artist,
		Tracks:   tracks,
		Mismatch: list.Mismatch(),
		Untitled: list.Untitled,
	}

	logger.Info("artist saved", "name", artist.Name, "tracks", len(tracks), "albums", artist.AlbumsCount)
	return result, nil
}

// fetchPages retrieves and parses both artist pages concurrently.
func (e *ArtistEngine) fetchPages(ctx context.Context, id string) (tracksDoc, albumsDoc *goquery.Document, err error) {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		doc, err := e.fetchDocument(gctx, e.pageURL(id, "tracks"))
		if err != nil {
			return fmt.Errorf("failed to fetch tracks page: %w", err)
		}
		tracksDoc = doc
		return nil
	})

	g.Go(func() error {
		doc, err := e.fetchDocument(gctx, e.pageURL(id, "albums"))
		if err != nil {
			return fmt.Errorf("failed to fetch albums page: %w", err)
		}
		albumsDoc = doc
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return tracksDoc, albumsDoc, nil
}

func (e *ArtistEngine) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	body, err := e.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	return services.ParseDocument(body)
}

// persist upserts artist and then each track against the resolved artist ID.
func (e *ArtistEngine) persist(
	ctx context.Context,
	p models.Persistence,
	artist *models.Artist,
	infos []models.TrackInfo,
	progress chan<- ProgressUpdate,
) ([]*models.Track, error) {
	if err := p.UpsertArtist(ctx, artist); err != nil {
		return nil, fmt.Errorf("failed to save artist %q: %w", artist.Name, err)
	}

	tracks := make([]*models.Track, 0, len(infos))
	for i, info := range infos {
		track := &models.Track{Name: info.Name, Duration: info.Duration, ArtistID: artist.ID}
		if err := p.UpsertTrack(ctx, track); err != nil {
			return nil, fmt.Errorf("failed to save track %q: %w", info.Name, err)
		}
		tracks = append(tracks, track)
		e.sendProgress(progress, persistTrackUpdate(i+1, len(infos), info.Name))
	}
	return tracks, nil
}
