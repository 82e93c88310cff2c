// package repositories provides persistence layer implementations for all model types.
package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/ymscrape/internal/models"
)

// querier is satisfied by both [sql.DB] and [sql.Tx].
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store groups the artist and track repositories behind [models.Persistence].
type Store struct {
	db      *sql.DB
	Artists *ArtistRepository
	Tracks  *TrackRepository
}

// NewStore creates a Store over an open, migrated database.
func NewStore(db *sql.DB) *Store {
	return &Store{
		db:      db,
		Artists: &ArtistRepository{q: db},
		Tracks:  &TrackRepository{q: db},
	}
}

// UpsertArtist implements [models.Persistence].
func (s *Store) UpsertArtist(ctx context.Context, artist *models.Artist) error {
	return s.Artists.Upsert(ctx, artist)
}

// UpsertTrack implements [models.Persistence].
func (s *Store) UpsertTrack(ctx context.Context, track *models.Track) error {
	return s.Tracks.Upsert(ctx, track)
}

// WithinTx runs fn against repositories bound to a single transaction.
//
// The transaction commits only when fn returns nil.
func (s *Store) WithinTx(ctx context.Context, fn func(models.Persistence) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	txStore := &Store{
		Artists: &ArtistRepository{q: tx},
		Tracks:  &TrackRepository{q: tx},
	}

	if err := fn(txStore); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// ArtistTracks returns the stored artist with the given name and its tracks.
func (s *Store) ArtistTracks(ctx context.Context, name string) (*models.Artist, []*models.Track, error) {
	artist, err := s.Artists.GetByName(ctx, name)
	if err != nil {
		return nil, nil, err
	}

	tracks, err := s.Tracks.ListByArtist(ctx, artist.ID)
	if err != nil {
		return nil, nil, err
	}
	return artist, tracks, nil
}

// ListArtists returns every stored artist ordered by name.
func (s *Store) ListArtists(ctx context.Context) ([]*models.Artist, error) {
	return s.Artists.List(ctx)
}
