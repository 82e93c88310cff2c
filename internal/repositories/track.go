package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/shared"
)

// TrackRepository persists [models.Track] rows keyed by (name, artist_id).
type TrackRepository struct {
	q querier
}

// NewTrackRepository creates a new TrackRepository with the given database connection
func NewTrackRepository(db *sql.DB) *TrackRepository {
	return &TrackRepository{q: db}
}

const trackColumns = `id, name, duration, artist_id, created_at, updated_at`

// Upsert creates the track or updates the duration of the existing track with the same name and artist.
func (r *TrackRepository) Upsert(ctx context.Context, track *models.Track) error {
	if err := track.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO tracks (name, duration, artist_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(name, artist_id) DO UPDATE SET
			duration = excluded.duration,
			updated_at = excluded.updated_at
	`

	if _, err := r.q.ExecContext(ctx, query, track.Name, track.Duration, track.ArtistID, now, now); err != nil {
		return fmt.Errorf("failed to upsert track: %w", err)
	}

	stored, err := r.Get(ctx, track.Name, track.ArtistID)
	if err != nil {
		return err
	}

	track.ID = stored.ID
	track.CreatedAt = stored.CreatedAt
	track.UpdatedAt = stored.UpdatedAt
	return nil
}

// Get retrieves a track by its natural key.
func (r *TrackRepository) Get(ctx context.Context, name string, artistID int64) (*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE name = ? AND artist_id = ?`

	var t models.Track
	err := r.q.QueryRowContext(ctx, query, name, artistID).
		Scan(&t.ID, &t.Name, &t.Duration, &t.ArtistID, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: track %q", shared.ErrRecordNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan track: %w", err)
	}
	return &t, nil
}

// ListByArtist retrieves the tracks of one artist in insertion order.
func (r *TrackRepository) ListByArtist(ctx context.Context, artistID int64) ([]*models.Track, error) {
	query := `SELECT ` + trackColumns + ` FROM tracks WHERE artist_id = ? ORDER BY id ASC`

	rows, err := r.q.QueryContext(ctx, query, artistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.Track
	for rows.Next() {
		var t models.Track
		if err := rows.Scan(&t.ID, &t.Name, &t.Duration, &t.ArtistID, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		tracks = append(tracks, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}

// Count returns how many tracks are stored for an artist.
func (r *TrackRepository) Count(ctx context.Context, artistID int64) (int, error) {
	var n int
	err := r.q.QueryRowContext(ctx, `SELECT COUNT(*) FROM tracks WHERE artist_id = ?`, artistID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count tracks: %w", err)
	}
	return n, nil
}
