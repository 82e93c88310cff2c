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

// ArtistRepository persists [models.Artist] rows keyed by name.
type ArtistRepository struct {
	q querier
}

// NewArtistRepository creates a new ArtistRepository with the given database connection
func NewArtistRepository(db *sql.DB) *ArtistRepository {
	return &ArtistRepository{q: db}
}

const artistColumns = `id, name, subscribers_count, monthly_listeners, albums_count, created_at, updated_at`

// Upsert creates the artist or updates the counters of the existing artist with the same name.
//
// On return the artist carries its stored ID and timestamps.
func (r *ArtistRepository) Upsert(ctx context.Context, artist *models.Artist) error {
	if err := artist.Validate(); err != nil {
		return err
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO artists (name, subscribers_count, monthly_listeners, albums_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			subscribers_count = excluded.subscribers_count,
			monthly_listeners = excluded.monthly_listeners,
			albums_count = excluded.albums_count,
			updated_at = excluded.updated_at
	`

	_, err := r.q.ExecContext(ctx, query,
		artist.Name,
		artist.Subscribers,
		artist.MonthlyListeners,
		artist.AlbumsCount,
		now,
		now,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert artist: %w", err)
	}

	stored, err := r.GetByName(ctx, artist.Name)
	if err != nil {
		return err
	}

	artist.ID = stored.ID
	artist.CreatedAt = stored.CreatedAt
	artist.UpdatedAt = stored.UpdatedAt
	return nil
}

// GetByName retrieves an artist by its unique name.
func (r *ArtistRepository) GetByName(ctx context.Context, name string) (*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists WHERE name = ?`
	return r.scanOne(r.q.QueryRowContext(ctx, query, name))
}

// List retrieves all artists ordered by name.
func (r *ArtistRepository) List(ctx context.Context) ([]*models.Artist, error) {
	query := `SELECT ` + artistColumns + ` FROM artists ORDER BY name ASC`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query artists: %w", err)
	}
	defer rows.Close()

	var artists []*models.Artist
	for rows.Next() {
		var a models.Artist
		if err := rows.Scan(&a.ID, &a.Name, &a.Subscribers, &a.MonthlyListeners, &a.AlbumsCount, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan artist: %w", err)
		}
		artists = append(artists, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return artists, nil
}

// Delete removes an artist by name. Its tracks are removed by the foreign key cascade.
func (r *ArtistRepository) Delete(ctx context.Context, name string) error {
	result, err := r.q.ExecContext(ctx, `DELETE FROM artists WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete artist: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%w: artist %q", shared.ErrRecordNotFound, name)
	}

	return nil
}

func (r *ArtistRepository) scanOne(row *sql.Row) (*models.Artist, error) {
	var a models.Artist
	err := row.Scan(&a.ID, &a.Name, &a.Subscribers, &a.MonthlyListeners, &a.AlbumsCount, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: artist", shared.ErrRecordNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan artist: %w", err)
	}
	return &a, nil
}
