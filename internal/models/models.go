// package models defines the data model for the artist scraper
package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/desertthunder/ymscrape/internal/shared"
)

// Artist is a scraped artist profile. Name is the natural key.
type Artist struct {
	ID               int64     `json:"id"`
	Name             string    `json:"name"`
	Subscribers      int64     `json:"subscribers_count"`
	MonthlyListeners int64     `json:"monthly_listeners"`
	AlbumsCount      int64     `json:"albums_count"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// Validate checks the artist can be written.
func (a *Artist) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return fmt.Errorf("%w: artist name is required", shared.ErrValidation)
	}
	if a.Subscribers < 0 || a.MonthlyListeners < 0 || a.AlbumsCount < 0 {
		return fmt.Errorf("%w: artist counters must be non-negative", shared.ErrValidation)
	}
	return nil
}

// Track is a scraped track. (Name, ArtistID) is the natural key.
type Track struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Duration  int64     `json:"duration"` // seconds
	ArtistID  int64     `json:"artist_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Validate checks the track can be written and references a resolved artist.
func (t *Track) Validate() error {
	if t.Duration < 0 {
		return fmt.Errorf("%w: track duration must be non-negative", shared.ErrValidation)
	}
	if t.ArtistID <= 0 {
		return fmt.Errorf("%w: track must reference a stored artist", shared.ErrValidation)
	}
	return nil
}

// TrackInfo is a track as extracted from a page, before it is tied to an artist.
type TrackInfo struct {
	Name     string `json:"name"`
	Duration int64  `json:"duration_seconds"`
}

// ArtistSummary is the result reported for one successful scrape.
type ArtistSummary struct {
	Artist           string `json:"artist"`
	Subscribers      int64  `json:"subscribers"`
	MonthlyListeners int64  `json:"monthly_listeners"`
	AlbumsCount      int64  `json:"albums_count"`
	Tracks           int    `json:"tracks"`
}

// Persistence is the create-or-update contract for scraped records.
type Persistence interface {
	// UpsertArtist creates or updates the artist matched by name and sets its ID.
	UpsertArtist(ctx context.Context, artist *Artist) error
	// UpsertTrack creates or updates the track matched by (name, artist ID) and sets its ID.
	UpsertTrack(ctx context.Context, track *Track) error
}

// Transactor is implemented by persistence layers that can run a group of upserts atomically.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(Persistence) error) error
}
