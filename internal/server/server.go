// package server contains middleware & handlers for the artist scraper web service
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/tasks"
)

// Middleware wraps an http.Handler and returns a new http.Handler with additional behavior.
type Middleware func(http.Handler) http.Handler

// Handler defines the interface for groups of HTTP endpoints.
// Implementations register their own routes so route definitions stay next to the handlers.
type Handler interface {
	Routes(r chi.Router) // Routes registers the handler's endpoints on r
}

// ArtistParser runs a single scrape. Satisfied by [tasks.ArtistEngine].
type ArtistParser interface {
	ParseArtist(ctx context.Context, id string, progress chan<- tasks.ProgressUpdate) (*tasks.ParseResult, error)
}

// ArtistReader reads stored artists. Satisfied by repositories.Store.
type ArtistReader interface {
	ListArtists(ctx context.Context) ([]*models.Artist, error)
	ArtistTracks(ctx context.Context, name string) (*models.Artist, []*models.Track, error)
}
