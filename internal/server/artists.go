package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/services"
	"github.com/desertthunder/ymscrape/internal/shared"
)

const parseSuccessMessage = "Artist and tracks data successfully saved"

type successResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type artistTracksResponse struct {
	Artist *models.Artist  `json:"artist"`
	Tracks []*models.Track `json:"tracks"`
}

// ArtistHandler serves the scrape trigger and read-only views of stored artists.
type ArtistHandler struct {
	parser ArtistParser
	reader ArtistReader
	logger *log.Logger
}

// NewArtistHandler creates an ArtistHandler. reader may be nil, in which case only the scrape route is served.
func NewArtistHandler(parser ArtistParser, reader ArtistReader, logger *log.Logger) *ArtistHandler {
	if logger == nil {
		logger = log.Default()
	}
	return &ArtistHandler{parser: parser, reader: reader, logger: logger}
}

// Routes implements [Handler].
func (h *ArtistHandler) Routes(r chi.Router) {
	r.Get("/parse-artist/{artistId}", h.parseArtist)
	if h.reader != nil {
		r.Get("/artists", h.listArtists)
		r.Get("/artists/{name}/tracks", h.artistTracks)
	}
}

func (h *ArtistHandler) parseArtist(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "artistId")

	res, err := h.parser.ParseArtist(r.Context(), id, nil)
	if err != nil {
		status := StatusFor(err)
		if status >= http.StatusInternalServerError {
			h.logger.Error("parse artist failed", "artist_id", id, "error", err)
		}
		writeJSON(w, status, errorResponse{Error: "Failed to parse artist data: " + err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, successResponse{Message: parseSuccessMessage, Data: res.Summary})
}

func (h *ArtistHandler) listArtists(w http.ResponseWriter, r *http.Request) {
	artists, err := h.reader.ListArtists(r.Context())
	if err != nil {
		h.logger.Error("list artists failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	if artists == nil {
		artists = []*models.Artist{}
	}
	writeJSON(w, http.StatusOK, successResponse{Message: "ok", Data: artists})
}

func (h *ArtistHandler) artistTracks(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	artist, tracks, err := h.reader.ArtistTracks(r.Context(), name)
	if err != nil {
		writeJSON(w, StatusFor(err), errorResponse{Error: err.Error()})
		return
	}
	if tracks == nil {
		tracks = []*models.Track{}
	}
	writeJSON(w, http.StatusOK, successResponse{Message: "ok", Data: artistTracksResponse{Artist: artist, Tracks: tracks}})
}

// StatusFor maps an error from the scrape pipeline to an HTTP status.
func StatusFor(err error) int {
	var fetchErr *services.FetchError
	switch {
	case errors.Is(err, shared.ErrInvalidArgument), errors.Is(err, shared.ErrMissingArgument):
		return http.StatusBadRequest
	case errors.Is(err, shared.ErrArtistNotFound), errors.Is(err, shared.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, shared.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.As(err, &fetchErr), errors.Is(err, shared.ErrFetchFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to encode response", "error", err)
	}
}
