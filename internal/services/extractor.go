package services

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/shared"
	"golang.org/x/net/html"
)

// UnknownArtist is returned by [Extractor.ExtractArtistName] when the page has no artist heading.
const UnknownArtist = "Unknown Artist"

// defaultDuration is used when a track has no duration node at its position.
const defaultDuration = "0:00"

// ParseDocument parses body leniently. Malformed markup is repaired, not rejected.
func ParseDocument(body []byte) (*goquery.Document, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrExtraction, err)
	}
	return goquery.NewDocumentFromNode(root), nil
}

// Extractor reads artist data from parsed pages using marker selectors.
type Extractor struct {
	markers shared.MarkersConfig
}

// NewExtractor validates every marker selector and returns an Extractor.
//
// Empty markers fall back to [shared.DefaultMarkers].
func NewExtractor(markers shared.MarkersConfig) (*Extractor, error) {
	markers = markers.WithDefaults()

	for name, sel := range map[string]string{
		"artist_name":       markers.ArtistName,
		"subscribers":       markers.Subscribers,
		"monthly_listeners": markers.MonthlyListeners,
		"album_title":       markers.AlbumTitle,
		"track_title":       markers.TrackTitle,
		"track_duration":    markers.TrackDuration,
	} {
		if _, err := cascadia.Compile(sel); err != nil {
			return nil, fmt.Errorf("%w: marker %s %q: %v", shared.ErrInvalidConfig, name, sel, err)
		}
	}

	return &Extractor{markers: markers}, nil
}

// Markers returns the selectors in use.
func (e *Extractor) Markers() shared.MarkersConfig {
	return e.markers
}

// ExtractArtistName returns the trimmed text of the first artist heading, or [UnknownArtist].
func (e *Extractor) ExtractArtistName(doc *goquery.Document) string {
	sel := doc.Find(e.markers.ArtistName).First()
	if sel.Length() == 0 {
		return UnknownArtist
	}

	name := strings.TrimSpace(sel.Text())
	if name == "" {
		return UnknownArtist
	}
	return name
}

// ExtractSubscribers returns the digits of the first subscribers element, or 0.
func (e *Extractor) ExtractSubscribers(doc *goquery.Document) int64 {
	return firstNumber(doc, e.markers.Subscribers)
}

// ExtractMonthlyListeners returns the digits of the monthly listeners element, or 0.
func (e *Extractor) ExtractMonthlyListeners(doc *goquery.Document) int64 {
	return firstNumber(doc, e.markers.MonthlyListeners)
}

// ExtractAlbumsCount counts album title elements.
func (e *Extractor) ExtractAlbumsCount(doc *goquery.Document) int64 {
	return int64(doc.Find(e.markers.AlbumTitle).Length())
}

// TrackList is the result of pairing track titles with durations by position.
type TrackList struct {
	Tracks    []models.TrackInfo
	Titles    int // title nodes found
	Durations int // duration nodes found
	Untitled  int // titles whose text was empty; stored with an empty name
}

// Mismatch reports whether the title and duration node counts differ.
//
// Titles beyond the last duration use the 0:00 default and durations beyond the last title are ignored.
func (l TrackList) Mismatch() bool {
	return l.Titles != l.Durations
}

// ExtractTracks pairs the Nth title node with the Nth duration node.
func (e *Extractor) ExtractTracks(doc *goquery.Document) TrackList {
	titles := doc.Find(e.markers.TrackTitle)
	durations := doc.Find(e.markers.TrackDuration)

	list := TrackList{
		Tracks:    make([]models.TrackInfo, 0, titles.Length()),
		Titles:    titles.Length(),
		Durations: durations.Length(),
	}

	titles.Each(func(i int, s *goquery.Selection) {
		name := strings.TrimSpace(s.Text())
		if name == "" {
			list.Untitled++
		}

		text := defaultDuration
		if i < list.Durations {
			text = strings.TrimSpace(durations.Eq(i).Text())
		}

		list.Tracks = append(list.Tracks, models.TrackInfo{Name: name, Duration: ParseDuration(text)})
	})

	return list
}

func firstNumber(doc *goquery.Document, selector string) int64 {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return 0
	}
	return ParseDigits(sel.Text())
}

// ParseDigits drops every non-digit rune from s and parses the rest.
//
// Returns 0 when s has no digits or the number does not fit in int64.
func ParseDigits(s string) int64 {
	var n int64
	for _, r := range s {
		if r < '0' || r > '9' {
			continue
		}
		d := int64(r - '0')
		if n > (math.MaxInt64-d)/10 {
			return 0
		}
		n = n*10 + d
	}
	return n
}

// ParseDuration converts "m:ss" or "h:mm:ss" to seconds. A single component is read as minutes.
//
// Components without a leading number count as zero.
func ParseDuration(s string) int64 {
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch {
	case len(parts) == 1:
		return leadingInt(parts[0]) * 60
	case len(parts) > 3:
		parts = parts[len(parts)-3:]
	}

	var total int64
	for _, p := range parts {
		total = total*60 + leadingInt(p)
	}
	return total
}

// leadingInt parses the run of digits at the start of s after surrounding spaces.
func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	var n int64
	for i := 0; i < len(s) && s[i] >= '0' && s[i] <= '9'; i++ {
		n = n*10 + int64(s[i]-'0')
		if n > math.MaxInt32 {
			return 0
		}
	}
	return n
}
