// package formatter provides functions to export stored artist data to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/desertthunder/ymscrape/internal/models"
	"github.com/desertthunder/ymscrape/internal/shared"
)

// Format names accepted by [Export].
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "markdown"
	FormatText     = "text"
)

// ArtistExport is an artist with its tracks.
type ArtistExport struct {
	Artist *models.Artist  `json:"artist"`
	Tracks []*models.Track `json:"tracks"`
}

// TotalDuration returns the sum of all track durations in seconds.
func (e *ArtistExport) TotalDuration() int64 {
	var total int64
	for _, t := range e.Tracks {
		total += t.Duration
	}
	return total
}

// Export renders export in the named format.
func Export(export *ArtistExport, format string) ([]byte, error) {
	switch format {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown, "md":
		return ExportToMarkdown(export)
	case FormatText, "txt":
		return ExportToText(export)
	case FormatJSON, "":
		return ExportToJSON(export)
	default:
		return nil, fmt.Errorf("%w: unknown format %q (json, csv, markdown, text)", shared.ErrInvalidFlag, format)
	}
}

// ExportToCSV converts an ArtistExport to CSV format with columns: ID, Name, Artist, Duration, Seconds
func ExportToCSV(export *ArtistExport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Name", "Artist", "Duration", "Seconds"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range export.Tracks {
		record := []string{
			strconv.FormatInt(track.ID, 10),
			track.Name,
			export.Artist.Name,
			shared.FormatDuration(track.Duration),
			strconv.FormatInt(track.Duration, 10),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts an ArtistExport to Markdown with a stats list and a track table
func ExportToMarkdown(export *ArtistExport) ([]byte, error) {
	var buf bytes.Buffer
	a := export.Artist

	buf.WriteString(fmt.Sprintf("# %s\n\n", a.Name))
	buf.WriteString(fmt.Sprintf("**Subscribers**: %d\n", a.Subscribers))
	buf.WriteString(fmt.Sprintf("**Monthly listeners**: %d\n", a.MonthlyListeners))
	buf.WriteString(fmt.Sprintf("**Albums**: %d\n", a.AlbumsCount))
	buf.WriteString(fmt.Sprintf("**Tracks**: %d (%s)\n\n", len(export.Tracks), shared.FormatDuration(export.TotalDuration())))

	buf.WriteString("## Tracks\n\n")
	if len(export.Tracks) == 0 {
		buf.WriteString("_No tracks stored._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| # | Name | Duration |\n|---|------|----------|\n")
	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("| %d | %s | %s |\n", i+1, escapePipes(track.Name), shared.FormatDuration(track.Duration)))
	}

	return buf.Bytes(), nil
}

// ExportToText converts an ArtistExport to plain text format
func ExportToText(export *ArtistExport) ([]byte, error) {
	var buf bytes.Buffer
	a := export.Artist

	buf.WriteString(fmt.Sprintf("Artist: %s\n", a.Name))
	buf.WriteString(fmt.Sprintf("Subscribers: %d\n", a.Subscribers))
	buf.WriteString(fmt.Sprintf("Monthly listeners: %d\n", a.MonthlyListeners))
	buf.WriteString(fmt.Sprintf("Albums: %d\n", a.AlbumsCount))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(export.Tracks)))

	for i, track := range export.Tracks {
		buf.WriteString(fmt.Sprintf("%d. %s [%s]\n", i+1, track.Name, shared.FormatDuration(track.Duration)))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the export as indented JSON
func ExportToJSON(export *ArtistExport) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders export in format and writes it to path.
func WriteExport(export *ArtistExport, format, path string) error {
	data, err := Export(export, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return nil
}

func escapePipes(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
