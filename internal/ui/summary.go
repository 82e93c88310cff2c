package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/ymscrape/internal/models"
)

// Row is one label/value line in a rendered panel.
type Row struct {
	Label string
	Value string
}

// Panel renders a titled, bordered block of label/value rows.
func Panel(title string, rows []Row) string {
	lines := make([]string, 0, len(rows))
	for _, r := range rows {
		lines = append(lines, styles.label.Render(r.Label)+r.Value)
	}
	body := lipgloss.JoinVertical(lipgloss.Left, Title(title), strings.Join(lines, "\n"))
	return styles.box.Render(body)
}

// SummaryPanel renders the outcome of one scrape.
//
// A warning line is appended when track titles and durations did not line up or some titles were empty.
func SummaryPanel(s models.ArtistSummary, mismatch bool, untitled int) string {
	panel := Panel("✓ "+s.Artist, []Row{
		{"Subscribers", fmt.Sprint(s.Subscribers)},
		{"Monthly listeners", fmt.Sprint(s.MonthlyListeners)},
		{"Albums", fmt.Sprint(s.AlbumsCount)},
		{"Tracks saved", fmt.Sprint(s.Tracks)},
	})

	var notes []string
	if mismatch {
		notes = append(notes, Warning("! track titles and durations differ in count; missing durations saved as 0:00"))
	}
	if untitled > 0 {
		notes = append(notes, Warning(fmt.Sprintf("! %d tracks without a title were saved with an empty name", untitled)))
	}
	if len(notes) == 0 {
		return panel
	}
	return panel + "\n" + strings.Join(notes, "\n")
}
