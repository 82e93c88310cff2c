package tasks

import (
	"fmt"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI or server layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	FetchPages Phase = iota
	ExtractFields
	PersistRecords
	BulkParseArtists
)

func (p Phase) String() string {
	switch p {
	case FetchPages:
		return "fetch_pages"
	case ExtractFields:
		return "extract_fields"
	case PersistRecords:
		return "persist_records"
	case BulkParseArtists:
		return "bulk_parse"
	default:
		return ""
	}
}

func fetchPagesUpdate(id string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FetchPages,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Fetching tracks and albums pages for artist %s...", id),
	}
}

func extractFieldsUpdate(name string, tracks int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExtractFields,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Found artist: %s (%d tracks)", name, tracks),
	}
}

func persistTrackUpdate(step, total int, name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   PersistRecords,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] Saving: %s", step, total, name),
	}
}

func parseCompletedUpdate(step, total int, res ArtistParseResult) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkParseArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d tracks)", step, total, res.Result.Summary.Artist, res.Result.Summary.Tracks),
		Data:    res.Result,
	}
}

func parseFailedUpdate(step, total int, id string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   BulkParseArtists,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, id, err),
	}
}
