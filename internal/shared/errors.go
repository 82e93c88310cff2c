package shared

import "fmt"

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrMissingConfig = fmt.Errorf("configuration not found")
	ErrInvalidConfig = fmt.Errorf("invalid configuration")

	// Fetch errors
	ErrFetchFailed = fmt.Errorf("fetch failed")
	ErrTimeout     = fmt.Errorf("operation timed out")

	// Scrape errors
	ErrArtistNotFound = fmt.Errorf("artist not found or invalid artist ID")
	ErrExtraction     = fmt.Errorf("malformed document")

	// Persistence errors
	ErrRecordNotFound = fmt.Errorf("record not found")
	ErrValidation     = fmt.Errorf("validation failed")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
	ErrInvalidFlag     = fmt.Errorf("invalid flag value")
)
