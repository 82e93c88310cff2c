// package services defines the HTTP fetcher and HTML extractor used to scrape artist pages
package services

import (
	"context"
)

// Fetcher retrieves raw documents from upstream URLs.
type Fetcher interface {
	// Fetch performs a single GET and returns the body.
	// Any non-success status or transport failure is reported as a [*FetchError].
	Fetch(ctx context.Context, url string) ([]byte, error)
}
