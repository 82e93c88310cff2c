// Package services implements the two collaborators of a scrape: fetching upstream pages and extracting artist data from them.
//
// # Fetcher
//
// [HTTPFetcher] implements [Fetcher] with a bounded per-request timeout, a configured User-Agent and an optional politeness limiter.
// It performs exactly one GET per call; there are no retries.
// Failures are returned as [*FetchError], which carries the URL and, when the server answered, the status code.
// Timeouts wrap [shared.ErrTimeout] so callers can tell them apart from other fetch failures.
//
// # Extractor
//
// [ParseDocument] builds a goquery document with the lenient golang.org/x/net/html parser, which recovers from malformed markup instead of failing.
//
// [Extractor] locates artist data through the marker selectors in [shared.MarkersConfig].
// Numeric fields keep only their digits and default to zero when absent.
// Tracks are built by pairing title and duration nodes by position; see [TrackList].
package services
