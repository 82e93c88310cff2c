// Package tasks orchestrates artist scrapes with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.ParseArtist] : Scrape and store one artist
//     - Fetches the tracks and albums pages concurrently
//     - Extracts name, subscribers, monthly listeners, album count and tracks
//     - Upserts the artist by name, then each track by (name, artist)
//     - Returns a summary of what was saved
//
//  2. [Engine.BulkParse] : Scrape many artists
//     - Runs ParseArtist through a worker pool behind a rate limiter
//     - Records per-artist failures without stopping the batch
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
//
// # Atomicity
//
// When the persistence layer also implements [models.Transactor], the artist and its tracks are written in a
// single transaction. A failed track upsert leaves no partial artist behind.
//
// # Implementation
//
// [ArtistEngine] implements [Engine] with dependencies on:
//   - [services.Fetcher] : upstream page retrieval
//   - [services.Extractor] : marker-based field extraction
//   - [models.Persistence] : artist and track upserts (repositories.Store)
package tasks
