// Package repositories implements SQLite persistence for scraped artists and tracks.
//
// Writes are upserts keyed on natural identities: artists on name, tracks on (name, artist_id).
// Re-running a scrape therefore updates rows in place instead of duplicating them.
//
// Key Implementations:
//   - [ArtistRepository] : artist upserts and name-based lookups
//   - [TrackRepository] : track upserts and per-artist listings
//   - [Store] : implements models.Persistence and models.Transactor over both repositories
package repositories
