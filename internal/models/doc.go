// Package models defines the artist and track entities scraped from upstream profile pages, and the persistence contract the scrape engine writes through.
//
// The package contains two categories of types:
//
// 1. Extraction results: lightweight values built fresh on every scrape
//   - [TrackInfo] : a track name and its duration in seconds
//   - [ArtistSummary] : what a scrape reports back to its caller
//
// 2. Persistent entities: database-backed records identified by natural keys
//   - [Artist] : identified by name
//   - [Track] : identified by (name, artist)
//
// [Persistence] is the create-or-update contract used by the engine. Implementations that can group writes also implement [Transactor].
package models
