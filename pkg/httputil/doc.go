// Package httputil fetches diagram and record sources over HTTP.
//
// # Overview
//
//   - [Fetcher]: GET with retry, a response size limit and an optional
//     response cache
//   - [Cache]: file-based body cache keyed by URL
//   - [Retry]: automatic retry with exponential backoff
//
// # Sources
//
// [ReadSource] accepts either a local path or an http(s) URL, so callers
// that take a "source" option never have to branch on it themselves:
//
//	data, err := httputil.ReadSource(ctx, fetcher, "https://venue.example/geometry.json")
//
// # Stale responses
//
// When a [Cache] is attached and the network fails, the fetcher falls back
// to an expired cached body rather than failing the load. Fresh entries are
// served without touching the network.
package httputil
