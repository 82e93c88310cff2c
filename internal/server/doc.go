// Package server provides HTTP routing, middleware, and handlers for the artist scraper service.
//
// # Router Infrastructure
//
// [NewRouter] builds a chi router with request IDs, real client IPs, structured request logging and panic
// recovery, then mounts every [Handler]. Handlers register their own routes, which keeps route definitions next
// to the code that serves them.
//
// [Middleware] wraps handlers in the standard Go pattern. Extra middleware passed to [NewRouter] runs after the
// built-in stack.
//
// # Endpoints
//
//   - GET /parse-artist/{artistId} : scrape and store one artist, replying with a summary
//   - GET /artists : stored artists ordered by name
//   - GET /artists/{name}/tracks : one stored artist and its tracks
//   - GET /health : liveness probe
//
// # Errors
//
// Scrape failures are reported as {"error": "Failed to parse artist data: ..."}. [StatusFor] chooses the status:
// 400 for a malformed identifier, 404 when the page has no artist, 502 when upstream fails, 504 on timeout and
// 500 for anything else.
package server
