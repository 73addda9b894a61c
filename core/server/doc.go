// Package server holds the HTTP server configuration.
//
// While the start command handles the server startup, this package defines the
// settings it reads: the listen port, the API key protecting every route and the
// per-client rate limit.
package server
