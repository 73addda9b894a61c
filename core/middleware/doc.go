// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route after the swagger UI.
//   - rayid: assigns every request a ray id, exposed in locals and the X-Ray-ID header.
//   - ratelimit: per-client token buckets built on golang.org/x/time/rate.
//
// The start command registers them globally in the order rayid, request logging,
// rate limit, auth.
package middleware
