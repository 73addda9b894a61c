// Package ratelimit throttles clients with one token bucket per client key.
//
// Keys are the API key header when present and the client IP otherwise. Idle keys
// are dropped by a janitor goroutine started with Store.StartJanitor.
package ratelimit
