// Package stats counts resolution outcomes. Recording is best-effort: a failing
// recorder never fails the operation that produced the event.
package stats
