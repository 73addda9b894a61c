// Package backend opens the item and ledger tables for the configured store kind.
//
// The SQL kind verifies that both tables exist (or creates them when asked), the
// Redis kind relies on a client that was already pinged, and the Memory kind is
// meant for local runs and tests.
package backend
