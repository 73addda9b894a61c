// Package utils provides small helpers shared by the CLI, the HTTP handlers and the
// stores: item list parsing for bulk ingestion and loose value conversion.
package utils
