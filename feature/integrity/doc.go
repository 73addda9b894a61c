// Package integrity provides health checks over the bank's infrastructure.
//
// Unlike the bank feature, which serves items, this package validates that the two
// tables, their schema and the import bucket are in the shape the bank expects, and
// audits the pool against the deduplication ledger.
//
// # Checks Provided
//
//   - Tables: Reads one record from each table to prove it is reachable.
//   - Schema: Compares the live sql columns with the record model (sql backend only).
//   - Storage: Checks that the import bucket exists and can create it.
//   - Ledger: Finds items that are bound but still in the pool, or bound to several ids.
//     Delegates to the reconcile package.
//
// # HTTP Endpoints
//
//   - GET /integrity : Runs all checks. The ledger check is a dry run.
//   - GET /integrity/tables : Table reachability.
//   - GET /integrity/schema : Schema check.
//   - GET /integrity/storage : Bucket check (supports ?fix=true).
//   - GET /integrity/ledger : Ledger audit (supports ?fix=true).
//   - GET /integrity/ledger/:item : Single item audit.
package integrity
