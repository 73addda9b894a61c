// Package checks holds the individual integrity checks: table reachability, SQL
// schema conformance and the object storage bucket.
package checks
