// Package sqlstore implements kv.Table on a relational database through GORM.
//
// Each logical table is one SQL table with two columns, record_key (primary key)
// and record_value. Conditional operations map onto single statements whose
// affected-row count decides the outcome:
//
//   - Put IfAbsent: INSERT ... ON CONFLICT DO NOTHING (ON DUPLICATE KEY UPDATE on
//     MySQL); zero rows affected means the key already existed.
//   - Delete IfEquals: DELETE ... WHERE record_key = ? AND record_value = ?; zero
//     rows affected means another writer removed or changed it first.
//
// Scan uses keyset pagination on record_key, so the cursor is simply the last key
// of the previous page.
package sqlstore
