// Package memory provides an in-process kv.Table.
//
// It backs the "memory" bank backend and most unit tests. WithBatchFault lets tests
// simulate a store that accepts only part of a batch write.
package memory
