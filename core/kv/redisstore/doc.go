// Package redisstore implements kv.Table on Redis using go-redis.
//
// Records are plain string keys named "<prefix>:<table>:<key>". The conditional
// primitives are native to Redis: SETNX for create-if-absent and a small Lua
// script for compare-and-delete, both atomic on the server.
//
// Scan delegates to SCAN with a MATCH on the table prefix. SCAN may return a key
// more than once across pages; callers that race on conditional deletes are
// unaffected because the second delete simply fails its condition.
package redisstore
