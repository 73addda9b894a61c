package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"storagebox/core/kv"

	"github.com/redis/go-redis/v9"
)

// compareAndDelete removes KEYS[1] only while it still holds ARGV[1].
var compareAndDelete = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Table is a kv.Table whose records are plain string keys under a common prefix.
type Table struct {
	rdb    redis.UniversalClient
	name   string
	prefix string
}

// New returns a Table storing records as "<prefix>:<name>:<key>".
func New(rdb redis.UniversalClient, prefix, name string) *Table {
	prefix = strings.Trim(prefix, ":")
	if prefix == "" {
		prefix = "storagebox"
	}
	return &Table{rdb: rdb, name: name, prefix: prefix + ":" + name + ":"}
}

func (t *Table) Name() string { return t.name }

func (t *Table) key(k string) string { return t.prefix + k }

func (t *Table) Put(ctx context.Context, rec kv.Record, cond kv.Condition) (kv.Outcome, error) {
	switch {
	case cond.IsAlways():
		if err := t.rdb.Set(ctx, t.key(rec.Key), rec.Value, 0).Err(); err != nil {
			return kv.ConditionFailed, fmt.Errorf("redisstore: put into %s: %w", t.name, err)
		}
		return kv.Succeeded, nil

	case cond.IsIfAbsent():
		ok, err := t.rdb.SetNX(ctx, t.key(rec.Key), rec.Value, 0).Result()
		if err != nil {
			return kv.ConditionFailed, fmt.Errorf("redisstore: conditional put into %s: %w", t.name, err)
		}
		if !ok {
			return kv.ConditionFailed, nil
		}
		return kv.Succeeded, nil

	default:
		return kv.ConditionFailed, kv.ErrUnsupportedCondition
	}
}

func (t *Table) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := t.rdb.Get(ctx, t.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("redisstore: get from %s: %w", t.name, err)
	}
	return v, true, nil
}

func (t *Table) Delete(ctx context.Context, key string, cond kv.Condition) (kv.Outcome, error) {
	if cond.IsIfAbsent() {
		return kv.ConditionFailed, kv.ErrUnsupportedCondition
	}

	expected, conditional := cond.Expected()
	if !conditional {
		if err := t.rdb.Del(ctx, t.key(key)).Err(); err != nil {
			return kv.ConditionFailed, fmt.Errorf("redisstore: delete from %s: %w", t.name, err)
		}
		return kv.Succeeded, nil
	}

	n, err := compareAndDelete.Run(ctx, t.rdb, []string{t.key(key)}, expected).Int64()
	if err != nil {
		return kv.ConditionFailed, fmt.Errorf("redisstore: conditional delete from %s: %w", t.name, err)
	}
	if n == 0 {
		return kv.ConditionFailed, nil
	}
	return kv.Succeeded, nil
}

// Scan maps onto SCAN. The cursor is Redis' own cursor; a page can hold fewer or
// more than limit records and may repeat a key already seen on an earlier page.
// Only the final page may be empty.
func (t *Table) Scan(ctx context.Context, limit int, cursor string) (kv.Page, error) {
	if limit <= 0 {
		limit = 1
	}

	var start uint64
	if cursor != "" {
		c, err := strconv.ParseUint(cursor, 10, 64)
		if err != nil {
			return kv.Page{}, fmt.Errorf("redisstore: invalid cursor %q: %w", cursor, err)
		}
		start = c
	}

	// SCAN often returns no match mid-iteration when other keys dominate the
	// keyspace. Keep going so an empty batch never reaches the caller as a page.
	var keys []string
	next := start
	for {
		batch, cur, err := t.rdb.Scan(ctx, next, t.prefix+"*", int64(limit)).Result()
		if err != nil {
			return kv.Page{}, fmt.Errorf("redisstore: scan %s: %w", t.name, err)
		}
		keys, next = batch, cur
		if len(keys) > 0 || next == 0 {
			break
		}
	}

	page := kv.Page{Next: formatCursor(next)}
	if len(keys) == 0 {
		return page, nil
	}

	values, err := t.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return kv.Page{}, fmt.Errorf("redisstore: scan %s: %w", t.name, err)
	}

	page.Records = make([]kv.Record, 0, len(keys))
	for i, full := range keys {
		// Deleted between SCAN and MGET.
		s, ok := values[i].(string)
		if !ok {
			continue
		}
		page.Records = append(page.Records, kv.Record{Key: strings.TrimPrefix(full, t.prefix), Value: s})
	}
	return page, nil
}

// BatchWrite pipelines one SET per record. Records whose command failed are unprocessed.
func (t *Table) BatchWrite(ctx context.Context, recs []kv.Record) ([]kv.Record, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	pipe := t.rdb.Pipeline()
	cmds := make([]*redis.StatusCmd, len(recs))
	for i, r := range recs {
		cmds[i] = pipe.Set(ctx, t.key(r.Key), r.Value, 0)
	}

	// Exec reports the first failed command; per-command errors are inspected below.
	if _, err := pipe.Exec(ctx); err != nil && ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var unprocessed []kv.Record
	for i, cmd := range cmds {
		if cmd.Err() != nil {
			unprocessed = append(unprocessed, recs[i])
		}
	}
	return unprocessed, nil
}

func formatCursor(c uint64) string {
	if c == 0 {
		return ""
	}
	return strconv.FormatUint(c, 10)
}

var _ kv.Table = (*Table)(nil)
