package redisstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"

	"storagebox/core/kv"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_KeyLayout(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	tests := []struct {
		name   string
		prefix string
		want   string
	}{
		{"Default", "", "storagebox:item_bank:code-1"},
		{"Custom", "bank", "bank:item_bank:code-1"},
		{"TrimsColons", ":bank:", "bank:item_bank:code-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := New(rdb, tt.prefix, "item_bank")
			assert.Equal(t, "item_bank", tbl.Name())
			assert.Equal(t, tt.want, tbl.key("code-1"))
		})
	}
}

func TestFormatCursor(t *testing.T) {
	assert.Equal(t, "", formatCursor(0))
	assert.Equal(t, "42", formatCursor(42))
}

func TestTable_UnsupportedConditions(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()
	tbl := New(rdb, "", "item_bank")

	_, err := tbl.Put(context.Background(), kv.Record{Key: "a", Value: "a"}, kv.IfEquals("a"))
	assert.ErrorIs(t, err, kv.ErrUnsupportedCondition)

	_, err = tbl.Delete(context.Background(), "a", kv.IfAbsent())
	assert.ErrorIs(t, err, kv.ErrUnsupportedCondition)
}

func TestTable_InvalidCursor(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "localhost:0"})
	defer rdb.Close()

	_, err := New(rdb, "", "item_bank").Scan(context.Background(), 10, "not-a-number")
	assert.ErrorContains(t, err, "invalid cursor")
}

func TestConnect_Unreachable(t *testing.T) {
	rdb, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", TimeoutSeconds: 1})
	require.Error(t, err)
	assert.Nil(t, rdb)
}

// hooks lets a test intercept commands on their way to the server.
type hooks struct {
	process  func(next redis.ProcessHook) redis.ProcessHook
	pipeline func(next redis.ProcessPipelineHook) redis.ProcessPipelineHook
}

func (h hooks) DialHook(next redis.DialHook) redis.DialHook { return next }

func (h hooks) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	if h.process == nil {
		return next
	}
	return h.process(next)
}

func (h hooks) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	if h.pipeline == nil {
		return next
	}
	return h.pipeline(next)
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return mr, rdb
}

// scanKeys walks every page of tbl and returns the keys seen, sorted and deduplicated.
func scanKeys(t *testing.T, tbl *Table, limit int) []string {
	t.Helper()
	seen := map[string]bool{}
	cursor := ""
	for {
		page, err := tbl.Scan(context.Background(), limit, cursor)
		require.NoError(t, err)
		if !page.Last() {
			assert.NotEmpty(t, page.Records, "only the last page may be empty")
		}
		for _, r := range page.Records {
			assert.Equal(t, r.Key, r.Value)
			seen[r.Key] = true
		}
		if page.Last() {
			break
		}
		cursor = page.Next
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func TestTable_RedisPutConditions(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupMiniredis(t)
	tbl := New(rdb, "box", "deduplication")

	out, err := tbl.Put(ctx, kv.Record{Key: "req1", Value: "a"}, kv.IfAbsent())
	require.NoError(t, err)
	assert.Equal(t, kv.Succeeded, out)

	out, err = tbl.Put(ctx, kv.Record{Key: "req1", Value: "b"}, kv.IfAbsent())
	require.NoError(t, err)
	assert.Equal(t, kv.ConditionFailed, out)

	v, ok, err := tbl.Get(ctx, "req1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a", v, "first writer wins")

	raw, err := mr.Get("box:deduplication:req1")
	require.NoError(t, err)
	assert.Equal(t, "a", raw)

	out, err = tbl.Put(ctx, kv.Record{Key: "req1", Value: "c"}, kv.Always())
	require.NoError(t, err)
	assert.Equal(t, kv.Succeeded, out)
	v, _, err = tbl.Get(ctx, "req1")
	require.NoError(t, err)
	assert.Equal(t, "c", v)

	_, ok, err = tbl.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTable_RedisKeysAreByteExact(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "deduplication")

	for _, id := range []string{"Req1", "req1", "req1 ", " req1"} {
		out, err := tbl.Put(ctx, kv.Record{Key: id, Value: id}, kv.IfAbsent())
		require.NoError(t, err)
		assert.Equal(t, kv.Succeeded, out, id)
	}
	assert.Equal(t, []string{" req1", "Req1", "req1", "req1 "}, scanKeys(t, tbl, 10))
}

func TestTable_RedisDeleteConditions(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "item_bank")
	_, err := tbl.Put(ctx, kv.Record{Key: "a", Value: "a"}, kv.Always())
	require.NoError(t, err)

	out, err := tbl.Delete(ctx, "a", kv.IfEquals("b"))
	require.NoError(t, err)
	assert.Equal(t, kv.ConditionFailed, out)
	assert.True(t, mr.Exists("storagebox:item_bank:a"))

	out, err = tbl.Delete(ctx, "a", kv.IfEquals("a"))
	require.NoError(t, err)
	assert.Equal(t, kv.Succeeded, out)
	assert.False(t, mr.Exists("storagebox:item_bank:a"))

	out, err = tbl.Delete(ctx, "a", kv.IfEquals("a"))
	require.NoError(t, err)
	assert.Equal(t, kv.ConditionFailed, out, "second delete loses")

	_, err = tbl.Put(ctx, kv.Record{Key: "b", Value: "b"}, kv.Always())
	require.NoError(t, err)
	out, err = tbl.Delete(ctx, "b", kv.Always())
	require.NoError(t, err)
	assert.Equal(t, kv.Succeeded, out)
	assert.False(t, mr.Exists("storagebox:item_bank:b"))
}

func TestTable_RedisScanPagination(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "item_bank")
	for _, k := range []string{"e", "a", "c", "b", "d"} {
		_, err := tbl.Put(ctx, kv.Record{Key: k, Value: k}, kv.Always())
		require.NoError(t, err)
	}
	// Keys of other tables share the keyspace but never show up.
	for i := 0; i < 20; i++ {
		require.NoError(t, mr.Set(fmt.Sprintf("storagebox:deduplication:req%d", i), "x"))
	}

	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, scanKeys(t, tbl, 2))

	page, err := New(rdb, "", "empty").Scan(ctx, 2, "")
	require.NoError(t, err)
	assert.Empty(t, page.Records)
	assert.True(t, page.Last())
}

func TestTable_RedisScanSkipsKeysDeletedBeforeMGet(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "item_bank")
	for _, k := range []string{"a", "b", "c"} {
		_, err := tbl.Put(ctx, kv.Record{Key: k, Value: k}, kv.Always())
		require.NoError(t, err)
	}

	// Another claimant takes "b" after SCAN listed it.
	rdb.AddHook(hooks{process: func(next redis.ProcessHook) redis.ProcessHook {
		return func(ctx context.Context, cmd redis.Cmder) error {
			if cmd.Name() == "mget" {
				mr.Del("storagebox:item_bank:b")
			}
			return next(ctx, cmd)
		}
	}})

	page, err := tbl.Scan(ctx, 100, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []kv.Record{{Key: "a", Value: "a"}, {Key: "c", Value: "c"}}, page.Records)
}

func TestTable_RedisBatchWrite(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "item_bank")

	recs := []kv.Record{{Key: "a", Value: "a"}, {Key: "b", Value: "b"}, {Key: "c", Value: "c"}}
	unprocessed, err := tbl.BatchWrite(ctx, recs)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)

	// Re-submitting is an upsert.
	unprocessed, err = tbl.BatchWrite(ctx, recs[:1])
	require.NoError(t, err)
	assert.Empty(t, unprocessed)

	n, err := kv.Count(ctx, tbl, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestTable_RedisBatchWritePartialFailure(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "item_bank")

	rdb.AddHook(hooks{pipeline: func(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
		return func(ctx context.Context, cmds []redis.Cmder) error {
			err := next(ctx, cmds)
			cmds[1].SetErr(errors.New("OOM command not allowed when used memory > 'maxmemory'"))
			return err
		}
	}})

	recs := []kv.Record{{Key: "a", Value: "a"}, {Key: "b", Value: "b"}, {Key: "c", Value: "c"}}
	unprocessed, err := tbl.BatchWrite(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, []kv.Record{{Key: "b", Value: "b"}}, unprocessed)
}

func TestTable_RedisBatchWriteServerError(t *testing.T) {
	ctx := context.Background()
	mr, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "item_bank")

	require.NoError(t, rdb.Ping(ctx).Err())
	mr.SetError("LOADING Redis is loading the dataset in memory")
	recs := []kv.Record{{Key: "a", Value: "a"}, {Key: "b", Value: "b"}}
	unprocessed, err := tbl.BatchWrite(ctx, recs)
	require.NoError(t, err)
	assert.Equal(t, recs, unprocessed)

	mr.SetError("")
	unprocessed, err = tbl.BatchWrite(ctx, unprocessed)
	require.NoError(t, err)
	assert.Empty(t, unprocessed)
	assert.Equal(t, []string{"a", "b"}, scanKeys(t, tbl, 10))
}

func TestTable_RedisConcurrentConditionalDelete(t *testing.T) {
	ctx := context.Background()
	_, rdb := setupMiniredis(t)
	tbl := New(rdb, "", "item_bank")
	_, err := tbl.Put(ctx, kv.Record{Key: "only", Value: "only"}, kv.Always())
	require.NoError(t, err)

	const claimants = 16
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners int
	)
	for i := 0; i < claimants; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			out, err := tbl.Delete(ctx, "only", kv.IfEquals("only"))
			if assert.NoError(t, err) && out == kv.Succeeded {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, winners)
}
