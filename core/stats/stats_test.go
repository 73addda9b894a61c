package stats

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_RecordAndSnapshot(t *testing.T) {
	m := NewMemory()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = m.Record(ctx, Event{Outcome: "bound"})
		}()
	}
	wg.Wait()
	require.NoError(t, m.Record(ctx, Event{Outcome: "replayed"}))
	require.NoError(t, m.Record(ctx, Event{}))

	snap, err := m.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"bound": 50, "replayed": 1}, snap.Total)

	snap.Total["bound"] = 0
	again, _ := m.Snapshot(ctx)
	assert.Equal(t, int64(50), again.Total["bound"])
}

func TestNop(t *testing.T) {
	var r Recorder = Nop{}
	require.NoError(t, r.Record(context.Background(), Event{Outcome: "bound"}))
	snap, err := r.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snap.Total)
}

func TestNew(t *testing.T) {
	r, err := New(Config{Enabled: false}, nil, "")
	require.NoError(t, err)
	assert.IsType(t, Nop{}, r)

	r, err = New(Config{Enabled: true, Backend: BackendMemory}, nil, "")
	require.NoError(t, err)
	assert.IsType(t, &Memory{}, r)

	_, err = New(Config{Enabled: true, Backend: BackendRedis}, nil, "")
	assert.Error(t, err)

	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	defer rdb.Close()
	r, err = New(Config{Enabled: true, Backend: BackendRedis, TTL: time.Hour}, rdb, "svc:")
	require.NoError(t, err)
	red := r.(*Redis)
	assert.Equal(t, "svc", red.prefix)
	assert.Equal(t, time.Hour, red.ttl)

	_, err = New(Config{Enabled: true, Backend: "kafka"}, nil, "")
	assert.Error(t, err)
}

func TestRedis_Keys(t *testing.T) {
	r := NewRedis(nil, WithPrefix("box"))
	at := time.Date(2024, 3, 5, 10, 7, 30, 0, time.UTC)
	assert.Equal(t, "box:stats:total", r.totalKey())
	assert.Equal(t, "box:stats:minute:202403051007", r.bucketKey(at))
}

func TestRedis_RecordWithoutClientIsNoop(t *testing.T) {
	var r *Redis
	assert.NoError(t, r.Record(context.Background(), Event{Outcome: "bound"}))
}

func TestRedis_UnreachableServer(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()
	r := NewRedis(rdb)

	err := r.Record(context.Background(), Event{Outcome: "bound"})
	assert.Error(t, err)
	_, err = r.Snapshot(context.Background())
	assert.Error(t, err)
}
