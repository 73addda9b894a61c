package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"storagebox/core/utils"

	"github.com/redis/go-redis/v9"
)

// Redis records counters in redis hashes. The total hash is cumulative; per-minute
// buckets expire after ttl.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
	ttl    time.Duration
}

// RedisOption customizes a Redis recorder.
type RedisOption func(*Redis)

// WithPrefix sets the key prefix.
func WithPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = strings.Trim(prefix, ":") }
}

// WithTTL sets the expiry of per-minute buckets. Zero disables expiry.
func WithTTL(d time.Duration) RedisOption {
	return func(r *Redis) { r.ttl = d }
}

// NewRedis creates a redis backed recorder.
func NewRedis(rdb redis.UniversalClient, opts ...RedisOption) *Redis {
	r := &Redis{rdb: rdb, prefix: "storagebox", ttl: 24 * time.Hour}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Redis) totalKey() string { return r.prefix + ":stats:total" }

func (r *Redis) bucketKey(at time.Time) string {
	return fmt.Sprintf("%s:stats:minute:%s", r.prefix, at.UTC().Format("200601021504"))
}

// Record implements Recorder.
func (r *Redis) Record(ctx context.Context, ev Event) error {
	if r == nil || r.rdb == nil || ev.Outcome == "" {
		return nil
	}
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	pipe := r.rdb.Pipeline()
	pipe.HIncrBy(ctx, r.totalKey(), ev.Outcome, 1)
	bucket := r.bucketKey(at)
	pipe.HIncrBy(ctx, bucket, ev.Outcome, 1)
	if r.ttl > 0 {
		pipe.Expire(ctx, bucket, r.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("record %s: %w", ev.Outcome, err)
	}
	return nil
}

// Snapshot implements Recorder.
func (r *Redis) Snapshot(ctx context.Context) (Snapshot, error) {
	vals, err := r.rdb.HGetAll(ctx, r.totalKey()).Result()
	if err != nil {
		return Snapshot{}, fmt.Errorf("read stats: %w", err)
	}
	out := make(map[string]int64, len(vals))
	for k, v := range vals {
		out[k] = utils.ToInt64(v)
	}
	return Snapshot{Total: out}, nil
}
