package stats

import (
	"fmt"

	"github.com/redis/go-redis/v9"
)

// New builds the recorder selected by cfg. rdb is only required for the redis backend.
func New(cfg Config, rdb redis.UniversalClient, prefix string) (Recorder, error) {
	if !cfg.Enabled {
		return Nop{}, nil
	}
	switch cfg.Backend {
	case "", BackendMemory:
		return NewMemory(), nil
	case BackendRedis:
		if rdb == nil {
			return nil, fmt.Errorf("stats backend %q requires a redis client", cfg.Backend)
		}
		return NewRedis(rdb, WithPrefix(prefix), WithTTL(cfg.TTL)), nil
	default:
		return nil, fmt.Errorf("unknown stats backend %q", cfg.Backend)
	}
}
