package stats

import "time"

const (
	// BackendMemory keeps counters in process memory.
	BackendMemory = "memory"
	// BackendRedis keeps counters in redis hashes shared by all instances.
	BackendRedis = "redis"
)

// Config defines how resolution statistics are recorded.
type Config struct {
	Enabled bool          `mapstructure:"enabled" default:"true"`
	Backend string        `mapstructure:"backend" default:"memory"`
	TTL     time.Duration `mapstructure:"ttl" default:"24h"`
}
