package bank

import (
	"errors"
	"fmt"
	"time"

	"storagebox/core/backend"
	"storagebox/core/kv/sqlstore"
	"storagebox/feature/bank/ledger"
	"storagebox/feature/bank/pool"
)

// Config holds the tunables of the item pool, the ledger and the resolver.
type Config struct {
	// Backend selects the table store: sql, redis or memory.
	Backend string `mapstructure:"backend" default:"sql"`
	// ItemsTable is the table holding unclaimed items.
	ItemsTable string `mapstructure:"items_table" default:"item_bank"`
	// LedgerTable is the table mapping deduplication ids to items.
	LedgerTable string `mapstructure:"ledger_table" default:"deduplication"`
	// CreateTables migrates missing SQL tables instead of failing startup.
	CreateTables bool `mapstructure:"create_tables" default:"false"`
	// MaxItemSize is the exclusive upper bound on an item's length in bytes.
	MaxItemSize int `mapstructure:"max_item_size" default:"1024"`
	// MaxBatchSize is the number of records per batch write.
	MaxBatchSize int `mapstructure:"max_batch_size" default:"25"`
	// PageSize is the number of candidates fetched per claim scan page.
	PageSize int `mapstructure:"page_size" default:"25"`
	// BackoffBase is the first delay after a partially failed batch write.
	BackoffBase time.Duration `mapstructure:"backoff_base" default:"100ms"`
	// MaxBatchRetries is the number of consecutive partial failures tolerated per insert.
	MaxBatchRetries int `mapstructure:"max_batch_retries" default:"8"`
	// MaxPendingBatches caps the batches one insert may queue. 0 disables the cap.
	MaxPendingBatches int `mapstructure:"max_pending_batches" default:"0"`
	// ClaimMaxPages caps the pages one claim may scan. 0 disables the cap.
	ClaimMaxPages int `mapstructure:"claim_max_pages" default:"100"`
	// ClaimTimeout bounds one claim scan. 0 disables it.
	ClaimTimeout time.Duration `mapstructure:"claim_timeout" default:"10s"`
	// LookupFirst reads the ledger before claiming so replays leave the pool untouched.
	LookupFirst bool `mapstructure:"lookup_first" default:"false"`
	// ImportChunkSize is the number of lines handed to one insert during an import.
	ImportChunkSize int `mapstructure:"import_chunk_size" default:"500"`
}

// Validate rejects configurations the service cannot start with.
func (c Config) Validate() error {
	if !backend.IsValid(c.Backend) {
		return fmt.Errorf("invalid bank backend %q (want %s, %s or %s)", c.Backend, backend.SQL, backend.Redis, backend.Memory)
	}
	if c.ItemsTable == "" || c.LedgerTable == "" {
		return errors.New("bank table names must not be empty")
	}
	if c.ItemsTable == c.LedgerTable {
		return fmt.Errorf("bank items and ledger tables must differ, both are %q", c.ItemsTable)
	}
	if c.MaxBatchSize < 0 || c.PageSize < 0 || c.MaxItemSize < 0 {
		return errors.New("bank sizes must not be negative")
	}
	if c.BackoffBase < 0 || c.ClaimTimeout < 0 {
		return errors.New("bank backoff_base and claim_timeout must not be negative")
	}
	// Items are stored as keys, so the largest accepted item must fit the key column.
	if c.Backend == backend.SQL && c.MaxItemSize > sqlstore.MaxKeyLength+1 {
		return fmt.Errorf("bank max_item_size %d exceeds the sql key limit of %d bytes", c.MaxItemSize, sqlstore.MaxKeyLength)
	}
	return nil
}

// LedgerOptions converts the configuration to ledger options.
func (c Config) LedgerOptions() []ledger.Option {
	if c.Backend == backend.SQL {
		return []ledger.Option{ledger.WithMaxIDLength(sqlstore.MaxKeyLength)}
	}
	return nil
}

// PoolOptions converts the configuration to pool tunables.
func (c Config) PoolOptions() pool.Options {
	return pool.Options{
		MaxItemSize:       c.MaxItemSize,
		MaxBatchSize:      c.MaxBatchSize,
		PageSize:          c.PageSize,
		BackoffBase:       c.BackoffBase,
		MaxBatchRetries:   c.MaxBatchRetries,
		MaxPendingBatches: c.MaxPendingBatches,
		ClaimMaxPages:     c.ClaimMaxPages,
		ClaimTimeout:      c.ClaimTimeout,
	}
}

// BackendOptions converts the configuration to table open options.
func (c Config) BackendOptions(redisPrefix string) backend.Options {
	return backend.Options{
		Kind:         c.Backend,
		ItemsTable:   c.ItemsTable,
		LedgerTable:  c.LedgerTable,
		CreateTables: c.CreateTables,
		RedisPrefix:  redisPrefix,
	}
}
