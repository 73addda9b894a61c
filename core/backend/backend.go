package backend

import (
	"errors"
	"fmt"

	"storagebox/core/kv"
	"storagebox/core/kv/memory"
	"storagebox/core/kv/redisstore"
	"storagebox/core/kv/sqlstore"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	// SQL stores tables through gorm (mysql or sqlite).
	SQL = "sql"
	// Redis stores tables as prefixed redis keys.
	Redis = "redis"
	// Memory stores tables in process memory. Development and tests only.
	Memory = "memory"
)

// IsValid reports whether kind names a supported backend.
func IsValid(kind string) bool {
	switch kind {
	case SQL, Redis, Memory:
		return true
	default:
		return false
	}
}

// Options selects and names the tables to open.
type Options struct {
	Kind         string
	ItemsTable   string
	LedgerTable  string
	CreateTables bool
	// RedisPrefix namespaces redis keys.
	RedisPrefix string
}

// Tables holds the two tables the service runs on.
type Tables struct {
	Items  kv.Table
	Ledger kv.Table
}

// Open opens the item and ledger tables. db is required for SQL, rdb for Redis.
// A missing SQL table is reported as kv.ErrTableNotFound and must abort startup.
func Open(opts Options, db *gorm.DB, rdb redis.UniversalClient, logger *zap.Logger) (*Tables, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ItemsTable == "" || opts.LedgerTable == "" {
		return nil, errors.New("table names must not be empty")
	}
	if opts.ItemsTable == opts.LedgerTable {
		return nil, fmt.Errorf("items and ledger tables must differ, both are %q", opts.ItemsTable)
	}

	switch opts.Kind {
	case SQL:
		if db == nil {
			return nil, errors.New("sql backend requires a database connection")
		}
		items, err := sqlstore.Open(db, opts.ItemsTable, opts.CreateTables, logger)
		if err != nil {
			return nil, fmt.Errorf("open items table: %w", err)
		}
		ledger, err := sqlstore.Open(db, opts.LedgerTable, opts.CreateTables, logger)
		if err != nil {
			return nil, fmt.Errorf("open ledger table: %w", err)
		}
		return &Tables{Items: items, Ledger: ledger}, nil
	case Redis:
		if rdb == nil {
			return nil, errors.New("redis backend requires a redis client")
		}
		return &Tables{
			Items:  redisstore.New(rdb, opts.RedisPrefix, opts.ItemsTable),
			Ledger: redisstore.New(rdb, opts.RedisPrefix, opts.LedgerTable),
		}, nil
	case Memory:
		logger.Warn("Using in-memory tables; contents are lost on exit")
		return &Tables{
			Items:  memory.NewTable(opts.ItemsTable),
			Ledger: memory.NewTable(opts.LedgerTable),
		}, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", opts.Kind)
	}
}
