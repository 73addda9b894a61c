package cmd

import (
	"context"
	"fmt"

	"storagebox/core/backend"
	"storagebox/core/config"
	"storagebox/core/database"
	"storagebox/core/kv/redisstore"
	"storagebox/core/logger"
	"storagebox/core/stats"
	"storagebox/core/storage"
	"storagebox/feature/bank"
	"storagebox/feature/bank/ledger"
	"storagebox/feature/bank/pool"
	"storagebox/feature/integrity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the wired set of services shared by the server and the CLI commands.
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	db        *gorm.DB
	rdb       *redis.Client
	tables    *backend.Tables
	bank      *bank.Service
	integrity *integrity.Service
}

// bootstrap loads configuration and connects every backend the configuration asks for.
// An unreachable store is an error; storage is only created when enabled.
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.LoadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	a := &app{cfg: cfg, logger: logg}

	if cfg.Bank.Backend == backend.SQL {
		if a.db, err = database.Connect(cfg.Database); err != nil {
			return nil, err
		}
		logg.Info("Connected to database", zap.String("driver", cfg.Database.Driver), zap.String("name", cfg.Database.Name))
	}

	if cfg.Bank.Backend == backend.Redis || (cfg.Stats.Enabled && cfg.Stats.Backend == stats.BackendRedis) {
		if a.rdb, err = redisstore.Connect(ctx, cfg.Redis); err != nil {
			return nil, err
		}
		logg.Info("Connected to redis", zap.String("addr", cfg.Redis.Addr))
	}

	// A nil *redis.Client must not become a non-nil interface.
	var rdb redis.UniversalClient
	if a.rdb != nil {
		rdb = a.rdb
	}

	a.tables, err = backend.Open(cfg.Bank.BackendOptions(cfg.Redis.Prefix), a.db, rdb, logg)
	if err != nil {
		return nil, err
	}

	rec, err := stats.New(cfg.Stats, rdb, cfg.Redis.Prefix)
	if err != nil {
		return nil, err
	}

	var client storage.Client
	if cfg.Storage.Enabled {
		if client, err = storage.NewClient(cfg.Storage); err != nil {
			return nil, err
		}
	}

	p := pool.New(a.tables.Items, cfg.Bank.PoolOptions(), logger.ForTable(logg, "pool", a.tables.Items.Name()))
	l := ledger.New(a.tables.Ledger, cfg.Bank.LedgerOptions()...)
	resolver := bank.NewResolver(p, l, logger.ForTable(logg, "resolver", a.tables.Ledger.Name()),
		bank.WithLookupFirst(cfg.Bank.LookupFirst),
		bank.WithStats(rec))

	a.bank = bank.NewService(resolver, client, cfg.Storage.Bucket, cfg.Bank.ImportChunkSize, rec, logg)
	a.integrity = integrity.NewService(a.tables, a.db, client, cfg.Storage, logg)
	return a, nil
}

// close releases connections opened by bootstrap.
func (a *app) close() {
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
	if a.db != nil {
		if sqlDB, err := a.db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	_ = a.logger.Sync()
}
