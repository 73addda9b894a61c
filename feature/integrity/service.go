package integrity

import (
	"context"
	"errors"
	"time"

	"storagebox/core/backend"
	"storagebox/core/kv"
	"storagebox/core/reconcile"
	"storagebox/core/storage"
	"storagebox/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	// ErrSchemaUnavailable is returned by schema checks when the sql backend is not in use.
	ErrSchemaUnavailable = errors.New("schema check requires the sql backend")
	// ErrStorageDisabled is returned by storage checks when object storage is not configured.
	ErrStorageDisabled = errors.New("object storage is not configured")
)

// defaultAuditCacheTTL keeps single-item audits from rescanning both tables on every call.
const defaultAuditCacheTTL = time.Minute

// Service handles integrity checks.
type Service struct {
	items    kv.Table
	ledger   kv.Table
	db       *gorm.DB
	client   storage.Client
	bucket   string
	region   string
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewService creates a new integrity service. db is nil unless the sql backend is
// in use; client is nil when object storage is not configured.
func NewService(tables *backend.Tables, db *gorm.DB, client storage.Client, cfg storage.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		items:    tables.Items,
		ledger:   tables.Ledger,
		db:       db,
		client:   client,
		bucket:   cfg.Bucket,
		region:   cfg.Region,
		cacheTTL: defaultAuditCacheTTL,
		logger:   logger,
	}
}

// HasSchema reports whether schema checks can run.
func (s *Service) HasSchema() bool { return s.db != nil }

// HasStorage reports whether storage checks can run.
func (s *Service) HasStorage() bool { return s.client != nil }

// CheckTables verifies both tables answer a read.
func (s *Service) CheckTables(ctx context.Context) (map[string]checks.TableStatus, bool) {
	return checks.CheckTables(ctx, s.items, s.ledger)
}

// CheckSchema compares the live sql columns of both tables with the record model.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	if s.db == nil {
		return nil, ErrSchemaUnavailable
	}
	return checks.CheckSchema(s.db, s.items.Name(), s.ledger.Name())
}

// CheckStorage verifies the import bucket.
func (s *Service) CheckStorage(ctx context.Context) (*checks.StorageReport, error) {
	if s.client == nil {
		return nil, ErrStorageDisabled
	}
	return checks.CheckStorage(ctx, s.client, s.bucket)
}

// FixStorage creates the import bucket.
func (s *Service) FixStorage(ctx context.Context) error {
	if s.client == nil {
		return ErrStorageDisabled
	}
	return checks.FixStorage(ctx, s.client, s.bucket, s.region, s.logger)
}

// CheckLedger audits the pool against the ledger. With fix set, items that are both
// bound and still in the pool are removed; the returned count is how many were.
func (s *Service) CheckLedger(ctx context.Context, fix bool) (*reconcile.Plan, int, error) {
	plan, executed, err := reconcile.AuditAndApply(ctx, s.spec(0), reconcile.Options{
		DryRun:    !fix,
		Confirmed: fix,
	})
	if err != nil {
		return plan, executed, err
	}
	if plan.Summary.MultiplyBound > 0 {
		s.logger.Warn("Items bound to more than one deduplication id",
			zap.Int("count", plan.Summary.MultiplyBound))
	}
	if fix && executed > 0 {
		s.logger.Info("Removed bound items from pool", zap.Int("removed", executed))
	}
	return plan, executed, nil
}

// AuditItem audits a single item from a short-lived cached index.
func (s *Service) AuditItem(ctx context.Context, item string) (*reconcile.Result, error) {
	return reconcile.AuditItem(ctx, s.spec(s.cacheTTL), item)
}

func (s *Service) spec(ttl time.Duration) *reconcile.Spec {
	return &reconcile.Spec{Items: s.items, Ledger: s.ledger, CacheTTL: ttl}
}
