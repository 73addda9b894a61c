package sqlstore

import (
	"context"
	"errors"
	"fmt"

	"storagebox/core/database"
	"storagebox/core/kv"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Table is a kv.Table stored in one SQL table.
type Table struct {
	db     *gorm.DB
	name   string
	logger *zap.Logger
}

// Open returns a Table for name after checking that it exists.
// With create set, a missing table is migrated instead of reported.
func Open(db *gorm.DB, name string, create bool, logger *zap.Logger) (*Table, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: database connection is nil")
	}
	if create {
		if err := db.Table(name).AutoMigrate(&Record{}); err != nil {
			return nil, fmt.Errorf("sqlstore: failed to migrate table %s: %w", name, err)
		}
	} else if !database.HasTable(db, name) {
		return nil, fmt.Errorf("%w: %s", kv.ErrTableNotFound, name)
	}
	return New(db, name, logger), nil
}

// New wraps an existing table without checking it.
func New(db *gorm.DB, name string, logger *zap.Logger) *Table {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Table{db: db, name: name, logger: logger}
}

func (t *Table) Name() string { return t.name }

func (t *Table) table(ctx context.Context) *gorm.DB {
	return t.db.WithContext(ctx).Table(t.name)
}

func (t *Table) Put(ctx context.Context, rec kv.Record, cond kv.Condition) (kv.Outcome, error) {
	row := Record{Key: Key(rec.Key), Value: rec.Value}

	switch {
	case cond.IsAlways():
		err := t.table(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: keyColumn}},
			DoUpdates: clause.AssignmentColumns([]string{valueColumn}),
		}).Create(&row).Error
		if err != nil {
			return kv.ConditionFailed, fmt.Errorf("sqlstore: put into %s: %w", t.name, err)
		}
		return kv.Succeeded, nil

	case cond.IsIfAbsent():
		res := t.table(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return kv.ConditionFailed, fmt.Errorf("sqlstore: conditional put into %s: %w", t.name, res.Error)
		}
		if res.RowsAffected == 0 {
			return kv.ConditionFailed, nil
		}
		return kv.Succeeded, nil

	default:
		return kv.ConditionFailed, kv.ErrUnsupportedCondition
	}
}

func (t *Table) Get(ctx context.Context, key string) (string, bool, error) {
	var row Record
	err := t.table(ctx).Where(keyColumn+" = ?", key).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("sqlstore: get from %s: %w", t.name, err)
	}
	return row.Value, true, nil
}

func (t *Table) Delete(ctx context.Context, key string, cond kv.Condition) (kv.Outcome, error) {
	if cond.IsIfAbsent() {
		return kv.ConditionFailed, kv.ErrUnsupportedCondition
	}

	q := t.table(ctx).Where(keyColumn+" = ?", key)
	expected, conditional := cond.Expected()
	if conditional {
		q = q.Where(valueColumn+" = ?", expected)
	}

	res := q.Delete(&Record{})
	if res.Error != nil {
		return kv.ConditionFailed, fmt.Errorf("sqlstore: delete from %s: %w", t.name, res.Error)
	}
	if conditional && res.RowsAffected == 0 {
		return kv.ConditionFailed, nil
	}
	return kv.Succeeded, nil
}

func (t *Table) Scan(ctx context.Context, limit int, cursor string) (kv.Page, error) {
	if limit <= 0 {
		limit = 1
	}

	// One extra row tells us whether another page exists.
	q := t.table(ctx).Order(keyColumn).Limit(limit + 1)
	if cursor != "" {
		q = q.Where(keyColumn+" > ?", cursor)
	}

	var rows []Record
	if err := q.Find(&rows).Error; err != nil {
		return kv.Page{}, fmt.Errorf("sqlstore: scan %s: %w", t.name, err)
	}

	more := len(rows) > limit
	if more {
		rows = rows[:limit]
	}

	page := kv.Page{Records: make([]kv.Record, 0, len(rows))}
	for _, r := range rows {
		page.Records = append(page.Records, kv.Record{Key: string(r.Key), Value: r.Value})
	}
	if more {
		page.Next = string(rows[len(rows)-1].Key)
	}
	return page, nil
}

// BatchWrite upserts recs in a single statement. A transient failure (deadlock,
// lock wait timeout, busy sqlite file) reports the whole batch as unprocessed.
func (t *Table) BatchWrite(ctx context.Context, recs []kv.Record) ([]kv.Record, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	rows := make([]Record, 0, len(recs))
	for _, r := range recs {
		rows = append(rows, Record{Key: Key(r.Key), Value: r.Value})
	}

	err := t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Table(t.name).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: keyColumn}},
			DoUpdates: clause.AssignmentColumns([]string{valueColumn}),
		}).Create(&rows).Error
	})
	if err == nil {
		return nil, nil
	}
	if ctx.Err() == nil && isTransient(err) {
		t.logger.Warn("Batch write rejected by database, reporting as unprocessed",
			zap.String("table", t.name),
			zap.Int("records", len(recs)),
			zap.Error(err),
		)
		return recs, nil
	}
	return nil, fmt.Errorf("sqlstore: batch write into %s: %w", t.name, err)
}

var _ kv.Table = (*Table)(nil)
