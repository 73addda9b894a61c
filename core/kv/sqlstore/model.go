package sqlstore

import (
	"fmt"

	"storagebox/core/database"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// Record is the row layout shared by every sql-backed table.
type Record struct {
	Key   Key    `gorm:"column:record_key;primaryKey"`
	Value string `gorm:"column:record_value;type:text;not null"`
}

const (
	keyColumn   = "record_key"
	valueColumn = "record_value"
)

// KeyColumn is the primary key column of every sql-backed table.
const KeyColumn = keyColumn

// MaxKeyLength is the longest key in bytes the schema accepts. It is the InnoDB
// index prefix limit.
const MaxKeyLength = 3072

// Key is a record key. Keys compare byte for byte: MySQL stores them as varbinary
// because every utf8mb4 collation folds case, folds accents or pads trailing spaces.
type Key string

// GormDBDataType implements schema.GormDataTypeInterface.
func (Key) GormDBDataType(db *gorm.DB, _ *schema.Field) string {
	return KeyType(db.Dialector.Name())
}

// KeyType is the column type of record_key for a gorm dialect.
func KeyType(dialect string) string {
	if dialect == database.DriverSQLite {
		// SQLite's default BINARY collation already compares bytes.
		return fmt.Sprintf("varchar(%d)", MaxKeyLength)
	}
	return fmt.Sprintf("varbinary(%d)", MaxKeyLength)
}
