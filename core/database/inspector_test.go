package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetTableColumns(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	err = db.Exec("CREATE TABLE item_bank (record_key TEXT PRIMARY KEY, record_value TEXT)").Error
	require.NoError(t, err)

	columns, err := GetTableColumns(db, "item_bank")
	require.NoError(t, err)
	assert.Len(t, columns, 2)

	colMap := make(map[string]ColumnInfo)
	for _, col := range columns {
		colMap[col.Field] = col
	}

	assert.Equal(t, "text", colMap["record_key"].Type)
	assert.Equal(t, "PRI", colMap["record_key"].Key)
	assert.Equal(t, "text", colMap["record_value"].Type)
	assert.Empty(t, colMap["record_value"].Key)

	// PRAGMA table_info returns an empty result for unknown tables.
	cols, err := GetTableColumns(db, "non_existent")
	assert.NoError(t, err)
	assert.Empty(t, cols)
}

func TestHasTable(t *testing.T) {
	db, err := Connect(Config{Driver: DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)

	assert.False(t, HasTable(db, "deduplication"))
	require.NoError(t, db.Exec("CREATE TABLE deduplication (record_key TEXT PRIMARY KEY, record_value TEXT)").Error)
	assert.True(t, HasTable(db, "deduplication"))
}
