package checks

import (
	"fmt"
	"reflect"
	"strings"

	"storagebox/core/database"
	"storagebox/core/kv/sqlstore"

	"gorm.io/gorm"
)

// SchemaReport strictly types the result of a schema check.
type SchemaReport struct {
	Matched bool                   `json:"matched"`
	Tables  map[string]TableSchema `json:"tables"`
	Errors  []string               `json:"errors"`
}

// TableSchema is the schema verdict for one table.
type TableSchema struct {
	MissingColumns []string `json:"missing_columns"`
	TypeMismatches []string `json:"type_mismatches"`
	KeyMismatches  []string `json:"key_mismatches"`
	Status         string   `json:"status"` // "ok", "error"
}

// CheckSchema verifies that each table has the columns of sqlstore.Record, using its
// gorm tags as the source of truth. The key column type depends on the dialect.
func CheckSchema(db *gorm.DB, tableNames ...string) (*SchemaReport, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is nil")
	}

	report := &SchemaReport{
		Matched: true,
		Tables:  make(map[string]TableSchema),
		Errors:  []string{},
	}

	model := reflect.TypeOf(sqlstore.Record{})
	for _, tableName := range tableNames {
		tbl := TableSchema{
			MissingColumns: []string{},
			TypeMismatches: []string{},
			KeyMismatches:  []string{},
			Status:         "ok",
		}

		actualCols, err := database.GetTableColumns(db, tableName)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("Failed to inspect table %s: %v", tableName, err))
			report.Matched = false
			continue
		}
		if len(actualCols) == 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("Table %s does not exist", tableName))
			report.Matched = false
			continue
		}

		actualMap := make(map[string]database.ColumnInfo, len(actualCols))
		for _, col := range actualCols {
			actualMap[col.Field] = col
		}

		for i := 0; i < model.NumField(); i++ {
			gormTag := model.Field(i).Tag.Get("gorm")
			colName := parseGormColumn(gormTag)
			if colName == "" {
				continue
			}

			actCol, exists := actualMap[colName]
			if !exists {
				tbl.MissingColumns = append(tbl.MissingColumns, colName)
				tbl.Status = "error"
				continue
			}

			expType := strings.ToLower(parseGormType(gormTag))
			if colName == sqlstore.KeyColumn {
				expType = sqlstore.KeyType(db.Dialector.Name())
			}
			if expType != "" && !typeMatches(expType, actCol.Type) {
				tbl.TypeMismatches = append(tbl.TypeMismatches,
					fmt.Sprintf("%s: expected %s, got %s", colName, expType, actCol.Type))
				tbl.Status = "error"
			}

			if isPrimaryKey(gormTag) && actCol.Key != "PRI" {
				tbl.KeyMismatches = append(tbl.KeyMismatches, fmt.Sprintf("%s: expected primary key", colName))
				tbl.Status = "error"
			}
		}

		if tbl.Status != "ok" {
			report.Matched = false
		}
		report.Tables[tableName] = tbl
	}

	return report, nil
}

// typeMatches compares a tag type to a reported column type. Text columns may be
// reported as any of the MySQL text widths.
func typeMatches(expected, actual string) bool {
	if expected == "text" {
		return strings.Contains(actual, "text")
	}
	return strings.Contains(actual, expected)
}

// Helpers to parse simple GORM tags
func parseGormColumn(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "column:") {
			return strings.TrimPrefix(p, "column:")
		}
	}
	return ""
}

func parseGormType(tag string) string {
	for _, p := range strings.Split(tag, ";") {
		if strings.HasPrefix(p, "type:") {
			return strings.TrimPrefix(p, "type:")
		}
	}
	return ""
}

func isPrimaryKey(tag string) bool {
	for _, p := range strings.Split(tag, ";") {
		if strings.EqualFold(p, "primaryKey") || strings.EqualFold(p, "primary_key") {
			return true
		}
	}
	return false
}
