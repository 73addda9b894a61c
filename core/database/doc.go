// Package database handles SQL connections and schema inspection for the sql backend.
//
// It wraps GORM to configure MySQL (production) or SQLite (local runs and tests)
// connections based on the application's configuration.
//
// # Connect
//
// Connect opens the dialector selected by Config.Driver, applies pool settings and
// pings the server. A failed ping is a startup error: the backing store being
// unreachable is never masked.
//
// # Schema Inspection
//
// HasTable and GetTableColumns let the sql store refuse to start against a missing
// table and let the integrity feature compare live columns with the record model.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
//
//	columns, err := database.GetTableColumns(db, "item_bank")
package database
