// Package database opens the GORM connection that stores collections.
//
// MySQL is used in production. SQLite serves single-user installs and tests;
// for sqlite the Name field is the database file (or ":memory:").
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    log.Fatal("Database connection failed", err)
//	}
package database
