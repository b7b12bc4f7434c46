// Package database provides SQLite connectivity for the show database.
//
// The transmitter persists channel configuration and the cue list here so
// a restart resumes the show exactly where it left off. Receivers do not
// open a database.
//
// This package manages:
//   - Database connection with WAL mode
//   - Schema migrations embedded in the binary
//   - Connection lifecycle and health checks
//
// All queries use parameterised statements, and the database file is
// restricted to owner read/write (0600).
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
package database
