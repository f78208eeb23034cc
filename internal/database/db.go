package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// busyTimeoutMS covers the brief overlap when a second CLI invocation hits
// the database file while another is mid-write.
const busyTimeoutMS = 5000

// Open opens the engine's sqlite database. Foreign keys are enforced so
// rule, schedule, and transaction references cannot dangle.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_foreign_keys=on&_busy_timeout=%d", path, busyTimeoutMS)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers anyway; a single connection keeps the
	// repositories from fighting over SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(0)
	return db, nil
}

// WithTx runs fn in a transaction, rolling back on error. Schedule and
// account-flag mutations go through this so a failure leaves no partial
// state.
func WithTx(db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Now returns UTC truncated to seconds, matching sqlite's CURRENT_TIMESTAMP
// resolution so stored and computed times compare cleanly.
func Now() time.Time {
	return time.Now().UTC().Truncate(time.Second)
}
