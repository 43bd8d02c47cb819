package database

import (
	"database/sql"
	"strings"

	_ "modernc.org/sqlite" // SQLite driver
)

// filePragmas make a file database wait for locks held by other processes
// instead of failing with SQLITE_BUSY.
const filePragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"

// New creates a new database connection pool. The pool holds a single
// connection, so writes from concurrent requests are serialized.
func New(dataSourceName string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", withPragmas(dataSourceName))
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func withPragmas(dsn string) string {
	if dsn == ":memory:" || strings.Contains(dsn, "_pragma=") {
		return dsn
	}
	if strings.Contains(dsn, "?") {
		return dsn + "&" + filePragmas
	}
	return dsn + "?" + filePragmas
}

// Migrate runs the SQL statements to set up the database schema.
// Every collection shares one table; the body column holds the JSON document.
func Migrate(db *sql.DB) error {
	const sqlStmt = `
	CREATE TABLE IF NOT EXISTS documents (
		collection TEXT NOT NULL,
		id TEXT NOT NULL,
		body TEXT NOT NULL CHECK (json_valid(body)),
		PRIMARY KEY (collection, id)
	);
	`
	_, err := db.Exec(sqlStmt)
	return err
}
