package sqlite

import (
	"database/sql"
	"fmt"
	"strings"

	// Import the SQLite driver.
	_ "github.com/mattn/go-sqlite3"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS films (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		original_id INTEGER NOT NULL,
		title TEXT NOT NULL,
		url TEXT NOT NULL,
		blob BLOB NOT NULL,
		size TEXT NOT NULL,
		download_date TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_films_title ON films(title)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_films_url ON films(url)`,
}

// InitDB opens the SQLite database at path and creates the films table and
// its indexes if they don't exist. Opening an existing database is a no-op
// apart from the connection.
func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// A single connection serialises every transaction, the unique URL index
	// is the only guard between concurrent downloads.
	db.SetMaxOpenConns(1)

	for i, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()

			return nil, fmt.Errorf("schema statement %d failed: %w", i, err)
		}
	}

	return db, nil
}

func dsn(path string) string {
	if strings.Contains(path, "?") {
		return path
	}

	return path + "?_busy_timeout=5000"
}
