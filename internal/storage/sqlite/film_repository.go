package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/italolelis/film_downloader/internal/film"
	"github.com/mattn/go-sqlite3"
)

// FilmRepository implements storage.FilmRepository on top of SQLite.
type FilmRepository struct {
	db *sql.DB
}

func NewFilmRepository(dbConn *sql.DB) *FilmRepository {
	return &FilmRepository{db: dbConn}
}

// Put inserts a new record and returns the id assigned by the store.
func (r *FilmRepository) Put(ctx context.Context, record *film.Record) (int64, error) {
	blob := record.Blob
	if blob == nil {
		// nil binds as NULL, an empty download is still a valid payload
		blob = []byte{}
	}

	res, err := r.db.ExecContext(ctx,
		`INSERT INTO films (original_id, title, url, blob, size, download_date) VALUES (?, ?, ?, ?, ?, ?)`,
		record.OriginalID,
		record.Title,
		record.URL,
		blob,
		record.Size,
		record.DownloadDate.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, &film.ConstraintError{Field: "url", Value: record.URL, Err: err}
		}

		return 0, &film.StorageError{Operation: "put", Err: err}
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, &film.StorageError{Operation: "put", Err: err}
	}

	return id, nil
}

// GetAll returns every stored film including its payload.
func (r *FilmRepository) GetAll(ctx context.Context) ([]film.Record, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, original_id, title, url, blob, size, download_date FROM films ORDER BY id`)
	if err != nil {
		return nil, &film.StorageError{Operation: "get_all", Err: err}
	}
	defer rows.Close()

	var records []film.Record

	for rows.Next() {
		var (
			record film.Record
			date   string
		)

		if err := rows.Scan(&record.ID, &record.OriginalID, &record.Title, &record.URL, &record.Blob, &record.Size, &date); err != nil {
			return nil, &film.StorageError{Operation: "get_all", Err: err}
		}

		if record.DownloadDate, err = parseDate(date); err != nil {
			return nil, &film.StorageError{Operation: "get_all", Err: err}
		}

		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, &film.StorageError{Operation: "get_all", Err: err}
	}

	return records, nil
}

// ListSummaries returns every stored film without loading the payloads.
func (r *FilmRepository) ListSummaries(ctx context.Context) ([]film.Summary, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, original_id, title, url, size, download_date FROM films ORDER BY id`)
	if err != nil {
		return nil, &film.StorageError{Operation: "list_summaries", Err: err}
	}
	defer rows.Close()

	var summaries []film.Summary

	for rows.Next() {
		var (
			s    film.Summary
			date string
		)

		if err := rows.Scan(&s.ID, &s.OriginalID, &s.Title, &s.URL, &s.Size, &date); err != nil {
			return nil, &film.StorageError{Operation: "list_summaries", Err: err}
		}

		if s.DownloadDate, err = parseDate(date); err != nil {
			return nil, &film.StorageError{Operation: "list_summaries", Err: err}
		}

		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, &film.StorageError{Operation: "list_summaries", Err: err}
	}

	return summaries, nil
}

// GetByID returns one film or film.ErrNotFound.
func (r *FilmRepository) GetByID(ctx context.Context, id int64) (*film.Record, error) {
	var (
		record film.Record
		date   string
	)

	err := r.db.QueryRowContext(ctx,
		`SELECT id, original_id, title, url, blob, size, download_date FROM films WHERE id = ?`, id,
	).Scan(&record.ID, &record.OriginalID, &record.Title, &record.URL, &record.Blob, &record.Size, &date)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, film.ErrNotFound
	}

	if err != nil {
		return nil, &film.StorageError{Operation: "get_by_id", Err: err}
	}

	if record.DownloadDate, err = parseDate(date); err != nil {
		return nil, &film.StorageError{Operation: "get_by_id", Err: err}
	}

	return &record, nil
}

// Delete removes a film. Deleting an id that does not exist is not an error.
func (r *FilmRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM films WHERE id = ?`, id); err != nil {
		return &film.StorageError{Operation: "delete", Err: err}
	}

	return nil
}

// Count returns the number of stored films.
func (r *FilmRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM films`).Scan(&n); err != nil {
		return 0, &film.StorageError{Operation: "count", Err: err}
	}

	return n, nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid download_date %q: %w", s, err)
	}

	return t, nil
}
