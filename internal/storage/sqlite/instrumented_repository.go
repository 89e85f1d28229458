package sqlite

import (
	"context"
	"database/sql"

	"github.com/italolelis/film_downloader/internal/film"
	"github.com/italolelis/film_downloader/internal/telemetry"
)

// InstrumentedFilmRepository wraps FilmRepository with telemetry.
type InstrumentedFilmRepository struct {
	repo      *FilmRepository
	telemetry *telemetry.Telemetry
}

// NewInstrumentedFilmRepository creates a new instrumented film repository.
func NewInstrumentedFilmRepository(dbConn *sql.DB, tel *telemetry.Telemetry) *InstrumentedFilmRepository {
	return &InstrumentedFilmRepository{
		repo:      NewFilmRepository(dbConn),
		telemetry: tel,
	}
}

func (r *InstrumentedFilmRepository) Put(ctx context.Context, record *film.Record) (int64, error) {
	var id int64

	err := r.telemetry.InstrumentDBOperation(ctx, "put", func(ctx context.Context) error {
		var err error
		id, err = r.repo.Put(ctx, record)

		return err
	})

	return id, err
}

func (r *InstrumentedFilmRepository) GetAll(ctx context.Context) ([]film.Record, error) {
	var records []film.Record

	err := r.telemetry.InstrumentDBOperation(ctx, "get_all", func(ctx context.Context) error {
		var err error
		records, err = r.repo.GetAll(ctx)

		return err
	})

	return records, err
}

func (r *InstrumentedFilmRepository) ListSummaries(ctx context.Context) ([]film.Summary, error) {
	var summaries []film.Summary

	err := r.telemetry.InstrumentDBOperation(ctx, "list_summaries", func(ctx context.Context) error {
		var err error
		summaries, err = r.repo.ListSummaries(ctx)

		return err
	})

	return summaries, err
}

func (r *InstrumentedFilmRepository) GetByID(ctx context.Context, id int64) (*film.Record, error) {
	var record *film.Record

	err := r.telemetry.InstrumentDBOperation(ctx, "get_by_id", func(ctx context.Context) error {
		var err error
		record, err = r.repo.GetByID(ctx, id)

		return err
	})

	return record, err
}

func (r *InstrumentedFilmRepository) Delete(ctx context.Context, id int64) error {
	return r.telemetry.InstrumentDBOperation(ctx, "delete", func(ctx context.Context) error {
		return r.repo.Delete(ctx, id)
	})
}

func (r *InstrumentedFilmRepository) Count(ctx context.Context) (int, error) {
	var n int

	err := r.telemetry.InstrumentDBOperation(ctx, "count", func(ctx context.Context) error {
		var err error
		n, err = r.repo.Count(ctx)

		return err
	})

	return n, err
}
