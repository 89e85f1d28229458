package storage

import (
	"context"

	"github.com/italolelis/film_downloader/internal/film"
)

// FilmReadRepository reads stored films.
type FilmReadRepository interface {
	GetAll(ctx context.Context) ([]film.Record, error)
	ListSummaries(ctx context.Context) ([]film.Summary, error)
	GetByID(ctx context.Context, id int64) (*film.Record, error) // film.ErrNotFound when absent
	Count(ctx context.Context) (int, error)
}

// FilmWriteRepository stores and removes films. Records are never updated.
type FilmWriteRepository interface {
	Put(ctx context.Context, record *film.Record) (int64, error) // *film.ConstraintError on a duplicate URL
	Delete(ctx context.Context, id int64) error                 // no error when the film does not exist
}

// FilmRepository is the full local store.
type FilmRepository interface {
	FilmReadRepository
	FilmWriteRepository
}
