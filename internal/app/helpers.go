package app

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/italolelis/film_downloader/internal/catalog"
	"github.com/italolelis/film_downloader/internal/config"
	"github.com/italolelis/film_downloader/internal/logctx"
	"github.com/italolelis/film_downloader/internal/storage/sqlite"
)

// This is an abstract factory for the catalog source.
func buildCatalogSource(cfg *config.Config) (catalog.Source, error) {
	switch strings.ToLower(cfg.CatalogSource) {
	case config.CatalogStatic:
		return catalog.Placeholder(), nil
	case config.CatalogHTTP:
		return catalog.NewHTTP(cfg.CatalogURL, nil), nil
	case config.CatalogFile:
		return catalog.NewFile(cfg.CatalogFile), nil
	}

	return nil, fmt.Errorf("invalid catalog source: %s", cfg.CatalogSource)
}

func loadCatalog(ctx context.Context, cfg *config.Config) (*catalog.Catalog, error) {
	src, err := buildCatalogSource(cfg)
	if err != nil {
		return nil, err
	}

	return catalog.Load(ctx, src, logctx.LoggerFromContext(ctx))
}

// openStore opens the film database for the one-shot commands.
func openStore(cfg *config.Config) (*sql.DB, *sqlite.FilmRepository, error) {
	db, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		return nil, nil, err
	}

	return db, sqlite.NewFilmRepository(db), nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", arg)
	}

	return id, nil
}
