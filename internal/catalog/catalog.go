// Package catalog supplies the list of remote films available for download.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/italolelis/film_downloader/internal/film"
)

// Source lists the films that can be downloaded, in display order.
type Source interface {
	List(ctx context.Context) ([]film.Item, error)
}

// Catalog is a loaded snapshot of a Source, addressable by item id.
type Catalog struct {
	items []film.Item
	byID  map[int64]film.Item
}

// New indexes items by id. When two items share an id the first one wins and
// the later ones are returned as duplicates so the caller can report them.
func New(items []film.Item) (*Catalog, []film.Item) {
	c := &Catalog{byID: make(map[int64]film.Item, len(items))}

	var duplicates []film.Item

	for _, item := range items {
		if _, ok := c.byID[item.ID]; ok {
			duplicates = append(duplicates, item)

			continue
		}

		c.byID[item.ID] = item
		c.items = append(c.items, item)
	}

	return c, duplicates
}

// Load lists the source and indexes the result, logging dropped duplicates.
func Load(ctx context.Context, src Source, logger *slog.Logger) (*Catalog, error) {
	items, err := src.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog: %w", err)
	}

	c, duplicates := New(items)
	for _, d := range duplicates {
		logger.Warn("duplicate catalog id, keeping the first entry", "catalog_id", d.ID, "title", d.Title)
	}

	logger.Debug("catalog loaded", "count", len(c.items))

	return c, nil
}

// Items returns the catalog in display order.
func (c *Catalog) Items() []film.Item {
	return c.items
}

// Get returns the item with the given id.
func (c *Catalog) Get(id int64) (film.Item, bool) {
	item, ok := c.byID[id]

	return item, ok
}

// Len returns the number of distinct items.
func (c *Catalog) Len() int {
	return len(c.items)
}
