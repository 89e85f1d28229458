package catalog

import (
	"context"

	"github.com/italolelis/film_downloader/internal/film"
)

// Static is a fixed in-memory catalog.
type Static []film.Item

// List returns a copy of the fixed items.
func (s Static) List(context.Context) ([]film.Item, error) {
	items := make([]film.Item, len(s))
	copy(items, s)

	return items, nil
}

// Placeholder is the catalog served when no real source is configured.
func Placeholder() Static {
	return Static{
		{
			ID:        1,
			Title:     "Example Film 1",
			URL:       "https://example.com/film1.mp4",
			Thumbnail: "https://example.com/thumb1.jpg",
			Size:      "1.2GB",
		},
		{
			ID:        2,
			Title:     "Example Film 2",
			URL:       "https://example.com/film2.mp4",
			Thumbnail: "https://example.com/thumb2.jpg",
			Size:      "2.1GB",
		},
	}
}
