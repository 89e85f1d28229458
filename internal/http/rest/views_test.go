package rest

import (
	"testing"
	"time"

	"github.com/italolelis/film_downloader/internal/film"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogView(t *testing.T) {
	items := []film.Item{
		{ID: 1, Title: "A"},
		{ID: 2, Title: "B"},
		{ID: 3, Title: "C"},
	}
	statuses := map[int64]film.Status{
		2: {CatalogID: 2, State: film.StateDownloading, Progress: film.Progress{Received: 3, Total: 2, Known: true}},
		3: {CatalogID: 3, State: film.StateDownloading, Progress: film.Progress{Received: 10}},
	}

	entries := CatalogView(items, statuses)
	require.Len(t, entries, 3)

	assert.Equal(t, "idle", entries[0].Status.State)
	assert.False(t, entries[0].Status.Visible)
	assert.True(t, entries[0].CanDownload)
	assert.Equal(t, "/catalog/1/download", entries[0].DownloadURL)

	assert.False(t, entries[1].CanDownload)
	assert.Equal(t, float64(150), entries[1].Status.Percent)
	assert.Equal(t, float64(100), entries[1].Status.BarWidth)

	assert.False(t, entries[2].Status.Known)
	assert.Equal(t, "Downloading: 10 Bytes", entries[2].Status.Text)

	assert.True(t, anyActive(entries))
	assert.False(t, anyActive(entries[:1]))
}

func TestSavedView(t *testing.T) {
	date := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	entries := SavedView([]film.Summary{{ID: 7, Title: "A", Size: "2 KB", DownloadDate: date}})
	require.Len(t, entries, 1)

	assert.Equal(t, "/saved/7/play", entries[0].PlayURL)
	assert.Equal(t, "/saved/7/delete", entries[0].DeleteURL)
	assert.Equal(t, date.Local().Format("2006-01-02"), entries[0].Downloaded)
	assert.Contains(t, entries[0].Age, "ago")

	assert.Empty(t, SavedView(nil))
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "film1.mp4", fileName("https://example.com/films/film1.mp4?x=1"))
	assert.Equal(t, "film", fileName("https://example.com/"))
	assert.Equal(t, "film", fileName("://bad"))
}
