package rest

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/italolelis/film_downloader/internal/film"
)

// StatusView is the rendered state of one download flow.
type StatusView struct {
	State    string  `json:"state"`
	Text     string  `json:"text"`
	Received int64   `json:"received"`
	Total    int64   `json:"total"`
	Known    bool    `json:"known"`
	Percent  float64 `json:"percent"`
	RecordID int64   `json:"recordId,omitempty"`
	Error    string  `json:"error,omitempty"`

	// BarWidth is Percent capped at 100 for the progress bar.
	BarWidth float64 `json:"-"`
	Active   bool    `json:"active"`
	Visible  bool    `json:"-"`
}

// CatalogEntry is one row of the available films list.
type CatalogEntry struct {
	ID          int64      `json:"id"`
	Title       string     `json:"title"`
	URL         string     `json:"url"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	Size        string     `json:"size"`
	Status      StatusView `json:"status"`
	CanDownload bool       `json:"canDownload"`
	DownloadURL string     `json:"-"`
}

// SavedEntry is one row of the saved films list.
type SavedEntry struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Size         string    `json:"size"`
	DownloadDate time.Time `json:"downloadDate"`
	Downloaded   string    `json:"-"`
	Age          string    `json:"-"`
	PlayURL      string    `json:"playUrl"`
	DeleteURL    string    `json:"-"`
}

func NewStatusView(s film.Status) StatusView {
	percent := s.Progress.Percent()

	return StatusView{
		State:    s.State.String(),
		Text:     s.Text(),
		Received: s.Progress.Received,
		Total:    s.Progress.Total,
		Known:    s.Progress.Known,
		Percent:  percent,
		RecordID: s.RecordID,
		Error:    s.Error,
		BarWidth: min(percent, 100),
		Active:   s.State.IsActive(),
		Visible:  s.State != film.StateIdle,
	}
}

// CatalogView projects the catalog and the latest flow of each item into
// display rows. Items without a flow are idle.
func CatalogView(items []film.Item, statuses map[int64]film.Status) []CatalogEntry {
	entries := make([]CatalogEntry, 0, len(items))

	for _, item := range items {
		status, ok := statuses[item.ID]
		if !ok {
			status = film.Status{CatalogID: item.ID, State: film.StateIdle}
		}

		entries = append(entries, CatalogEntry{
			ID:          item.ID,
			Title:       item.Title,
			URL:         item.URL,
			Thumbnail:   item.Thumbnail,
			Size:        item.Size,
			Status:      NewStatusView(status),
			CanDownload: !status.State.IsActive(),
			DownloadURL: fmt.Sprintf("/catalog/%d/download", item.ID),
		})
	}

	return entries
}

// SavedView projects stored films into display rows.
func SavedView(summaries []film.Summary) []SavedEntry {
	entries := make([]SavedEntry, 0, len(summaries))

	for _, s := range summaries {
		entries = append(entries, SavedEntry{
			ID:           s.ID,
			Title:        s.Title,
			Size:         s.Size,
			DownloadDate: s.DownloadDate,
			Downloaded:   s.DownloadDate.Local().Format("2006-01-02"),
			Age:          humanize.Time(s.DownloadDate),
			PlayURL:      fmt.Sprintf("/saved/%d/play", s.ID),
			DeleteURL:    fmt.Sprintf("/saved/%d/delete", s.ID),
		})
	}

	return entries
}

// anyActive reports whether the page should keep refreshing.
func anyActive(entries []CatalogEntry) bool {
	for _, e := range entries {
		if e.Status.Active {
			return true
		}
	}

	return false
}
