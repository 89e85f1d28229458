package film

import "time"

// Item is one entry of the remote catalog, not yet downloaded.
type Item struct {
	ID        int64  `json:"id" yaml:"id"`
	Title     string `json:"title" yaml:"title"`
	URL       string `json:"url" yaml:"url"`
	Thumbnail string `json:"thumbnail" yaml:"thumbnail"`
	Size      string `json:"size" yaml:"size"`
}

// Record is a downloaded film persisted in the local store.
type Record struct {
	ID           int64
	OriginalID   int64
	Title        string
	URL          string
	Blob         []byte
	Size         string
	DownloadDate time.Time
}

// Summary is a Record without its payload, used for listings.
type Summary struct {
	ID           int64     `json:"id"`
	OriginalID   int64     `json:"originalId"`
	Title        string    `json:"title"`
	URL          string    `json:"url"`
	Size         string    `json:"size"`
	DownloadDate time.Time `json:"downloadDate"`
}

// Summary drops the payload of the record.
func (r *Record) Summary() Summary {
	return Summary{
		ID:           r.ID,
		OriginalID:   r.OriginalID,
		Title:        r.Title,
		URL:          r.URL,
		Size:         r.Size,
		DownloadDate: r.DownloadDate,
	}
}
