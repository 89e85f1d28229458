package film

import (
	"fmt"
	"math"

	"github.com/italolelis/film_downloader/internal/bytefmt"
)

// State is the lifecycle position of a single download flow.
type State string

const (
	// StateIdle means no download was ever started for the item.
	StateIdle State = "idle"

	// StatePreparing means the request was issued and no byte arrived yet.
	StatePreparing State = "preparing"

	// StateDownloading means the body is being received.
	StateDownloading State = "downloading"

	// StateSaved means the payload was stored.
	StateSaved State = "saved"

	// StateFailed means the flow ended with an error.
	StateFailed State = "failed"
)

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsActive returns true while a flow is still running.
func (s State) IsActive() bool {
	return s == StatePreparing || s == StateDownloading
}

// IsFinished returns true for the terminal states of a flow.
func (s State) IsFinished() bool {
	return s == StateSaved || s == StateFailed
}

// Progress is the running byte count of one in-flight download.
type Progress struct {
	Received int64 `json:"received"`
	Total    int64 `json:"total"`
	Known    bool  `json:"known"`
}

// Percent returns Received/Total*100. It is not clamped, a server that
// under-reports its content length yields values above 100.
func (p Progress) Percent() float64 {
	if !p.Known || p.Total <= 0 {
		return 0
	}

	return float64(p.Received) / float64(p.Total) * 100
}

// Status is what the page shows for one catalog item.
type Status struct {
	CatalogID int64    `json:"catalogId"`
	State     State    `json:"state"`
	Progress  Progress `json:"progress"`
	RecordID  int64    `json:"recordId,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// Text renders the status line shown under a catalog item.
func (s Status) Text() string {
	switch s.State {
	case StatePreparing:
		return "Preparing download..."
	case StateDownloading:
		if !s.Progress.Known {
			return fmt.Sprintf("Downloading: %s", bytefmt.Format(s.Progress.Received, 2))
		}

		return fmt.Sprintf("Downloading: %d%% (%s/%s)",
			int64(math.Round(s.Progress.Percent())),
			bytefmt.Format(s.Progress.Received, 2),
			bytefmt.Format(s.Progress.Total, 2),
		)
	case StateSaved:
		return "Download complete!"
	case StateFailed:
		return "Error: " + s.Error
	default:
		return ""
	}
}
