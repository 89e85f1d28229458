package film

import "testing"

func TestState_IsActive(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateIdle, false},
		{StatePreparing, true},
		{StateDownloading, true},
		{StateSaved, false},
		{StateFailed, false},
	}

	for _, test := range tests {
		if got := test.state.IsActive(); got != test.expected {
			t.Errorf("State(%s).IsActive() = %v, expected %v", test.state, got, test.expected)
		}
	}
}

func TestState_IsFinished(t *testing.T) {
	tests := []struct {
		state    State
		expected bool
	}{
		{StateIdle, false},
		{StatePreparing, false},
		{StateDownloading, false},
		{StateSaved, true},
		{StateFailed, true},
	}

	for _, test := range tests {
		if got := test.state.IsFinished(); got != test.expected {
			t.Errorf("State(%s).IsFinished() = %v, expected %v", test.state, got, test.expected)
		}
	}
}

func TestProgress_Percent(t *testing.T) {
	tests := []struct {
		name     string
		progress Progress
		want     float64
	}{
		{"half", Progress{Received: 1024, Total: 2048, Known: true}, 50},
		{"complete", Progress{Received: 2048, Total: 2048, Known: true}, 100},
		{"under-reported total is not clamped", Progress{Received: 300, Total: 200, Known: true}, 150},
		{"unknown total", Progress{Received: 300}, 0},
		{"zero total", Progress{Received: 300, Total: 0, Known: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.progress.Percent(); got != tt.want {
				t.Errorf("Percent() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestStatus_Text(t *testing.T) {
	tests := []struct {
		name   string
		status Status
		want   string
	}{
		{"idle", Status{State: StateIdle}, ""},
		{"preparing", Status{State: StatePreparing}, "Preparing download..."},
		{
			"downloading with total",
			Status{State: StateDownloading, Progress: Progress{Received: 1024, Total: 2048, Known: true}},
			"Downloading: 50% (1 KB/2 KB)",
		},
		{
			"downloading without total",
			Status{State: StateDownloading, Progress: Progress{Received: 1536}},
			"Downloading: 1.5 KB",
		},
		{"saved", Status{State: StateSaved}, "Download complete!"},
		{"failed", Status{State: StateFailed, Error: "HTTP 404"}, "Error: HTTP 404"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.status.Text(); got != tt.want {
				t.Errorf("Text() = %q, want %q", got, tt.want)
			}
		})
	}
}
