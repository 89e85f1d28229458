package downloader

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/italolelis/film_downloader/internal/downloader/progress"
	"github.com/italolelis/film_downloader/internal/film"
	"github.com/italolelis/film_downloader/internal/logctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// maxPrealloc caps how much of an announced Content-Length is allocated up front.
const maxPrealloc = 64 << 20

// Fetcher downloads a remote payload into memory.
type Fetcher interface {
	Fetch(ctx context.Context, url string, onProgress func(film.Progress)) ([]byte, error)
}

// Engine performs streamed GET requests and assembles the body in memory.
type Engine struct {
	client *http.Client
}

// NewEngine creates an engine. A nil client gets an instrumented client
// without a timeout: a stalled read blocks until the context is cancelled.
func NewEngine(client *http.Client) *Engine {
	if client == nil {
		client = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}

	return &Engine{client: client}
}

// Fetch GETs url and reads the body chunk by chunk, calling onProgress after
// every chunk. A missing Content-Length yields progress with Known unset.
// Non-2xx responses and transport failures return *film.NetworkError.
func (e *Engine) Fetch(ctx context.Context, url string, onProgress func(film.Progress)) ([]byte, error) {
	logger := logctx.LoggerFromContext(ctx).With("url", url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &film.NetworkError{Operation: "download", URL: url, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &film.NetworkError{Operation: "download", URL: url, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	total := resp.ContentLength

	if total >= 0 {
		logger.Info("downloading file", "file_size", humanize.IBytes(uint64(total)))
	} else {
		logger.Info("downloading file", "file_size", "unknown")
	}

	var buf bytes.Buffer
	if total > 0 {
		buf.Grow(int(min(total, maxPrealloc)))
	}

	pr := progress.NewReader(resp.Body, total, func(received, total int64) {
		if onProgress != nil {
			onProgress(film.Progress{Received: received, Total: max(total, 0), Known: total >= 0})
		}
	})

	if _, err := buf.ReadFrom(pr); err != nil {
		return nil, &film.NetworkError{Operation: "download", URL: url, Message: err.Error(), Err: err}
	}

	logger.Debug("download body received", "received", humanize.IBytes(uint64(pr.Received())))

	return buf.Bytes(), nil
}
