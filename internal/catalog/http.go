package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/italolelis/film_downloader/internal/film"
	"github.com/italolelis/film_downloader/internal/logctx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const maxErrorBody = 512

// HTTP fetches the catalog as a JSON array from a remote endpoint.
type HTTP struct {
	url    string
	client *http.Client
}

// NewHTTP creates a catalog source for url. A nil client gets an instrumented
// one with a 30s timeout.
func NewHTTP(url string, client *http.Client) *HTTP {
	if client == nil {
		client = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	return &HTTP{url: url, client: client}
}

// List requests the catalog and decodes it.
func (h *HTTP) List(ctx context.Context) ([]film.Item, error) {
	logger := logctx.LoggerFromContext(ctx).With("catalog_url", h.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	logger.Debug("fetching catalog")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, &film.NetworkError{Operation: "load_catalog", URL: h.url, Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		logger.Error("non-2xx response", "status", resp.StatusCode, "body", string(b))

		return nil, &film.NetworkError{Operation: "load_catalog", URL: h.url, StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var items []film.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}

	return items, nil
}
