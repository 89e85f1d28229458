package rest_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/italolelis/film_downloader/internal/catalog"
	"github.com/italolelis/film_downloader/internal/downloader"
	"github.com/italolelis/film_downloader/internal/film"
	"github.com/italolelis/film_downloader/internal/http/rest"
	"github.com/italolelis/film_downloader/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	server     *httptest.Server
	files      *httptest.Server
	repo       *sqlite.FilmRepository
	downloader *downloader.Downloader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	files := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.mp4":
			w.Header().Set("Content-Length", "2048")
			w.Write(make([]byte, 2048))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(files.Close)

	db, err := sqlite.InitDB(filepath.Join(t.TempDir(), "films.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := sqlite.NewFilmRepository(db)
	d := downloader.NewDownloader(downloader.NewEngine(nil), repo, nil)
	t.Cleanup(d.Close)

	c, _ := catalog.New([]film.Item{
		{ID: 1, Title: "A", URL: files.URL + "/a.mp4", Size: "2 KB"},
		{ID: 2, Title: "Missing", URL: files.URL + "/missing.mp4", Size: "1 GB"},
	})

	server := httptest.NewServer(rest.NewFilmHandler(c, d, repo).Routes())
	t.Cleanup(server.Close)

	return &fixture{server: server, files: files, repo: repo, downloader: d}
}

func noRedirect(*http.Request, []*http.Request) error {
	return http.ErrUseLastResponse
}

func get(t *testing.T, url string) (*http.Response, string) {
	t.Helper()

	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func post(t *testing.T, url string, accept string) *http.Response {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, url, nil)
	require.NoError(t, err)

	if accept != "" {
		req.Header.Set("Accept", accept)
	}

	client := &http.Client{CheckRedirect: noRedirect}

	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	return resp
}

func waitForState(t *testing.T, d *downloader.Downloader, id int64, want film.State) {
	t.Helper()

	require.Eventually(t, func() bool {
		return d.Status(id).State == want
	}, 5*time.Second, 10*time.Millisecond)
}

func TestFilmHandler_PageEmptyState(t *testing.T) {
	f := newFixture(t)

	resp, body := get(t, f.server.URL+"/")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "No films saved yet")
	assert.Contains(t, body, "<h3>A</h3>")
	assert.Contains(t, body, `action="/catalog/1/download"`)
}

func TestFilmHandler_DownloadPlayDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	resp := post(t, f.server.URL+"/catalog/1/download", "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
	assert.Equal(t, "/", resp.Header.Get("Location"))

	waitForState(t, f.downloader, 1, film.StateSaved)

	_, body := get(t, f.server.URL+"/")
	assert.Contains(t, body, "Download complete!")
	assert.NotContains(t, body, "No films saved yet")

	summaries, err := f.repo.ListSummaries(ctx)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, "2 KB", summaries[0].Size)

	id := strconv.FormatInt(summaries[0].ID, 10)

	resp, payload := get(t, f.server.URL+"/saved/"+id+"/play")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("Content-Type"))
	assert.Equal(t, "2048", resp.Header.Get("Content-Length"))
	assert.Len(t, payload, 2048)

	resp = post(t, f.server.URL+"/saved/"+id+"/delete", "")
	assert.Equal(t, http.StatusSeeOther, resp.StatusCode)

	n, err := f.repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, body = get(t, f.server.URL+"/")
	assert.Contains(t, body, "No films saved yet")
}

func TestFilmHandler_DownloadJSONAndStatus(t *testing.T) {
	f := newFixture(t)

	resp := post(t, f.server.URL+"/catalog/2/download", "application/json")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	waitForState(t, f.downloader, 2, film.StateFailed)

	resp, body := get(t, f.server.URL+"/catalog/2/status")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var status rest.StatusView
	require.NoError(t, json.Unmarshal([]byte(body), &status))
	assert.Equal(t, "failed", status.State)
	assert.True(t, strings.HasPrefix(status.Text, "Error: "))
	assert.Contains(t, status.Text, "404")

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)

	_, page := get(t, f.server.URL+"/")
	assert.Contains(t, page, `action="/catalog/2/download"`, "a failed item can be downloaded again")
}

func TestFilmHandler_DuplicateDownloadFails(t *testing.T) {
	f := newFixture(t)

	post(t, f.server.URL+"/catalog/1/download", "")
	waitForState(t, f.downloader, 1, film.StateSaved)

	post(t, f.server.URL+"/catalog/1/download", "")
	waitForState(t, f.downloader, 1, film.StateFailed)

	assert.Contains(t, f.downloader.Status(1).Error, "already stored")

	n, err := f.repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestFilmHandler_NotFoundAndInvalid(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		want   int
	}{
		{"unknown catalog item", http.MethodPost, "/catalog/99/download", http.StatusNotFound},
		{"invalid catalog id", http.MethodPost, "/catalog/abc/download", http.StatusBadRequest},
		{"status of unknown item", http.MethodGet, "/catalog/99/status", http.StatusNotFound},
		{"play missing film", http.MethodGet, "/saved/42/play", http.StatusNotFound},
		{"delete missing film", http.MethodPost, "/saved/42/delete", http.StatusSeeOther},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(tt.method, f.server.URL+tt.path, nil)
			require.NoError(t, err)

			resp, err := (&http.Client{CheckRedirect: noRedirect}).Do(req)
			require.NoError(t, err)
			resp.Body.Close()

			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestFilmHandler_APIs(t *testing.T) {
	f := newFixture(t)

	resp, body := get(t, f.server.URL+"/api/catalog")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var entries []rest.CatalogEntry
	require.NoError(t, json.Unmarshal([]byte(body), &entries))
	require.Len(t, entries, 2)
	assert.Equal(t, "idle", entries[0].Status.State)
	assert.True(t, entries[0].CanDownload)

	_, body = get(t, f.server.URL+"/api/saved")
	assert.JSONEq(t, "[]", body)
}
