package downloader_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/italolelis/film_downloader/internal/downloader"
	"github.com/italolelis/film_downloader/internal/film"
	"github.com/italolelis/film_downloader/internal/storage/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepo(t *testing.T) *sqlite.FilmRepository {
	t.Helper()

	db, err := sqlite.InitDB(filepath.Join(t.TempDir(), "films.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return sqlite.NewFilmRepository(db)
}

func newDownloader(t *testing.T, repo *sqlite.FilmRepository) *downloader.Downloader {
	t.Helper()

	d := downloader.NewDownloader(downloader.NewEngine(nil), repo, nil)
	t.Cleanup(d.Close)

	return d
}

func TestDownloader_Download_SavesRecord(t *testing.T) {
	ctx := context.Background()
	body := payload(2048)
	ts := serveBytes(t, body)

	repo := newRepo(t)
	d := newDownloader(t, repo)

	item := film.Item{ID: 1, Title: "A", URL: ts.URL + "/a.bin"}

	assert.Equal(t, film.StateIdle, d.Status(1).State)

	record, err := d.Download(ctx, item)
	require.NoError(t, err)
	assert.Positive(t, record.ID)
	assert.Equal(t, "2 KB", record.Size)

	stored, err := repo.GetByID(ctx, record.ID)
	require.NoError(t, err)
	assert.Len(t, stored.Blob, 2048)
	assert.Equal(t, "2 KB", stored.Size)
	assert.Equal(t, int64(1), stored.OriginalID)
	assert.Equal(t, item.URL, stored.URL)
	assert.WithinDuration(t, time.Now(), stored.DownloadDate, time.Minute)

	status := d.Status(1)
	assert.Equal(t, film.StateSaved, status.State)
	assert.Equal(t, record.ID, status.RecordID)
	assert.Equal(t, float64(100), status.Progress.Percent())
	assert.Equal(t, "Download complete!", status.Text())

	select {
	case got := <-d.OnDownloadFinished:
		assert.Equal(t, record.ID, got.ID)
	default:
		t.Fatal("expected a download finished event")
	}
}

func TestDownloader_Download_HTTPErrorStoresNothing(t *testing.T) {
	ctx := context.Background()
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()

	repo := newRepo(t)
	d := newDownloader(t, repo)

	_, err := d.Download(ctx, film.Item{ID: 1, Title: "A", URL: ts.URL})
	require.Error(t, err)

	status := d.Status(1)
	assert.Equal(t, film.StateFailed, status.State)
	assert.Contains(t, status.Text(), "404")

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	select {
	case f := <-d.OnDownloadFailed:
		assert.Equal(t, int64(1), f.Item.ID)
	default:
		t.Fatal("expected a download failed event")
	}
}

func TestDownloader_Download_DuplicateURL(t *testing.T) {
	ctx := context.Background()
	ts := serveBytes(t, payload(100))

	repo := newRepo(t)
	d := newDownloader(t, repo)

	item := film.Item{ID: 1, Title: "A", URL: ts.URL}

	_, err := d.Download(ctx, item)
	require.NoError(t, err)

	_, err = d.Download(ctx, item)
	var constraintErr *film.ConstraintError
	require.ErrorAs(t, err, &constraintErr)
	assert.Equal(t, film.StateFailed, d.Status(1).State)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDownloader_Start_RunsInBackground(t *testing.T) {
	release := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
		w.Write(payload(1024))
	}))
	defer ts.Close()

	repo := newRepo(t)
	d := newDownloader(t, repo)

	// a cancelled request context must not stop the flow
	reqCtx, cancel := context.WithCancel(context.Background())
	status := d.Start(reqCtx, film.Item{ID: 9, Title: "bg", URL: ts.URL})
	cancel()

	assert.Equal(t, film.StatePreparing, status.State)
	assert.True(t, status.State.IsActive())

	close(release)

	select {
	case record := <-d.OnDownloadFinished:
		assert.Equal(t, "1 KB", record.Size)
	case <-time.After(5 * time.Second):
		t.Fatal("download did not finish")
	}

	assert.Equal(t, film.StateSaved, d.Status(9).State)
	assert.Contains(t, d.Statuses(), int64(9))
}

func TestDownloader_ConcurrentSameURLRace(t *testing.T) {
	ctx := context.Background()
	ts := serveBytes(t, payload(256))

	repo := newRepo(t)
	d := newDownloader(t, repo)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		errs []error
	)

	for i := 0; i < 2; i++ {
		wg.Add(1)

		go func() {
			defer wg.Done()

			_, err := d.Download(ctx, film.Item{ID: 1, Title: "A", URL: ts.URL})

			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}()
	}

	wg.Wait()

	var failed int
	for _, err := range errs {
		if err != nil {
			var constraintErr *film.ConstraintError
			assert.True(t, errors.As(err, &constraintErr), "unexpected error: %v", err)
			failed++
		}
	}

	assert.Equal(t, 1, failed)

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDownloader_CloseCancelsInFlight(t *testing.T) {
	block := make(chan struct{})

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "10")
		w.Write([]byte("x"))
		w.(http.Flusher).Flush()
		select {
		case <-block:
		case <-r.Context().Done():
		}
	}))
	defer ts.Close()
	defer close(block)

	d := downloader.NewDownloader(downloader.NewEngine(nil), newRepo(t), nil)
	d.Start(context.Background(), film.Item{ID: 3, URL: ts.URL})

	require.Eventually(t, func() bool {
		return d.Status(3).State == film.StateDownloading
	}, 5*time.Second, 10*time.Millisecond)

	done := make(chan struct{})
	go func() {
		d.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not cancel the in-flight download")
	}

	assert.Equal(t, film.StateFailed, d.Status(3).State)
}
