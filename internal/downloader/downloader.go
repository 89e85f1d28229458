package downloader

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/italolelis/film_downloader/internal/bytefmt"
	"github.com/italolelis/film_downloader/internal/film"
	"github.com/italolelis/film_downloader/internal/logctx"
	"github.com/italolelis/film_downloader/internal/storage"
	"github.com/italolelis/film_downloader/internal/telemetry"
)

const (
	eventBuffer = 16
	// progressLogStep is how far, in percent, a download advances between debug logs.
	progressLogStep = 10
	// progressLogBytes is the logging interval when the total size is unknown.
	progressLogBytes = 100 * 1024 * 1024
)

// Failure is emitted when a download flow ends in StateFailed.
type Failure struct {
	Item film.Item
	Err  error
}

// Downloader turns a catalog item into a stored film: fetch, save, and
// track the status of every flow so the page can show it.
type Downloader struct {
	fetcher   Fetcher
	repo      storage.FilmWriteRepository
	telemetry *telemetry.Telemetry
	now       func() time.Time

	mu       sync.RWMutex
	statuses map[int64]tracked
	nextFlow uint64

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	OnDownloadFinished chan *film.Record
	OnDownloadFailed   chan *Failure
}

type tracked struct {
	flow   uint64
	status film.Status
}

func NewDownloader(fetcher Fetcher, repo storage.FilmWriteRepository, tel *telemetry.Telemetry) *Downloader {
	ctx, cancel := context.WithCancel(context.Background())

	return &Downloader{
		fetcher:            fetcher,
		repo:               repo,
		telemetry:          tel,
		now:                time.Now,
		statuses:           make(map[int64]tracked),
		ctx:                ctx,
		cancel:             cancel,
		OnDownloadFinished: make(chan *film.Record, eventBuffer),
		OnDownloadFailed:   make(chan *Failure, eventBuffer),
	}
}

// Close cancels in-flight downloads, waits for them and closes the event
// channels. Start and Download must not be called afterwards.
func (d *Downloader) Close() {
	d.cancel()
	d.wg.Wait()

	close(d.OnDownloadFinished)
	close(d.OnDownloadFailed)
}

// Start launches an independent download flow for item and returns at once.
// ctx supplies the logger; its cancellation does not stop the flow, Close does.
// Nothing prevents two flows for the same item, the store's unique URL
// index decides which one is saved.
func (d *Downloader) Start(ctx context.Context, item film.Item) film.Status {
	flow := d.begin(item.ID)

	flowCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	stopOnClose := context.AfterFunc(d.ctx, stop)

	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		defer stop()
		defer stopOnClose()

		_, _ = d.run(flowCtx, item, flow)
	}()

	return d.Status(item.ID)
}

// Download runs one flow synchronously and returns the stored record.
func (d *Downloader) Download(ctx context.Context, item film.Item) (*film.Record, error) {
	return d.run(ctx, item, d.begin(item.ID))
}

// Status returns the status of the latest flow for a catalog item.
func (d *Downloader) Status(catalogID int64) film.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if t, ok := d.statuses[catalogID]; ok {
		return t.status
	}

	return film.Status{CatalogID: catalogID, State: film.StateIdle}
}

// Statuses returns the status of every item that was ever started.
func (d *Downloader) Statuses() map[int64]film.Status {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make(map[int64]film.Status, len(d.statuses))
	for id, t := range d.statuses {
		out[id] = t.status
	}

	return out
}

func (d *Downloader) begin(catalogID int64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.nextFlow++
	d.statuses[catalogID] = tracked{
		flow:   d.nextFlow,
		status: film.Status{CatalogID: catalogID, State: film.StatePreparing},
	}

	return d.nextFlow
}

// update applies a status only if flow is still the latest one for the item.
func (d *Downloader) update(flow uint64, status film.Status) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if t, ok := d.statuses[status.CatalogID]; ok && t.flow != flow {
		return
	}

	d.statuses[status.CatalogID] = tracked{flow: flow, status: status}
}

func (d *Downloader) run(ctx context.Context, item film.Item, flow uint64) (*film.Record, error) {
	logger := logctx.LoggerFromContext(ctx).With("catalog_id", item.ID, "title", item.Title)
	ctx = logctx.WithLogger(ctx, logger)

	logger.Info("starting download", "url", item.URL)

	var (
		record       *film.Record
		lastProgress film.Progress
	)

	err := d.telemetry.InstrumentDownload(ctx, func(ctx context.Context) (int64, error) {
		var lastLogged int64

		blob, err := d.fetcher.Fetch(ctx, item.URL, func(p film.Progress) {
			lastProgress = p
			d.update(flow, film.Status{CatalogID: item.ID, State: film.StateDownloading, Progress: p})

			if shouldLogProgress(p, lastLogged) {
				lastLogged = p.Received
				logger.Debug("download progress",
					"downloaded", humanize.IBytes(uint64(p.Received)),
					"total", humanize.IBytes(uint64(p.Total)),
					"percent", humanize.FtoaWithDigits(p.Percent(), 2))
			}
		})
		if err != nil {
			return int64(len(blob)), fmt.Errorf("failed to download film: %w", err)
		}

		record = &film.Record{
			OriginalID:   item.ID,
			Title:        item.Title,
			URL:          item.URL,
			Blob:         blob,
			Size:         bytefmt.Format(int64(len(blob)), 2),
			DownloadDate: d.now().UTC(),
		}

		id, err := d.repo.Put(ctx, record)
		if err != nil {
			return int64(len(blob)), fmt.Errorf("failed to save film: %w", err)
		}

		record.ID = id

		return int64(len(blob)), nil
	})
	if err != nil {
		logger.Error("download failed", "err", err)

		d.update(flow, film.Status{CatalogID: item.ID, State: film.StateFailed, Error: err.Error()})
		d.emitFailure(ctx, &Failure{Item: item, Err: err})

		return nil, err
	}

	logger.Info("downloaded and saved film", "film_id", record.ID, "size", record.Size)

	d.update(flow, film.Status{CatalogID: item.ID, State: film.StateSaved, Progress: lastProgress, RecordID: record.ID})
	d.emitFinished(ctx, record)

	return record, nil
}

func (d *Downloader) emitFinished(ctx context.Context, record *film.Record) {
	select {
	case d.OnDownloadFinished <- record:
	default:
		logctx.LoggerFromContext(ctx).Debug("dropping download finished event, no listener")
	}
}

func (d *Downloader) emitFailure(ctx context.Context, f *Failure) {
	select {
	case d.OnDownloadFailed <- f:
	default:
		logctx.LoggerFromContext(ctx).Debug("dropping download failed event, no listener")
	}
}

func shouldLogProgress(p film.Progress, lastLogged int64) bool {
	if !p.Known || p.Total <= 0 {
		return p.Received-lastLogged >= progressLogBytes
	}

	step := p.Total * progressLogStep / 100
	if step <= 0 {
		return true
	}

	return p.Received/step > lastLogged/step
}
