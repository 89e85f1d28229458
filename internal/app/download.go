package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/italolelis/film_downloader/internal/downloader"
	"github.com/italolelis/film_downloader/internal/film"
	"github.com/spf13/cobra"
)

// progressInterval limits how often the progress line is redrawn.
const progressInterval = 200 * time.Millisecond

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download <catalog-id>",
		Short: "Download a catalog film and save it",
		Long: `Download a film from the catalog and store it in the local database.

Examples:
  film_downloader download 1
`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			ctx := cmd.Context()

			cat, err := loadCatalog(ctx, cfg)
			if err != nil {
				return err
			}

			item, found := cat.Get(id)
			if !found {
				return fmt.Errorf("catalog item %d not found", id)
			}

			db, repo, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			out := cmd.OutOrStdout()

			d := downloader.NewDownloader(&progressLine{Fetcher: downloader.NewEngine(nil), w: out}, repo, nil)
			defer d.Close()

			record, err := d.Download(ctx, item)
			fmt.Fprintln(out)

			if err != nil {
				return err
			}

			ok(out, "Saved %q as film %d (%s)", record.Title, record.ID, record.Size)

			return nil
		},
	}
}

// progressLine draws the download status on a single terminal line.
type progressLine struct {
	downloader.Fetcher
	w io.Writer
}

func (p *progressLine) Fetch(ctx context.Context, url string, onProgress func(film.Progress)) ([]byte, error) {
	fmt.Fprint(p.w, film.Status{State: film.StatePreparing}.Text())

	var last time.Time

	return p.Fetcher.Fetch(ctx, url, func(pr film.Progress) {
		if onProgress != nil {
			onProgress(pr)
		}

		done := pr.Known && pr.Received >= pr.Total
		if !done && time.Since(last) < progressInterval {
			return
		}

		last = time.Now()

		fmt.Fprintf(p.w, "\r\033[K%s", film.Status{State: film.StateDownloading, Progress: pr}.Text())
	})
}
