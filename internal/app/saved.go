package app

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newSavedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "saved",
		Short: "List the films in the local store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, repo, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			summaries, err := repo.ListSummaries(cmd.Context())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if len(summaries) == 0 {
				warn(out, "No films saved yet")

				return nil
			}

			header(out, "Saved films (%d)", len(summaries))

			for _, s := range summaries {
				fmt.Fprintf(out, "  %-6d %-40s %10s  %s\n", s.ID, s.Title, s.Size, humanize.Time(s.DownloadDate))
			}

			return nil
		},
	}
}
