package app

import (
	"errors"
	"fmt"
	"os"

	"github.com/italolelis/film_downloader/internal/film"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "export <id> <path>",
		Short: "Write a saved film to a file for playback",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			db, repo, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			record, err := repo.GetByID(cmd.Context(), id)
			if errors.Is(err, film.ErrNotFound) {
				return fmt.Errorf("film %d not found", id)
			}

			if err != nil {
				return err
			}

			flags := os.O_WRONLY | os.O_CREATE | os.O_EXCL
			if force {
				flags = os.O_WRONLY | os.O_CREATE | os.O_TRUNC
			}

			f, err := os.OpenFile(args[1], flags, 0o644)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", args[1], err)
			}

			if _, err := f.Write(record.Blob); err != nil {
				f.Close()

				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}

			if err := f.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", args[1], err)
			}

			ok(cmd.OutOrStdout(), "Exported %q to %s (%s)", record.Title, args[1], record.Size)

			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite the target file if it exists")

	return cmd
}
