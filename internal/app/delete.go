package app

import (
	"github.com/spf13/cobra"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove a saved film",
		Long:  "Remove a film from the local store. Deleting an id that does not exist is not an error.",
		Args:  cobra.ExactArgs(1),
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

			if err := repo.Delete(cmd.Context(), id); err != nil {
				return err
			}

			ok(cmd.OutOrStdout(), "Deleted film %d", id)

			return nil
		},
	}
}
