package app

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newCatalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the films available for download",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			if cat.Len() == 0 {
				warn(out, "The catalog is empty")

				return nil
			}

			header(out, "Available films (%d)", cat.Len())

			for _, item := range cat.Items() {
				fmt.Fprintf(out, "  %-6d %-40s %10s  %s\n", item.ID, item.Title, item.Size, color.HiBlackString(item.URL))
			}

			return nil
		},
	}
}
