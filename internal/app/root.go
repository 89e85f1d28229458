package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/italolelis/film_downloader/internal/config"
	"github.com/italolelis/film_downloader/internal/logctx"
	"github.com/spf13/cobra"
)

var (
	cfg        *config.Config
	appVersion = "dev"

	flagNoColor bool
)

var rootCmd = &cobra.Command{
	Use:   "film_downloader",
	Short: "Download films from a catalog and keep them for offline playback",
	Long: `film_downloader lists remote films, downloads them with progress
reporting and keeps the payload in a local SQLite store.

Run 'film_downloader' with no arguments to start the web interface.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context(), cfg)
	},
}

// SetVersion sets the version reported by the version command and telemetry.
func SetVersion(v string) {
	appVersion = v
}

// Execute is the entry point called from main.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if flagNoColor {
			color.NoColor = true
		}

		var err error

		cfg, err = config.LoadConfig()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger := logctx.New(cmd.ErrOrStderr(), cfg.SlogLevel())
		slog.SetDefault(logger)
		cmd.SetContext(logctx.WithLogger(cmd.Context(), logger))

		return nil
	}

	rootCmd.AddCommand(
		newServeCmd(),
		newCatalogCmd(),
		newDownloadCmd(),
		newSavedCmd(),
		newExportCmd(),
		newDeleteCmd(),
		newVersionCmd(),
	)
}

// ok prints a green success line.
func ok(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(w io.Writer, format string, a ...interface{}) {
	fmt.Fprintln(w, color.CyanString(fmt.Sprintf(format, a...)))
}
