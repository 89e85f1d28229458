package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/italolelis/film_downloader/internal/catalog"
	"github.com/italolelis/film_downloader/internal/config"
	"github.com/italolelis/film_downloader/internal/downloader"
	"github.com/italolelis/film_downloader/internal/http/rest"
	"github.com/italolelis/film_downloader/internal/logctx"
	"github.com/italolelis/film_downloader/internal/notifier"
	"github.com/italolelis/film_downloader/internal/storage"
	"github.com/italolelis/film_downloader/internal/storage/sqlite"
	"github.com/italolelis/film_downloader/internal/telemetry"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), cfg)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config) error {
	logger := logctx.LoggerFromContext(ctx)

	logger.Info("film downloader starting...", "log_level", cfg.LogLevel, "version", appVersion)

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:        cfg.Telemetry.Enabled,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: appVersion,
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}

	defer func() {
		if err := tel.Shutdown(context.WithoutCancel(ctx)); err != nil {
			logger.Error("failed to shutdown telemetry", "err", err)
		}
	}()

	// =========================================================================
	// Start Database
	database, err := sqlite.InitDB(cfg.DBPath)
	if err != nil {
		logger.Error("DB error", "err", err)

		return err
	}
	defer database.Close()

	repo := sqlite.NewInstrumentedFilmRepository(database, tel)

	// =========================================================================
	// Load Catalog
	// Saved films stay playable when the catalog source is unreachable.
	cat, err := loadCatalog(ctx, cfg)
	if err != nil {
		logger.Error("failed to load catalog", "catalog_source", cfg.CatalogSource, "err", err)

		cat, _ = catalog.New(nil)
	}

	// =========================================================================
	// Start Downloader
	d := downloader.NewDownloader(downloader.NewEngine(nil), repo, tel)
	defer d.Close()

	// =========================================================================
	// Start Notification
	setupNotificationForDownloader(ctx, d, buildNotifier(cfg))

	// =========================================================================
	// Start API Service
	server := setupServer(ctx, cat, d, repo, tel, cfg)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Initializing API support", "host", cfg.Web.BindAddress, "films", cat.Len())

		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("start shutdown")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(gctx), cfg.Web.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to gracefully shutdown the server", "err", err)

			if err = server.Close(); err != nil {
				return fmt.Errorf("could not stop server gracefully: %w", err)
			}
		}

		return nil
	})

	return g.Wait()
}

func buildNotifier(cfg *config.Config) notifier.Notifier {
	if cfg.DiscordWebhookURL == "" {
		return notifier.Nop{}
	}

	return notifier.NewDiscordNotifier(cfg.DiscordWebhookURL)
}

func setupNotificationForDownloader(ctx context.Context, d *downloader.Downloader, notif notifier.Notifier) {
	logger := logctx.LoggerFromContext(ctx)
	ctx = context.WithoutCancel(ctx)

	go func() {
		for event := range d.OnDownloadFailed {
			if notifyErr := notif.Notify(ctx,
				"❌ Download failed for film: "+event.Item.Title+" ("+event.Err.Error()+")",
			); notifyErr != nil {
				logger.Error("failed to send notification", "catalog_id", event.Item.ID, "err", notifyErr)
			}
		}
	}()

	go func() {
		for event := range d.OnDownloadFinished {
			if notifyErr := notif.Notify(ctx,
				"✅ Download finished for film: "+event.Title+" ("+event.Size+")",
			); notifyErr != nil {
				logger.Error("failed to send notification", "film_id", event.ID, "err", notifyErr)
			}
		}
	}()
}

// setupServer prepares the handlers and services to create the http rest server.
func setupServer(
	ctx context.Context,
	cat *catalog.Catalog,
	d *downloader.Downloader,
	repo storage.FilmRepository,
	tel *telemetry.Telemetry,
	cfg *config.Config,
) *http.Server {
	return &http.Server{
		Addr:         cfg.Web.BindAddress,
		ReadTimeout:  cfg.Web.ReadTimeout,
		WriteTimeout: cfg.Web.WriteTimeout,
		IdleTimeout:  cfg.Web.IdleTimeout,
		Handler:      newRouter(rest.NewFilmHandler(cat, d, repo), tel),
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}

func newRouter(films *rest.FilmHandler, tel *telemetry.Telemetry) http.Handler {
	r := chi.NewRouter()
	r.Use(telemetry.RequestID)
	r.Use(telemetry.HTTPLogging)
	r.Use(telemetry.NewHTTPMiddleware(tel).Middleware)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	if tel.Enabled() {
		r.Handle("/metrics", tel.Handler())
	}

	r.Mount("/", films.Routes())

	return r
}
