package rest

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/italolelis/film_downloader/internal/film"
	"github.com/italolelis/film_downloader/internal/logctx"
	"github.com/italolelis/film_downloader/internal/storage"
)

//go:embed templates/page.html.tmpl
var templates embed.FS

var pageTemplate = template.Must(template.ParseFS(templates, "templates/page.html.tmpl"))

// Catalog resolves catalog items by id.
type Catalog interface {
	Items() []film.Item
	Get(id int64) (film.Item, bool)
}

// Downloads starts download flows and reports their status.
type Downloads interface {
	Start(ctx context.Context, item film.Item) film.Status
	Status(catalogID int64) film.Status
	Statuses() map[int64]film.Status
}

type page struct {
	Catalog []CatalogEntry
	Saved   []SavedEntry
	Refresh bool
}

// FilmHandler serves the page and the film actions.
type FilmHandler struct {
	catalog   Catalog
	downloads Downloads
	repo      storage.FilmRepository
}

// NewFilmHandler creates the handler for the page and its actions.
func NewFilmHandler(catalog Catalog, downloads Downloads, repo storage.FilmRepository) *FilmHandler {
	return &FilmHandler{
		catalog:   catalog,
		downloads: downloads,
		repo:      repo,
	}
}

// Routes mounts the page, the JSON API and the per-film actions.
func (h *FilmHandler) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/", h.HandlePage)
	r.Get("/api/catalog", h.HandleCatalog)
	r.Get("/api/saved", h.HandleSaved)

	r.Route("/catalog/{id}", func(r chi.Router) {
		r.Post("/download", h.HandleDownload)
		r.Get("/status", h.HandleStatus)
	})

	r.Route("/saved/{id}", func(r chi.Router) {
		r.Get("/play", h.HandlePlay)
		r.Post("/delete", h.HandleDelete)
	})

	return r
}

// HandlePage renders both lists from scratch on every request.
func (h *FilmHandler) HandlePage(w http.ResponseWriter, r *http.Request) {
	logger := logctx.LoggerFromContext(r.Context())

	summaries, err := h.repo.ListSummaries(r.Context())
	if err != nil {
		logger.Error("failed to list saved films", "err", err)
		http.Error(w, "failed to list saved films", http.StatusInternalServerError)

		return
	}

	entries := CatalogView(h.catalog.Items(), h.downloads.Statuses())

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, page{
		Catalog: entries,
		Saved:   SavedView(summaries),
		Refresh: anyActive(entries),
	}); err != nil {
		logger.Error("failed to render page", "err", err)
		http.Error(w, "failed to render page", http.StatusInternalServerError)

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// HandleCatalog returns the catalog with the latest status of every item.
func (h *FilmHandler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, CatalogView(h.catalog.Items(), h.downloads.Statuses()))
}

// HandleSaved returns the stored films without their payloads.
func (h *FilmHandler) HandleSaved(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.repo.ListSummaries(r.Context())
	if err != nil {
		logctx.LoggerFromContext(r.Context()).Error("failed to list saved films", "err", err)
		http.Error(w, "failed to list saved films", http.StatusInternalServerError)

		return
	}

	writeJSON(w, r, http.StatusOK, SavedView(summaries))
}

// HandleDownload starts a new flow for a catalog item. The download runs in
// the background; the response only confirms that it started.
func (h *FilmHandler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	item, ok := h.catalogItem(w, r)
	if !ok {
		return
	}

	status := h.downloads.Start(r.Context(), item)

	logctx.LoggerFromContext(r.Context()).Info("download requested", "catalog_id", item.ID, "title", item.Title)

	if wantsJSON(r) {
		writeJSON(w, r, http.StatusAccepted, NewStatusView(status))

		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// HandleStatus returns the status of the latest flow for a catalog item.
func (h *FilmHandler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	item, ok := h.catalogItem(w, r)
	if !ok {
		return
	}

	writeJSON(w, r, http.StatusOK, NewStatusView(h.downloads.Status(item.ID)))
}

// HandlePlay streams a stored film back to the client.
func (h *FilmHandler) HandlePlay(w http.ResponseWriter, r *http.Request) {
	logger := logctx.LoggerFromContext(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	record, err := h.repo.GetByID(r.Context(), id)
	if errors.Is(err, film.ErrNotFound) {
		http.NotFound(w, r)

		return
	}

	if err != nil {
		logger.Error("failed to load film", "film_id", id, "err", err)
		http.Error(w, "failed to load film", http.StatusInternalServerError)

		return
	}

	logger.Debug("playing film", "film_id", id, "size", record.Size)

	http.ServeContent(w, r, fileName(record.URL), record.DownloadDate, bytes.NewReader(record.Blob))
}

// HandleDelete removes a stored film. Deleting a film that does not exist
// is not an error.
func (h *FilmHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	logger := logctx.LoggerFromContext(r.Context())

	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		logger.Error("failed to delete film", "film_id", id, "err", err)
		http.Error(w, "failed to delete film", http.StatusInternalServerError)

		return
	}

	logger.Info("film deleted", "film_id", id)

	if wantsJSON(r) {
		w.WriteHeader(http.StatusNoContent)

		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *FilmHandler) catalogItem(w http.ResponseWriter, r *http.Request) (film.Item, bool) {
	id, ok := pathID(w, r)
	if !ok {
		return film.Item{}, false
	}

	item, ok := h.catalog.Get(id)
	if !ok {
		http.Error(w, "unknown catalog item", http.StatusNotFound)

		return film.Item{}, false
	}

	return item, true
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)

		return 0, false
	}

	return id, true
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		logctx.LoggerFromContext(r.Context()).Error("failed to encode response", "err", err)
	}
}

// fileName derives the served name from the source URL so the content type
// can be guessed from its extension.
func fileName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "film"
	}

	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "film"
	}

	return name
}
