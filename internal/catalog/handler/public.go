package handler

import (
	"net/http"
	"os"
	"time"

	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

func (h *Handler) index(w http.ResponseWriter, r *http.Request) {
	series, err := h.catalog.ListSeries(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "index", page{Title: "Series", SeriesList: series})
}

func (h *Handler) showSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		h.handleError(w, r, pkgerrors.NotFound("series not found"), "/", "/")
		return
	}

	series, err := h.catalog.GetSeries(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "/", "/")
		return
	}
	episodes, err := h.catalog.ListEpisodes(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, "/", "/")
		return
	}
	h.render(w, r, "series", page{Title: series.Title, Series: series, Episodes: episodes})
}

func (h *Handler) watch(w http.ResponseWriter, r *http.Request) {
	seriesID, ok := parseID(r, "id")
	episodeID, ok2 := parseID(r, "episodeID")
	if !ok || !ok2 {
		h.handleError(w, r, pkgerrors.NotFound("episode not found"), "/", "/")
		return
	}

	series, err := h.catalog.GetSeries(r.Context(), seriesID)
	if err != nil {
		h.handleError(w, r, err, "/", "/")
		return
	}
	episode, err := h.catalog.GetEpisode(r.Context(), seriesID, episodeID)
	if err != nil {
		h.handleError(w, r, err, "/", "/")
		return
	}
	h.render(w, r, "watch", page{Title: episode.Title, Series: series, Episode: episode})
}

// stream serves the local video of an episode with range support.
func (h *Handler) stream(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "episodeID")
	if !ok {
		http.NotFound(w, r)
		return
	}

	path, err := h.catalog.GetStreamableFile(r.Context(), id)
	if err != nil {
		if !pkgerrors.IsNotFound(err) {
			h.log(r).Error("Failed to resolve stream",
				interfaces.Int64("episode_id", id), interfaces.Error(err))
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
		return
	}

	file, err := os.Open(path)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || !info.Mode().IsRegular() {
		http.NotFound(w, r)
		return
	}

	// A viewer may keep one response open well past the write timeout.
	if err := http.NewResponseController(w).SetWriteDeadline(time.Time{}); err != nil {
		h.log(r).Debug("Could not lift write deadline", interfaces.Error(err))
	}

	w.Header().Set("Content-Type", "video/mp4")
	http.ServeContent(w, r, info.Name(), info.ModTime(), file)
}

// handleError turns a service error into a flash message and a redirect.
// Not-found errors go to notFound, everything else goes back to the form.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error, back, notFound string) {
	switch {
	case pkgerrors.IsNotFound(err):
		addFlash(w, r, FlashError, pkgerrors.UserMessage(err))
		redirect(w, r, notFound)
	case pkgerrors.IsBadRequest(err), pkgerrors.IsExternal(err),
		pkgerrors.IsConflict(err), pkgerrors.IsUnauthorized(err):
		h.log(r).Info("Request rejected", interfaces.Error(err))
		addFlash(w, r, FlashError, pkgerrors.UserMessage(err))
		redirect(w, r, back)
	default:
		h.log(r).Error("Request failed", interfaces.Error(err))
		addFlash(w, r, FlashError, pkgerrors.UserMessage(err))
		redirect(w, r, back)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, r *http.Request, err error) {
	h.log(r).Error("Request failed", interfaces.Error(err))
	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}
