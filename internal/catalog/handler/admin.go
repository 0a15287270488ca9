package handler

import (
	"fmt"
	"net/http"

	"github.com/narwhalmedia/catalog/pkg/auth"
	pkgerrors "github.com/narwhalmedia/catalog/pkg/errors"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

const adminHome = "/admin/series"

func (h *Handler) loginForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.AdminFromContext(r.Context()); ok {
		redirect(w, r, adminHome)
		return
	}
	h.render(w, r, "login", page{Title: "Admin login"})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.handleError(w, r, pkgerrors.BadRequest("the form could not be read"), "/admin/login", "/admin/login")
		return
	}

	username := r.PostFormValue("username")
	if err := h.authenticator.Check(username, r.PostFormValue("password")); err != nil {
		h.log(r).Warn("Admin login failed", interfaces.String("username", username))
		addFlash(w, r, FlashError, pkgerrors.UserMessage(err))
		redirect(w, r, "/admin/login")
		return
	}

	if err := h.sessions.SetCookie(w, username); err != nil {
		h.handleError(w, r, err, "/admin/login", "/admin/login")
		return
	}
	h.log(r).Info("Admin signed in", interfaces.String("username", username))
	addFlash(w, r, FlashSuccess, "Signed in as admin")
	redirect(w, r, adminHome)
}

func (h *Handler) logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearCookie(w)
	addFlash(w, r, FlashInfo, "Signed out")
	redirect(w, r, "/")
}

func (h *Handler) adminSeries(w http.ResponseWriter, r *http.Request) {
	series, err := h.catalog.ListSeries(r.Context())
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "admin_series", page{Title: "Manage series", SeriesList: series})
}

func (h *Handler) createSeries(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseForm(w, r)
	if err != nil {
		h.handleError(w, r, err, adminHome, adminHome)
		return
	}
	defer f.Close()

	in, err := f.seriesInput()
	if err != nil {
		h.handleError(w, r, err, adminHome, adminHome)
		return
	}
	series, err := h.catalog.CreateSeries(r.Context(), in)
	if err != nil {
		h.handleError(w, r, err, adminHome, adminHome)
		return
	}
	addFlash(w, r, FlashSuccess, fmt.Sprintf("Series %q created", series.Title))
	redirect(w, r, adminHome)
}

func (h *Handler) editSeriesForm(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		h.handleError(w, r, pkgerrors.NotFound("series not found"), adminHome, adminHome)
		return
	}
	series, err := h.catalog.GetSeries(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, adminHome, adminHome)
		return
	}
	h.render(w, r, "admin_series_edit", page{Title: "Edit " + series.Title, Series: series})
}

func (h *Handler) updateSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		h.handleError(w, r, pkgerrors.NotFound("series not found"), adminHome, adminHome)
		return
	}
	back := fmt.Sprintf("/admin/series/%d/edit", id)

	f, err := h.parseForm(w, r)
	if err != nil {
		h.handleError(w, r, err, back, adminHome)
		return
	}
	defer f.Close()

	in, err := f.seriesInput()
	if err != nil {
		h.handleError(w, r, err, back, adminHome)
		return
	}
	series, err := h.catalog.UpdateSeries(r.Context(), id, in)
	if err != nil {
		h.handleError(w, r, err, back, adminHome)
		return
	}
	addFlash(w, r, FlashSuccess, fmt.Sprintf("Series %q saved", series.Title))
	redirect(w, r, adminHome)
}

func (h *Handler) deleteSeries(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		h.handleError(w, r, pkgerrors.NotFound("series not found"), adminHome, adminHome)
		return
	}
	if err := h.catalog.DeleteSeries(r.Context(), id); err != nil {
		h.handleError(w, r, err, adminHome, adminHome)
		return
	}
	addFlash(w, r, FlashSuccess, "Series deleted")
	redirect(w, r, adminHome)
}

func (h *Handler) adminEpisodes(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		h.handleError(w, r, pkgerrors.NotFound("series not found"), adminHome, adminHome)
		return
	}
	series, err := h.catalog.GetSeries(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, adminHome, adminHome)
		return
	}
	episodes, err := h.catalog.ListEpisodes(r.Context(), id)
	if err != nil {
		h.serverError(w, r, err)
		return
	}
	h.render(w, r, "admin_episodes", page{Title: "Episodes of " + series.Title, Series: series, Episodes: episodes})
}

func (h *Handler) createEpisode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		h.handleError(w, r, pkgerrors.NotFound("series not found"), adminHome, adminHome)
		return
	}
	back := episodesPage(id)

	f, err := h.parseForm(w, r)
	if err != nil {
		h.handleError(w, r, err, back, adminHome)
		return
	}
	defer f.Close()

	in, err := f.episodeInput()
	if err != nil {
		h.handleError(w, r, err, back, adminHome)
		return
	}
	episode, err := h.catalog.CreateEpisode(r.Context(), id, in)
	if err != nil {
		h.handleError(w, r, err, back, adminHome)
		return
	}
	addFlash(w, r, FlashSuccess, fmt.Sprintf("Episode %q added", episode.Title))
	redirect(w, r, back)
}

func (h *Handler) deleteEpisode(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		h.handleError(w, r, pkgerrors.NotFound("episode not found"), adminHome, adminHome)
		return
	}
	episode, err := h.catalog.DeleteEpisode(r.Context(), id)
	if err != nil {
		h.handleError(w, r, err, adminHome, adminHome)
		return
	}
	addFlash(w, r, FlashSuccess, fmt.Sprintf("Episode %q deleted", episode.Title))
	redirect(w, r, episodesPage(episode.SeriesID))
}

func episodesPage(seriesID int64) string {
	return fmt.Sprintf("/admin/series/%d/episodes", seriesID)
}
