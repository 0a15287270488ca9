package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"

	"github.com/narwhalmedia/catalog/internal/catalog/assets"
	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/pkg/auth"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{
	"index",
	"series",
	"watch",
	"login",
	"admin_series",
	"admin_series_edit",
	"admin_episodes",
}

var templateFuncs = template.FuncMap{
	"coverURL":      assets.CoverURL,
	"isExternal":    domain.IsExternalURL,
	"videoURL":      videoURL,
	"episodeLabel":  episodeLabel,
	"episodeNumber": episodeNumber,
}

// page is the data every template receives.
type page struct {
	Title      string
	Admin      bool
	AdminName  string
	Flashes    []Flash
	SeriesList []*domain.Series
	Series     *domain.Series
	Episodes   []*domain.Episode
	Episode    *domain.Episode
}

type renderer struct {
	pages map[string]*template.Template
}

func newRenderer() (*renderer, error) {
	r := &renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		tmpl, err := template.New(name).Funcs(templateFuncs).
			ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// render executes a page into a buffer first, so a template error never
// leaves a half-written response.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, name string, data page) {
	tmpl, ok := h.templates.pages[name]
	if !ok {
		h.logger.Error("Unknown template", interfaces.String("template", name))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	if admin, ok := auth.AdminFromContext(r.Context()); ok {
		data.Admin = true
		data.AdminName = admin.Username
	}
	data.Flashes = popFlashes(w, r)

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		h.log(r).Error("Template execution failed", interfaces.String("template", name), interfaces.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func videoURL(e *domain.Episode) string {
	if src, ok := e.Source.(domain.DirectSource); ok {
		return src.URL
	}
	return "/stream/" + strconv.FormatInt(e.ID, 10)
}

func episodeLabel(e *domain.Episode) string {
	if e.EpisodeNumber == nil {
		return e.Title
	}
	return fmt.Sprintf("%d. %s", *e.EpisodeNumber, e.Title)
}

func episodeNumber(n *int) string {
	if n == nil {
		return ""
	}
	return strconv.Itoa(*n)
}
