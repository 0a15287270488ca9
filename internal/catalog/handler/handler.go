// Package handler serves the catalog's HTML pages, admin forms and video
// streams.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/narwhalmedia/catalog/internal/catalog/domain"
	"github.com/narwhalmedia/catalog/internal/catalog/service"
	"github.com/narwhalmedia/catalog/internal/metrics"
	"github.com/narwhalmedia/catalog/pkg/auth"
	"github.com/narwhalmedia/catalog/pkg/interfaces"
	"github.com/narwhalmedia/catalog/pkg/logger"
)

// Catalog is the service surface the handlers drive.
type Catalog interface {
	ListSeries(ctx context.Context) ([]*domain.Series, error)
	GetSeries(ctx context.Context, id int64) (*domain.Series, error)
	CreateSeries(ctx context.Context, in service.SeriesInput) (*domain.Series, error)
	UpdateSeries(ctx context.Context, id int64, in service.SeriesInput) (*domain.Series, error)
	DeleteSeries(ctx context.Context, id int64) error
	ListEpisodes(ctx context.Context, seriesID int64) ([]*domain.Episode, error)
	GetEpisode(ctx context.Context, seriesID, episodeID int64) (*domain.Episode, error)
	GetStreamableFile(ctx context.Context, episodeID int64) (string, error)
	CreateEpisode(ctx context.Context, seriesID int64, in service.EpisodeInput) (*domain.Episode, error)
	DeleteEpisode(ctx context.Context, episodeID int64) (*domain.Episode, error)
}

// Config wires the router.
type Config struct {
	Catalog        Catalog
	Authenticator  *auth.Authenticator
	Sessions       *auth.SessionManager
	Logger         interfaces.Logger
	Metrics        *metrics.Metrics
	MetricsPath    string // empty disables the endpoint
	CoverRoot      string
	MaxUploadBytes int64
	RequestTimeout time.Duration
	Health         func(ctx context.Context) error
}

// Handler holds the dependencies of the route handlers.
type Handler struct {
	catalog        Catalog
	authenticator  *auth.Authenticator
	sessions       *auth.SessionManager
	logger         interfaces.Logger
	templates      *renderer
	maxUploadBytes int64
}

// NewRouter builds the chi router with every catalog route.
func NewRouter(cfg Config) (http.Handler, error) {
	templates, err := newRenderer()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		catalog:        cfg.Catalog,
		authenticator:  cfg.Authenticator,
		sessions:       cfg.Sessions,
		logger:         cfg.Logger,
		templates:      templates,
		maxUploadBytes: cfg.MaxUploadBytes,
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.HTTPMiddleware(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cfg.Metrics.Middleware)
	r.Use(auth.LoadAdmin(cfg.Sessions))

	r.Get("/healthz", healthHandler(cfg.Health))
	if cfg.MetricsPath != "" {
		r.Method(http.MethodGet, cfg.MetricsPath, cfg.Metrics.Handler())
	}
	if cfg.CoverRoot != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", noDirListing(http.FileServer(http.Dir(cfg.CoverRoot)))))
	}

	// Streams run as long as the client watches, so they stay outside the
	// request timeout.
	r.Get("/stream/{episodeID}", h.stream)

	r.Group(func(r chi.Router) {
		if cfg.RequestTimeout > 0 {
			r.Use(middleware.Timeout(cfg.RequestTimeout))
		}
		r.Get("/", h.index)
		r.Get("/series/{id}", h.showSeries)
		r.Get("/series/{id}/episode/{episodeID}", h.watch)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", h.loginForm)
		r.Post("/login", h.login)
		r.Get("/logout", h.logout)

		r.Group(func(r chi.Router) {
			r.Use(auth.RequireAdmin(cfg.Sessions, h.denyAdmin))

			r.Get("/series", h.adminSeries)
			r.Post("/series", h.createSeries)
			r.Get("/series/{id}/edit", h.editSeriesForm)
			r.Post("/series/{id}/edit", h.updateSeries)
			r.Post("/series/{id}/delete", h.deleteSeries)
			r.Get("/series/{id}/episodes", h.adminEpisodes)
			r.Post("/series/{id}/episodes", h.createEpisode)
			r.Post("/episodes/{id}/delete", h.deleteEpisode)
		})
	})

	return r, nil
}

func healthHandler(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, code := "ok", http.StatusOK
		if check != nil {
			if err := check(r.Context()); err != nil {
				status, code = "unavailable", http.StatusServiceUnavailable
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}

func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (h *Handler) denyAdmin(w http.ResponseWriter, r *http.Request) {
	addFlash(w, r, FlashError, "admin login required")
	redirect(w, r, "/admin/login")
}

// log returns the request-scoped logger.
func (h *Handler) log(r *http.Request) interfaces.Logger {
	return logger.FromContext(r.Context(), h.logger)
}

func redirect(w http.ResponseWriter, r *http.Request, target string) {
	http.Redirect(w, r, target, http.StatusSeeOther)
}
