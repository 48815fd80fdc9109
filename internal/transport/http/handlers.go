// Package http exposes the normalized tables and derived views over a
// JSON API. It is a thin consumer of the ingestion core: all shaping of
// the data happens in internal/dataprocessing.
package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/202510804-cloud/polar-plant-dashboard/internal/config"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/dataprocessing"
	apperrors "github.com/202510804-cloud/polar-plant-dashboard/internal/errors"
)

// DashboardHandler serves the dashboard data API.
type DashboardHandler struct {
	loader *dataprocessing.Loader
	cfg    *config.Config
	logger *slog.Logger
}

// NewDashboardHandler creates the handler over a shared loader.
func NewDashboardHandler(loader *dataprocessing.Loader, cfg *config.Config, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		loader: loader,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "dashboard_handler")),
	}
}

// Routes returns the API routes.
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/status", h.GetStatus)
	r.Get("/groups", h.GetGroups)
	r.Post("/reload", h.Reload)

	r.Route("/env", func(r chi.Router) {
		r.Get("/", h.GetEnvTable)
		r.Get("/means", h.GetEnvMeans)
		r.Get("/best", h.GetEnvBest)
	})
	r.Route("/growth", func(r chi.Router) {
		r.Get("/", h.GetGrowthTable)
		r.Get("/means", h.GetGrowthMeans)
		r.Get("/best", h.GetGrowthBest)
	})

	return r
}

// statusResponse is the load-status signal consumed by the presentation
// layer to decide whether to halt.
type statusResponse struct {
	Status     string   `json:"status"`
	Kind       string   `json:"kind,omitempty"`
	Message    string   `json:"message,omitempty"`
	RunID      string   `json:"run_id,omitempty"`
	EnvRows    int      `json:"env_rows"`
	GrowthRows int      `json:"growth_rows"`
	Warnings   []string `json:"warnings,omitempty"`
}

// GetStatus reports the outcome of the (memoized) ingestion run.
func (h *DashboardHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	snap, err := h.loader.Load(r.Context())
	if err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, statusResponse{
			Status:  "error",
			Kind:    string(apperrors.TypeOf(err)),
			Message: err.Error(),
		})
		return
	}

	render.JSON(w, r, statusResponse{
		Status:     "ok",
		RunID:      snap.RunID,
		EnvRows:    len(snap.Env.Rows),
		GrowthRows: len(snap.Growth.Rows),
		Warnings:   snap.Warnings,
	})
}

// GetGroups returns the configured research groups.
func (h *DashboardHandler) GetGroups(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]interface{}{"groups": h.cfg.Groups})
}

// Reload invalidates the memoized snapshot and runs ingestion again.
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.loader.Invalidate()
	h.logger.InfoContext(r.Context(), "cache invalidated, reloading")
	h.GetStatus(w, r)
}

// GetEnvTable returns the unified environmental table, optionally filtered
// to one group via ?group=. An empty or absent group means all groups.
func (h *DashboardHandler) GetEnvTable(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	rows := dataprocessing.FilterByGroup(snap.Env.Rows, r.URL.Query().Get("group"))
	render.JSON(w, r, dataprocessing.EnvTable{Columns: snap.Env.Columns, Rows: rows})
}

// GetGrowthTable is the growth counterpart of GetEnvTable.
func (h *DashboardHandler) GetGrowthTable(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	rows := dataprocessing.FilterByGroup(snap.Growth.Rows, r.URL.Query().Get("group"))
	render.JSON(w, r, dataprocessing.GrowthTable{Columns: snap.Growth.Columns, Rows: rows})
}

// GetEnvMeans returns per-group means and counts over the environmental table.
func (h *DashboardHandler) GetEnvMeans(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	stats := dataprocessing.GroupMeans(snap.Env.Rows, h.cfg.GroupNames())
	render.JSON(w, r, map[string]interface{}{"groups": stats})
}

// GetGrowthMeans returns per-group means and counts over the growth table.
func (h *DashboardHandler) GetGrowthMeans(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	stats := dataprocessing.GroupMeans(snap.Growth.Rows, h.cfg.GroupNames())
	render.JSON(w, r, map[string]interface{}{"groups": stats})
}

type bestResponse struct {
	Attribute string  `json:"attribute"`
	Group     string  `json:"group"`
	Mean      float64 `json:"mean"`
}

// GetEnvBest returns the group with the maximal mean of ?attr= over the
// environmental table.
func (h *DashboardHandler) GetEnvBest(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.renderBest(w, r, func(attr string) (string, float64, bool) {
		return dataprocessing.BestGroup(snap.Env.Rows, attr, h.cfg.GroupNames())
	})
}

// GetGrowthBest returns the group with the maximal mean of ?attr= over the
// growth table. The attribute defaults to fresh weight, the study's
// primary outcome.
func (h *DashboardHandler) GetGrowthBest(w http.ResponseWriter, r *http.Request) {
	snap, ok := h.snapshot(w, r)
	if !ok {
		return
	}
	h.renderBest(w, r, func(attr string) (string, float64, bool) {
		if attr == "" {
			attr = dataprocessing.ColFreshWeight
		}
		return dataprocessing.BestGroup(snap.Growth.Rows, attr, h.cfg.GroupNames())
	})
}

func (h *DashboardHandler) renderBest(w http.ResponseWriter, r *http.Request, best func(attr string) (string, float64, bool)) {
	attr := r.URL.Query().Get("attr")
	group, mean, ok := best(attr)
	if !ok {
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, map[string]string{
			"error": "no group carries the requested attribute",
			"attr":  attr,
		})
		return
	}
	if attr == "" {
		attr = dataprocessing.ColFreshWeight
	}
	render.JSON(w, r, bestResponse{Attribute: attr, Group: group, Mean: mean})
}

// snapshot loads the memoized ingestion result, rendering the halting
// failure as 503 when the pipeline cannot serve views.
func (h *DashboardHandler) snapshot(w http.ResponseWriter, r *http.Request) (*dataprocessing.Snapshot, bool) {
	snap, err := h.loader.Load(r.Context())
	if err != nil {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, statusResponse{
			Status:  "error",
			Kind:    string(apperrors.TypeOf(err)),
			Message: err.Error(),
		})
		return nil, false
	}
	return snap, true
}
