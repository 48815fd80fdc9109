package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/202510804-cloud/polar-plant-dashboard/internal/config"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/dataprocessing"
	"github.com/202510804-cloud/polar-plant-dashboard/internal/metrics"
)

// NewRouter assembles the full HTTP surface: the data API under /api,
// health and Prometheus endpoints at the root.
func NewRouter(loader *dataprocessing.Loader, cfg *config.Config, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Mount("/api", NewDashboardHandler(loader, cfg, logger).Routes())

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "up"})
	})
	r.Handle("/metrics", promhttp.Handler())

	return r
}

// requestLogger logs each request through slog and feeds the latency
// histogram.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			elapsed := time.Since(start)
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = r.URL.Path
			}
			metrics.HTTPDuration.WithLabelValues(route, strconv.Itoa(ww.Status())).Observe(elapsed.Seconds())

			logger.InfoContext(r.Context(), "http request",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.Status()),
				slog.Duration("elapsed", elapsed),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		})
	}
}
