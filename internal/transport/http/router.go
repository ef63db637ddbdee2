// Package httptransport assembles the public HTTP surface: health and metrics
// endpoints plus the authenticated module handlers.
package httptransport

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/aadya-khanna/OpenScore/internal/platform/metrics"
	"github.com/aadya-khanna/OpenScore/internal/platform/middleware"
	"github.com/aadya-khanna/OpenScore/pkg/platform/httputil"
	"github.com/aadya-khanna/OpenScore/pkg/requestcontext"
)

const healthTimeout = 2 * time.Second

// Registrar mounts a module's routes.
type Registrar interface {
	Register(r chi.Router)
}

// HealthCheck reports whether one dependency is usable.
type HealthCheck func(ctx context.Context) error

// RouterConfig holds everything the router needs.
type RouterConfig struct {
	Logger    *slog.Logger
	Validator middleware.JWTValidator
	Metrics   *metrics.Metrics
	// MetricsHandler defaults to the default Prometheus registry.
	MetricsHandler http.Handler
	Checks         map[string]HealthCheck
	Handlers       []Registrar
}

// NewRouter wires middleware, public endpoints and the authenticated group.
func NewRouter(cfg RouterConfig) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	metricsHandler := cfg.MetricsHandler
	if metricsHandler == nil {
		metricsHandler = metrics.Handler()
	}

	r := chi.NewRouter()
	r.Use(middleware.Recover(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.RequestTime)
	r.Use(middleware.AccessLog(logger))
	r.Use(instrument(cfg.Metrics))

	r.Get("/health", healthHandler(cfg.Checks))
	r.Method(http.MethodGet, "/metrics", metricsHandler)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(cfg.Validator, logger))
		r.Get("/me", meHandler)
		for _, h := range cfg.Handlers {
			h.Register(r)
		}
	})
	return r
}

// MeResponse is the body of GET /me.
type MeResponse struct {
	UserID string `json:"user_id"`
}

// meHandler returns the subject of the validated token.
func meHandler(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, MeResponse{UserID: requestcontext.UserID(r.Context())})
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func healthHandler(checks map[string]HealthCheck) http.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		resp := HealthResponse{Status: "ok"}
		status := http.StatusOK
		if len(names) > 0 {
			resp.Checks = make(map[string]string, len(names))
		}
		for _, name := range names {
			if err := checks[name](ctx); err != nil {
				resp.Checks[name] = "unavailable"
				resp.Status = "degraded"
				status = http.StatusServiceUnavailable
				continue
			}
			resp.Checks[name] = "ok"
		}
		httputil.WriteJSON(w, status, resp)
	}
}

// instrument records request counts and latency by route pattern so ids in
// paths do not explode label cardinality.
func instrument(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			route := "unmatched"
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					route = pattern
				}
			}
			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			m.ObserveRequest(route, status, time.Since(start).Seconds())
		})
	}
}
