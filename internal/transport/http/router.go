// Package http assembles the service's HTTP surface: global middleware, the
// feature handlers, and the operational endpoints.
package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	apphandler "permitdesk/internal/application/handler"
	dochandler "permitdesk/internal/document/handler"
	"permitdesk/internal/platform/metrics"
	"permitdesk/internal/platform/middleware"
	"permitdesk/internal/transport/http/shared"
)

const requestTimeout = 30 * time.Second

// Deps are the wired handlers the router mounts.
type Deps struct {
	Applications *apphandler.Handler
	Documents    *dochandler.Handler
	Metrics      *metrics.Metrics
	Logger       *slog.Logger

	// Health reports per-component states ("ok" or an error string). Any
	// non-ok component degrades the health endpoint to 503.
	Health func() map[string]string
}

// NewRouter builds the chi router with the standard middleware chain.
func NewRouter(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.Logger))
	r.Use(middleware.Timeout(requestTimeout))
	r.Use(middleware.Latency(deps.Metrics))
	r.Use(middleware.Actor)

	r.Get("/healthz", handleHealth(deps.Health))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(api chi.Router) {
		deps.Applications.Register(api)
		deps.Documents.Register(api)
	})

	return r
}

func handleHealth(check func() map[string]string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		components := map[string]string{}
		if check != nil {
			components = check()
		}
		status := http.StatusOK
		overall := "ok"
		for _, state := range components {
			if state != "ok" {
				status = http.StatusServiceUnavailable
				overall = "degraded"
				break
			}
		}
		shared.WriteJSON(w, status, map[string]any{
			"status":     overall,
			"components": components,
		})
	}
}
