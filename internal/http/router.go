// Package httpapi assembles the router. Transport concerns only; business
// logic lives in the services the handlers delegate to.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"kycgate/internal/model"
	"kycgate/internal/platform/middleware"
	verifhandler "kycgate/internal/verification/handler"
	"kycgate/pkg/platform/httputil"
)

// NewRouter wires all endpoints plus the operational surface.
func NewRouter(h *verifhandler.Handler, bundle *model.Bundle, adminKey []byte, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	h.Register(r)

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.RequireAdmin(adminKey, logger))
		h.RegisterAdmin(admin)
	})

	r.Get("/healthz", handleHealth(bundle))
	r.Handle("/metrics", promhttp.Handler())
	return r
}

// handleHealth reports liveness and the bundle capability state, mirroring
// what operators need to tell "serving" apart from "serving degraded".
func handleHealth(bundle *model.Bundle) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		classifier, selector, scaler := bundle.Loaded()
		httputil.WriteJSON(w, http.StatusOK, map[string]any{
			"status":           "ok",
			"mode":             bundle.Mode().String(),
			"classifier":       loadedLabel(classifier),
			"selector":         loadedLabel(selector),
			"scaler":           loadedLabel(scaler),
			"fallback_entries": bundle.FallbackEntries(),
		})
	}
}

func loadedLabel(loaded bool) string {
	if loaded {
		return "Loaded"
	}
	return "Not Loaded"
}
