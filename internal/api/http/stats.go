package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightfold/readiness/internal/assessment"
	"github.com/brightfold/readiness/internal/catalog"
)

// GetCatalogHandler serves the question catalog to the renderer. Read-only;
// the catalog is loaded once at startup.
func GetCatalogHandler(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, cat)
	}
}

// GetStatsHandler exposes aggregate completion stats for dashboard
// consumers. Stats are recomputed from the stored form data, never read back
// from the cached counters.
func GetStatsHandler(mgr *assessment.Manager, cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		form, err := mgr.Peek(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if form == nil {
			http.Error(w, "assessment not found", 404)
			return
		}
		writeJSON(w, assessment.ComputeStats(cat, form))
	}
}
