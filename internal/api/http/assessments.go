package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/brightfold/readiness/internal/assessment"
)

func CreateAssessmentHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := mgr.Create(r.Context())
		if err != nil {
			if err == assessment.ErrActiveAssessment {
				http.Error(w, err.Error(), http.StatusConflict)
				return
			}
			http.Error(w, "could not create assessment", 500)
			return
		}
		w.WriteHeader(http.StatusCreated)
		writeJSON(w, map[string]string{"id": id})
	}
}

func GetAssessmentHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		a, err := mgr.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), 404)
			return
		}
		writeJSON(w, a)
	}
}

func LoadFormDataHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		form, err := mgr.Load(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		if form == nil {
			http.Error(w, "assessment not found", 404)
			return
		}
		writeJSON(w, form)
	}
}

func SaveFormDataHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		var form assessment.FormData
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if !mgr.SaveFormData(r.Context(), id, form) {
			http.Error(w, "save failed", 500)
			return
		}
		writeJSON(w, map[string]bool{"saved": true})
	}
}

func SaveResponseHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		var req struct {
			SectionID  string            `json:"section_id"`
			QuestionID string            `json:"question_id"`
			Value      assessment.Answer `json:"value"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if req.SectionID == "" || req.QuestionID == "" {
			http.Error(w, "section_id and question_id required", 400)
			return
		}
		if !mgr.SaveResponse(r.Context(), id, req.SectionID, req.QuestionID, req.Value) {
			http.Error(w, "save failed", 500)
			return
		}
		writeJSON(w, map[string]bool{"saved": true})
	}
}

func CompleteAssessmentHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		var form assessment.FormData
		if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
			http.Error(w, "bad json", 400)
			return
		}
		if !mgr.Complete(r.Context(), id, form) {
			http.Error(w, "completion failed", 500)
			return
		}
		a, err := mgr.Get(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), 404)
			return
		}
		writeJSON(w, a)
	}
}

func AbandonAssessmentHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "assessmentID")
		if !mgr.Abandon(r.Context(), id) {
			http.Error(w, "abandon failed", 500)
			return
		}
		writeJSON(w, map[string]bool{"abandoned": true})
	}
}

// GET /assessments?limit=50&offset=0
func ListAssessmentsHandler(mgr *assessment.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := mgr.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), 500)
			return
		}
		writeJSON(w, list)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
