package http_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	api "github.com/brightfold/readiness/internal/api/http"
	"github.com/brightfold/readiness/internal/assessment"
	"github.com/brightfold/readiness/internal/catalog"
)

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{Sections: []catalog.Section{
		{
			ID: "s1", Title: "One", Weight: 1,
			Questions: []catalog.Question{
				{ID: "q1", Text: "Q1", Type: catalog.TypeShortText, Required: true},
				{ID: "q2", Text: "Q2", Type: catalog.TypeMultiChoice, Options: []string{"a", "b"}, Required: true},
			},
		},
	}}
}

func newTestRouter(mgr *assessment.Manager, cat *catalog.Catalog) http.Handler {
	r := chi.NewRouter()
	r.Get("/catalog", api.GetCatalogHandler(cat))
	r.Route("/assessments", func(ar chi.Router) {
		ar.Post("/", api.CreateAssessmentHandler(mgr))
		ar.Get("/", api.ListAssessmentsHandler(mgr))
		ar.Route("/{assessmentID}", func(sr chi.Router) {
			sr.Get("/", api.GetAssessmentHandler(mgr))
			sr.Get("/form", api.LoadFormDataHandler(mgr))
			sr.Put("/form", api.SaveFormDataHandler(mgr))
			sr.Post("/responses", api.SaveResponseHandler(mgr))
			sr.Post("/complete", api.CompleteAssessmentHandler(mgr))
			sr.Post("/abandon", api.AbandonAssessmentHandler(mgr))
			sr.Get("/stats", api.GetStatsHandler(mgr, cat))
		})
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(raw)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestAssessmentFlow(t *testing.T) {
	cat := testCatalog()
	mgr := assessment.NewManager(assessment.NewInMemoryStore(), cat)
	h := newTestRouter(mgr, cat)

	// Create.
	w := do(t, h, "POST", "/assessments/", nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d: %s", w.Code, w.Body)
	}
	var created struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &created); err != nil || created.ID == "" {
		t.Fatalf("create body = %s", w.Body)
	}

	// A second create while one is active is a conflict.
	if w := do(t, h, "POST", "/assessments/", nil); w.Code != http.StatusConflict {
		t.Fatalf("second create status = %d, want 409", w.Code)
	}

	// Save a single response.
	resp := map[string]any{"section_id": "s1", "question_id": "q1", "value": "hello"}
	if w := do(t, h, "POST", "/assessments/"+created.ID+"/responses", resp); w.Code != 200 {
		t.Fatalf("save response status = %d: %s", w.Code, w.Body)
	}

	// Save the full form, including a multi-choice value.
	form := map[string]map[string]any{
		"s1": {"q1": "hello", "q2": []string{"a", "b"}},
	}
	if w := do(t, h, "PUT", "/assessments/"+created.ID+"/form", form); w.Code != 200 {
		t.Fatalf("save form status = %d: %s", w.Code, w.Body)
	}

	// Load it back.
	w = do(t, h, "GET", "/assessments/"+created.ID+"/form", nil)
	if w.Code != 200 {
		t.Fatalf("load status = %d", w.Code)
	}
	var loaded assessment.FormData
	if err := json.Unmarshal(w.Body.Bytes(), &loaded); err != nil {
		t.Fatalf("load body: %v", err)
	}
	if a, ok := loaded.Get("s1", "q2"); !ok || !a.Multi || len(a.Options) != 2 {
		t.Fatalf("loaded q2 = %+v", a)
	}

	// Stats reflect the saved form.
	w = do(t, h, "GET", "/assessments/"+created.ID+"/stats", nil)
	var stats assessment.Stats
	if err := json.Unmarshal(w.Body.Bytes(), &stats); err != nil {
		t.Fatalf("stats body: %v", err)
	}
	if stats.TotalQuestions != 2 || stats.AnsweredQuestions != 2 || stats.CompletionPercentage != 100 {
		t.Fatalf("stats = %+v", stats)
	}

	// Complete.
	w = do(t, h, "POST", "/assessments/"+created.ID+"/complete", form)
	if w.Code != 200 {
		t.Fatalf("complete status = %d: %s", w.Code, w.Body)
	}
	var rec assessment.Assessment
	if err := json.Unmarshal(w.Body.Bytes(), &rec); err != nil {
		t.Fatalf("complete body: %v", err)
	}
	if rec.Status != assessment.StatusCompleted || rec.CompletedAt == nil {
		t.Fatalf("record = %+v", rec)
	}

	// Listing includes the record.
	w = do(t, h, "GET", "/assessments/", nil)
	var list []assessment.Summary
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("list body: %v", err)
	}
	if len(list) != 1 || list[0].CompletionStatus != assessment.StatusCompleted {
		t.Fatalf("list = %+v", list)
	}
}

func TestLoadUnknownAssessmentIs404(t *testing.T) {
	cat := testCatalog()
	mgr := assessment.NewManager(assessment.NewInMemoryStore(), cat)
	h := newTestRouter(mgr, cat)

	if w := do(t, h, "GET", "/assessments/ghost/form", nil); w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if w := do(t, h, "GET", "/assessments/ghost/stats", nil); w.Code != http.StatusNotFound {
		t.Fatalf("stats status = %d, want 404", w.Code)
	}
}

func TestCatalogEndpoint(t *testing.T) {
	cat := testCatalog()
	mgr := assessment.NewManager(assessment.NewInMemoryStore(), cat)
	h := newTestRouter(mgr, cat)

	w := do(t, h, "GET", "/catalog", nil)
	if w.Code != 200 {
		t.Fatalf("status = %d", w.Code)
	}
	var got catalog.Catalog
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("body: %v", err)
	}
	if got.Len() != 1 || got.Sections[0].ID != "s1" {
		t.Fatalf("catalog = %+v", got)
	}
}

func TestSaveResponseValidation(t *testing.T) {
	cat := testCatalog()
	mgr := assessment.NewManager(assessment.NewInMemoryStore(), cat)
	h := newTestRouter(mgr, cat)

	w := do(t, h, "POST", "/assessments/x/responses", map[string]any{"value": "v"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}
