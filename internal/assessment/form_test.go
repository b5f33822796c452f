package assessment_test

import (
	"testing"
	"time"

	"github.com/brightfold/readiness/internal/assessment"
	"github.com/brightfold/readiness/internal/catalog"
	"github.com/brightfold/readiness/internal/storage"
)

// scenarioCatalog has 2 sections and 8 questions, all required.
func scenarioCatalog() *catalog.Catalog {
	sec := func(id string) catalog.Section {
		s := catalog.Section{ID: id, Title: id, Weight: 0.5}
		for _, q := range []string{"q1", "q2", "q3", "q4"} {
			s.Questions = append(s.Questions, catalog.Question{
				ID: q, Text: q, Type: catalog.TypeShortText, Required: true,
			})
		}
		return s
	}
	return &catalog.Catalog{Sections: []catalog.Section{sec("s1"), sec("s2")}}
}

// mixedCatalog has required and optional questions plus a multi-choice.
func mixedCatalog() *catalog.Catalog {
	return &catalog.Catalog{Sections: []catalog.Section{
		{
			ID: "profile", Title: "Profile", Weight: 0.4,
			Questions: []catalog.Question{
				{ID: "name", Text: "Name", Type: catalog.TypeShortText, Required: true},
				{ID: "tools", Text: "Tools", Type: catalog.TypeMultiChoice, Options: []string{"a", "b", "c"}, Required: true},
				{ID: "notes", Text: "Notes", Type: catalog.TypeLongText, Required: false},
			},
		},
		{
			ID: "usage", Title: "Usage", Weight: 0.6,
			Questions: []catalog.Question{
				{ID: "level", Text: "Level", Type: catalog.TypeSingleChoice, Options: []string{"low", "high"}, Required: true},
			},
		},
	}}
}

func formsEqual(a, b assessment.FormData) bool {
	if len(a) != len(b) {
		return false
	}
	for sid, sec := range a {
		other, ok := b[sid]
		if !ok || len(sec) != len(other) {
			return false
		}
		for qid, ans := range sec {
			got, ok := other[qid]
			if !ok || !ans.Equal(got) {
				return false
			}
		}
	}
	return true
}

func TestSetAnswerLastWriteWins(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())
	f.SetAnswer("profile", "name", assessment.TextAnswer("first"))
	f.SetAnswer("profile", "name", assessment.TextAnswer("second"))

	a, ok := f.GetAnswer("profile", "name")
	if !ok || a.Text != "second" {
		t.Fatalf("GetAnswer = %+v (ok=%v), want second", a, ok)
	}
}

func TestExplicitEmptyDistinctFromAbsent(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())

	if _, ok := f.GetAnswer("profile", "name"); ok {
		t.Fatal("absent key reported as present")
	}
	f.SetAnswer("profile", "name", assessment.TextAnswer(""))
	a, ok := f.GetAnswer("profile", "name")
	if !ok {
		t.Fatal("explicit empty value should be present")
	}
	if !a.Empty() {
		t.Fatal("explicit empty value should still count as unanswered")
	}
}

func TestValidateSectionReportsRequired(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())

	valid, errs := f.ValidateSection(0)
	if valid {
		t.Fatal("section with unanswered required questions must be invalid")
	}
	if _, ok := errs[assessment.ErrorKey("profile", "name")]; !ok {
		t.Fatal("missing error for profile.name")
	}
	if _, ok := errs[assessment.ErrorKey("profile", "tools")]; !ok {
		t.Fatal("missing error for profile.tools")
	}
	if _, ok := errs[assessment.ErrorKey("profile", "notes")]; ok {
		t.Fatal("optional question must never be validated")
	}
	if f.Complete() {
		t.Fatal("Complete must be false while required questions are unanswered")
	}
}

func TestEmptyValuesFailValidation(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())
	f.SetAnswer("profile", "name", assessment.TextAnswer(""))
	f.SetAnswer("profile", "tools", assessment.MultiAnswer())

	valid, errs := f.ValidateSection(0)
	if valid {
		t.Fatal("empty string and empty list must fail validation")
	}
	if len(errs) != 2 {
		t.Fatalf("errors = %v, want 2 entries", errs)
	}
}

func TestErrorClearedOnAnswer(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())
	f.ValidateSection(0)
	if _, ok := f.Error("profile", "name"); !ok {
		t.Fatal("expected error before answering")
	}

	f.SetAnswer("profile", "name", assessment.TextAnswer("Acme"))
	if _, ok := f.Error("profile", "name"); ok {
		t.Fatal("error must clear the instant an answer is supplied")
	}
	// Other errors stay until their keys are corrected.
	if _, ok := f.Error("profile", "tools"); !ok {
		t.Fatal("unrelated error cleared in bulk")
	}
}

func TestErrorsMergeAcrossSections(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())
	f.ValidateSection(0)
	f.ValidateSection(1)

	errs := f.Errors()
	if _, ok := errs[assessment.ErrorKey("profile", "name")]; !ok {
		t.Fatal("errors from previously visited sections must remain visible")
	}
	if _, ok := errs[assessment.ErrorKey("usage", "level")]; !ok {
		t.Fatal("missing error for usage.level")
	}
}

func TestCompletePopulatesEverySection(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())
	f.Complete()

	errs := f.Errors()
	for _, key := range []string{"profile.name", "profile.tools", "usage.level"} {
		if _, ok := errs[key]; !ok {
			t.Fatalf("Complete did not populate error for %s", key)
		}
	}
}

func TestCompleteReadOnlyHasNoSideEffect(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())
	if f.CompleteReadOnly() {
		t.Fatal("empty form cannot be complete")
	}
	if len(f.Errors()) != 0 {
		t.Fatal("read-only check must not populate errors")
	}

	f.SetAnswer("profile", "name", assessment.TextAnswer("Acme"))
	f.SetAnswer("profile", "tools", assessment.MultiAnswer("a"))
	f.SetAnswer("usage", "level", assessment.TextAnswer("high"))
	if !f.CompleteReadOnly() {
		t.Fatal("all required answered, expected complete")
	}
}

func TestResetCancelsPendingSave(t *testing.T) {
	cache := storage.NewMemCache()
	mgr := assessment.NewManager(assessment.NewInMemoryStore(), mixedCatalog())
	saver := assessment.NewSaver(cache, mgr, assessment.WithDebounce(20*time.Millisecond))
	f := assessment.NewForm(mixedCatalog())
	f.AttachSaver(saver)

	f.SetAnswer("profile", "name", assessment.TextAnswer("Acme"))
	f.Reset()

	time.Sleep(80 * time.Millisecond)
	if _, ok, _ := cache.Get(assessment.DefaultCacheKey); ok {
		t.Fatal("stale debounced write resurrected cleared data")
	}
	if _, present := f.GetAnswer("profile", "name"); present {
		t.Fatal("reset did not clear answers")
	}
	if len(f.Errors()) != 0 {
		t.Fatal("reset did not clear errors")
	}
}

func TestDataReturnsDeepCopy(t *testing.T) {
	f := assessment.NewForm(mixedCatalog())
	f.SetAnswer("profile", "tools", assessment.MultiAnswer("a", "b"))

	snap := f.Data()
	snap["profile"]["tools"] = assessment.TextAnswer("mutated")

	a, _ := f.GetAnswer("profile", "tools")
	if !a.Multi || len(a.Options) != 2 {
		t.Fatalf("mutating a Data() copy leaked into the form: %+v", a)
	}
}
