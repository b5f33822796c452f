package assessment

import (
	"sync"

	"github.com/brightfold/readiness/internal/catalog"
)

const requiredMsg = "This field is required"

// Form is the working state of one questionnaire session: the answer store
// plus the shared validation-error map. It is the authoritative copy of the
// answers while the session runs; persistence only mirrors it.
type Form struct {
	cat *catalog.Catalog

	mu     sync.Mutex
	data   FormData
	errors ValidationErrors
	saver  *Saver
}

// NewForm creates an empty form over the given catalog.
func NewForm(cat *catalog.Catalog) *Form {
	return &Form{
		cat:    cat,
		data:   FormData{},
		errors: ValidationErrors{},
	}
}

// AttachSaver wires the debounced persistence gateway. Every SetAnswer call
// schedules a cycle on it; Reset cancels any pending cycle and discards the
// cached snapshot.
func (f *Form) AttachSaver(s *Saver) {
	f.mu.Lock()
	f.saver = s
	f.mu.Unlock()
}

// SetAnswer replaces or creates the answer for a key, clears that key's
// validation error, and schedules a persistence cycle. Calls for the same
// key apply in the order received; last write wins.
func (f *Form) SetAnswer(sectionID, questionID string, a Answer) {
	f.mu.Lock()
	f.data.Set(sectionID, questionID, a)
	delete(f.errors, ErrorKey(sectionID, questionID))
	saver := f.saver
	var snap FormData
	if saver != nil {
		snap = f.data.Clone()
	}
	f.mu.Unlock()

	if saver != nil {
		saver.Schedule(snap)
	}
}

// GetAnswer returns the current answer and whether one exists. An explicit
// empty value is reported as present; Empty() distinguishes it.
func (f *Form) GetAnswer(sectionID, questionID string) (Answer, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.Get(sectionID, questionID)
}

// Reset clears all answers, all validation errors, and the record linkage of
// any attached saver. The pending debounce cycle is cancelled first so a
// stale write cannot resurrect cleared data.
func (f *Form) Reset() {
	f.mu.Lock()
	saver := f.saver
	f.data = FormData{}
	f.errors = ValidationErrors{}
	f.mu.Unlock()

	if saver != nil {
		saver.Cancel()
		saver.Discard()
	}
}

// Restore adopts recovered form data without scheduling a save.
func (f *Form) Restore(data FormData) {
	if data == nil {
		return
	}
	f.mu.Lock()
	f.data = data.Clone()
	f.mu.Unlock()
}

// ValidateSection checks the required questions of one section. New errors
// merge into the shared map, so errors from previously visited sections stay
// visible until corrected. Returns whether the section is valid plus the
// errors found by this call.
func (f *Form) ValidateSection(index int) (bool, ValidationErrors) {
	sec := f.cat.Section(index)
	if sec == nil {
		return true, ValidationErrors{}
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	found := ValidationErrors{}
	for i := range sec.Questions {
		q := &sec.Questions[i]
		if !q.Required {
			continue
		}
		a, ok := f.data.Get(sec.ID, q.ID)
		if !ok || a.Empty() {
			found[ErrorKey(sec.ID, q.ID)] = requiredMsg
		}
	}
	for k, v := range found {
		f.errors[k] = v
	}
	return len(found) == 0, found
}

// Complete validates every section eagerly. All sections are checked even
// after the first failure, which populates the error map for every section,
// not just the current one.
func (f *Form) Complete() bool {
	ok := true
	for i := 0; i < f.cat.Len(); i++ {
		valid, _ := f.ValidateSection(i)
		if !valid {
			ok = false
		}
	}
	return ok
}

// CompleteReadOnly reports whether every required question is answered
// without touching the error map.
func (f *Form) CompleteReadOnly() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.cat.Sections {
		sec := &f.cat.Sections[i]
		for j := range sec.Questions {
			q := &sec.Questions[j]
			if !q.Required {
				continue
			}
			a, ok := f.data.Get(sec.ID, q.ID)
			if !ok || a.Empty() {
				return false
			}
		}
	}
	return true
}

// Error returns the validation message for a key, if any.
func (f *Form) Error(sectionID, questionID string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.errors[ErrorKey(sectionID, questionID)]
	return msg, ok
}

// Errors returns a copy of the current validation-error map.
func (f *Form) Errors() ValidationErrors {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(ValidationErrors, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Stats recomputes completion numbers from the current answers.
func (f *Form) Stats() Stats {
	f.mu.Lock()
	data := f.data
	stats := ComputeStats(f.cat, data)
	f.mu.Unlock()
	return stats
}

// Data returns a deep copy of the current answers.
func (f *Form) Data() FormData {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data.Clone()
}
