package assessment

import (
	"encoding/json"
	"fmt"
	"time"
)

// Assessment statuses. Both completed and abandoned are terminal.
const (
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusAbandoned  = "abandoned"
)

// SnapshotVersion tags every persisted progress snapshot. Snapshots carrying
// a different or missing version are discarded on recovery.
const SnapshotVersion = "1.0"

// Answer is one response value: free text or a single selected option, or an
// ordered list of selected options for multi-choice questions.
type Answer struct {
	Text    string
	Options []string
	Multi   bool
}

// TextAnswer builds a single-valued answer.
func TextAnswer(s string) Answer { return Answer{Text: s} }

// MultiAnswer builds a list-valued answer. Order is preserved.
func MultiAnswer(opts ...string) Answer { return Answer{Options: opts, Multi: true} }

// Empty reports whether the answer counts as unanswered: an empty string or
// an empty list. An absent key counts the same way.
func (a Answer) Empty() bool {
	if a.Multi {
		return len(a.Options) == 0
	}
	return a.Text == ""
}

// Equal compares two answers including option order.
func (a Answer) Equal(b Answer) bool {
	if a.Multi != b.Multi {
		return false
	}
	if !a.Multi {
		return a.Text == b.Text
	}
	if len(a.Options) != len(b.Options) {
		return false
	}
	for i := range a.Options {
		if a.Options[i] != b.Options[i] {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the answer as a bare string or a string array, the
// shape the durable payload stores.
func (a Answer) MarshalJSON() ([]byte, error) {
	if a.Multi {
		if a.Options == nil {
			return json.Marshal([]string{})
		}
		return json.Marshal(a.Options)
	}
	return json.Marshal(a.Text)
}

// UnmarshalJSON accepts either a string or a string array.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*a = Answer{Text: s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*a = Answer{Options: list, Multi: true}
		return nil
	}
	return fmt.Errorf("answer must be a string or a string array")
}

// FormData is the complete set of answers for a session, keyed by section id
// then question id. Keys are created lazily on first write; an absent key is
// equivalent to an unanswered question.
type FormData map[string]map[string]Answer

// Get returns the answer for a key and whether it was present.
func (f FormData) Get(sectionID, questionID string) (Answer, bool) {
	sec, ok := f[sectionID]
	if !ok {
		return Answer{}, false
	}
	a, ok := sec[questionID]
	return a, ok
}

// Set replaces or creates the answer for a key. Last write wins.
func (f FormData) Set(sectionID, questionID string, a Answer) {
	sec, ok := f[sectionID]
	if !ok {
		sec = map[string]Answer{}
		f[sectionID] = sec
	}
	sec[questionID] = a
}

// Clone deep-copies the form so callers can hand snapshots across goroutine
// or persistence boundaries without aliasing live state.
func (f FormData) Clone() FormData {
	out := make(FormData, len(f))
	for sid, sec := range f {
		cp := make(map[string]Answer, len(sec))
		for qid, a := range sec {
			if a.Multi && a.Options != nil {
				opts := make([]string, len(a.Options))
				copy(opts, a.Options)
				a.Options = opts
			}
			cp[qid] = a
		}
		out[sid] = cp
	}
	return out
}

// ValidationErrors maps "sectionID.questionID" to a human-readable message.
type ValidationErrors map[string]string

// ErrorKey builds the composite key used by ValidationErrors.
func ErrorKey(sectionID, questionID string) string { return sectionID + "." + questionID }

// Assessment is the lifecycle record for one questionnaire run. The answers
// themselves live in FormData, mirrored into durable storage under the
// record's id; the record only caches the derived counters.
type Assessment struct {
	ID                   string     `json:"id"`
	UserID               string     `json:"user_id"`
	Status               string     `json:"status"`
	StartedAt            time.Time  `json:"started_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	CompletedAt          *time.Time `json:"completed_at,omitempty"`
	TotalQuestions       int        `json:"total_questions"`
	AnsweredQuestions    int        `json:"answered_questions"`
	CompletionPercentage int        `json:"completion_percentage"`
}

// Terminal reports whether the record's status admits no further transition.
func (a Assessment) Terminal() bool {
	return a.Status == StatusCompleted || a.Status == StatusAbandoned
}

// Summary is the listing row for dashboards.
type Summary struct {
	ID                   string    `json:"id"`
	UserID               string    `json:"user_id"`
	SubmissionDate       time.Time `json:"submission_date"`
	CompletionStatus     string    `json:"completion_status"`
	CompletionPercentage int       `json:"completion_percentage"`
	TotalScore           *float64  `json:"total_score,omitempty"`
}

// Stats are the aggregate completion numbers derived from FormData and the
// catalog. They are recomputed, never treated as a source of truth.
type Stats struct {
	TotalQuestions       int `json:"total_questions"`
	AnsweredQuestions    int `json:"answered_questions"`
	CompletionPercentage int `json:"completion_percentage"`
}

// Snapshot is the envelope written to the local progress cache.
// Timestamp is Unix milliseconds.
type Snapshot struct {
	Data         FormData `json:"data"`
	Timestamp    int64    `json:"timestamp"`
	Version      string   `json:"version"`
	AssessmentID string   `json:"assessment_id,omitempty"`
}
