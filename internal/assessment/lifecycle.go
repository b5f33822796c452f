package assessment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/brightfold/readiness/internal/audit"
	"github.com/brightfold/readiness/internal/catalog"
)

// ErrActiveAssessment is returned by Create when a session already has an
// active assessment. The manager never silently overwrites an active id.
var ErrActiveAssessment = errors.New("an assessment is already active")

// Notifier delivers user-visible notices. The engine never talks to a UI
// directly; the embedding application supplies its own implementation.
type Notifier interface {
	Notify(title, message string)
	Alert(title, message string)
}

// LogNotifier writes notices to the process log. It is the default.
type LogNotifier struct{}

func (LogNotifier) Notify(title, message string) { log.Printf("notice: %s: %s", title, message) }
func (LogNotifier) Alert(title, message string)  { log.Printf("alert: %s: %s", title, message) }

// Manager owns the identity and status of the current assessment record:
// creation, loading by id, incremental capture, and finalization. All
// failure paths degrade to a bool/nil result; nothing here panics or lets a
// storage error escape.
type Manager struct {
	store  Store
	cat    *catalog.Catalog
	events audit.Recorder
	notify Notifier
	clock  func() time.Time
	userID string

	mu     sync.Mutex
	active string
}

// ManagerOpt customizes a Manager.
type ManagerOpt func(*Manager)

func WithNotifier(n Notifier) ManagerOpt        { return func(m *Manager) { m.notify = n } }
func WithEvents(r audit.Recorder) ManagerOpt    { return func(m *Manager) { m.events = r } }
func WithUserID(id string) ManagerOpt           { return func(m *Manager) { m.userID = id } }
func WithClock(now func() time.Time) ManagerOpt { return func(m *Manager) { m.clock = now } }

func NewManager(store Store, cat *catalog.Catalog, opts ...ManagerOpt) *Manager {
	m := &Manager{
		store:  store,
		cat:    cat,
		events: audit.Nop{},
		notify: LogNotifier{},
		clock:  time.Now,
		userID: "local",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// ActiveID returns the id of the active assessment, or "".
func (m *Manager) ActiveID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Adopt marks an existing id as active without loading it. Used when a
// recovered cache snapshot carries an assessment id.
func (m *Manager) Adopt(id string) {
	m.mu.Lock()
	m.active = id
	m.mu.Unlock()
}

// ClearActive drops the record linkage. The durable record itself is kept;
// reset never hard-deletes.
func (m *Manager) ClearActive() {
	m.mu.Lock()
	m.active = ""
	m.mu.Unlock()
}

// Create starts a new assessment record and returns its id. Calling it while
// another assessment is active is a caller error.
func (m *Manager) Create(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.active != "" {
		m.mu.Unlock()
		return "", ErrActiveAssessment
	}
	m.mu.Unlock()

	now := m.clock()
	a := Assessment{
		ID:             uuid.NewString(),
		UserID:         m.userID,
		Status:         StatusInProgress,
		StartedAt:      now,
		UpdatedAt:      now,
		TotalQuestions: m.cat.TotalQuestions(),
	}
	if err := m.store.Create(ctx, a); err != nil {
		log.Printf("assessment: create failed: %v", err)
		m.notify.Alert("Error", "Failed to create assessment. Please try again.")
		return "", err
	}

	m.mu.Lock()
	m.active = a.ID
	m.mu.Unlock()

	if err := m.events.Append(ctx, audit.TypeAssessmentCreated, a.ID, a); err != nil {
		log.Printf("assessment: event append failed: %v", err)
	}
	m.notify.Notify("Assessment Started", "Your progress will be saved automatically.")
	return a.ID, nil
}

// Load reads the mirrored form data for id. It returns (nil, nil) when the
// id is unknown; absence is not an error. On success the id becomes the
// active assessment.
func (m *Manager) Load(ctx context.Context, id string) (FormData, error) {
	form, err := m.store.LoadPayload(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	m.Adopt(id)
	return form, nil
}

// Peek reads the mirrored form data for id without adopting it as the
// active assessment. Read-only consumers (dashboards, roadmap views) use
// this path.
func (m *Manager) Peek(ctx context.Context, id string) (FormData, error) {
	form, err := m.store.LoadPayload(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return form, nil
}

// Get returns the lifecycle record for id.
func (m *Manager) Get(ctx context.Context, id string) (Assessment, error) {
	return m.store.Get(ctx, id)
}

// SaveFormData persists the full form and recomputed stats under id. Storage
// failures are logged and reported as false; in-memory state stays
// authoritative and the next autosave cycle retries.
func (m *Manager) SaveFormData(ctx context.Context, id string, form FormData) bool {
	stats := ComputeStats(m.cat, form)
	if err := m.store.SavePayload(ctx, id, form, stats, m.clock()); err != nil {
		log.Printf("assessment: save failed for %s: %v", id, err)
		m.notify.Alert("Save Error", "Failed to save assessment progress. Please try again.")
		return false
	}
	return true
}

// SaveResponse merges a single answer into the current durable payload and
// re-runs the full-snapshot save path, preserving every other key already
// present.
func (m *Manager) SaveResponse(ctx context.Context, id, sectionID, questionID string, a Answer) bool {
	form, err := m.store.LoadPayload(ctx, id)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Printf("assessment: load before merge failed for %s: %v", id, err)
			return false
		}
		form = FormData{}
	}
	form.Set(sectionID, questionID, a)
	return m.SaveFormData(ctx, id, form)
}

// Complete performs a final full save and then transitions the record to
// completed. Completion is atomic relative to the save: when the save fails
// the status is left unchanged and false is returned.
func (m *Manager) Complete(ctx context.Context, id string, form FormData) bool {
	if !m.SaveFormData(ctx, id, form) {
		m.notify.Alert("Completion Error", "Failed to complete assessment. Please try again.")
		return false
	}
	a, err := m.store.SetStatus(ctx, id, StatusCompleted, m.clock())
	if err != nil {
		log.Printf("assessment: complete failed for %s: %v", id, err)
		m.notify.Alert("Completion Error", "Failed to complete assessment. Please try again.")
		return false
	}
	if err := m.events.Append(ctx, audit.TypeAssessmentCompleted, id, a); err != nil {
		log.Printf("assessment: event append failed: %v", err)
	}
	stats := ComputeStats(m.cat, form)
	m.notify.Notify("Assessment Completed!",
		fmt.Sprintf("Your AI readiness assessment has been saved successfully. %d/%d questions answered.",
			stats.AnsweredQuestions, stats.TotalQuestions))
	return true
}

// Abandon transitions the record to abandoned without a final save.
func (m *Manager) Abandon(ctx context.Context, id string) bool {
	a, err := m.store.SetStatus(ctx, id, StatusAbandoned, m.clock())
	if err != nil {
		log.Printf("assessment: abandon failed for %s: %v", id, err)
		return false
	}
	if err := m.events.Append(ctx, audit.TypeAssessmentAbandoned, id, a); err != nil {
		log.Printf("assessment: event append failed: %v", err)
	}
	return true
}

// List enumerates known records, newest submission first. Malformed records
// are skipped by the store rather than failing the listing.
func (m *Manager) List(ctx context.Context) ([]Summary, error) {
	return m.store.List(ctx, ListOpts{UserID: m.userID})
}
