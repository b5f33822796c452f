package assessment

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"
)

const (
	// DefaultCacheKey is where the progress snapshot lives in the local cache.
	DefaultCacheKey = "assessment_progress"
	// DefaultDebounce is the quiet period before a persistence cycle runs.
	DefaultDebounce = time.Second
	// DefaultRecoveryWindow is the maximum snapshot age eligible for
	// automatic restoration on startup.
	DefaultRecoveryWindow = 7 * 24 * time.Hour
)

// ProgressCache is the fast local snapshot cache. Get reports absence via
// its second return instead of an error.
type ProgressCache interface {
	Put(key string, data []byte) error
	Get(key string) ([]byte, bool, error)
	Delete(key string) error
}

// Saver is the debounced persistence gateway. Every Schedule call (re)arms a
// timer; rapid successive edits coalesce into one cycle per quiescent
// period. A cycle writes the versioned snapshot to the local cache
// unconditionally and, when an assessment id is active, also upserts the
// full form into the durable store. Write failures are logged and swallowed;
// the in-memory form stays authoritative and the next cycle retries.
type Saver struct {
	cache  ProgressCache
	mgr    *Manager
	key    string
	delay  time.Duration
	window time.Duration
	clock  func() time.Time

	mu      sync.Mutex
	timer   *time.Timer
	pending FormData
	saving  bool

	// persistMu serializes persistence cycles so two writes for the same
	// assessment id cannot interleave.
	persistMu sync.Mutex
}

// SaverOpt customizes a Saver.
type SaverOpt func(*Saver)

func WithDebounce(d time.Duration) SaverOpt       { return func(s *Saver) { s.delay = d } }
func WithRecoveryWindow(d time.Duration) SaverOpt { return func(s *Saver) { s.window = d } }
func WithCacheKey(key string) SaverOpt            { return func(s *Saver) { s.key = key } }
func WithSaverClock(now func() time.Time) SaverOpt {
	return func(s *Saver) { s.clock = now }
}

// NewSaver builds a gateway over the cache and, optionally, the lifecycle
// manager. mgr may be nil for cache-only operation.
func NewSaver(cache ProgressCache, mgr *Manager, opts ...SaverOpt) *Saver {
	s := &Saver{
		cache:  cache,
		mgr:    mgr,
		key:    DefaultCacheKey,
		delay:  DefaultDebounce,
		window: DefaultRecoveryWindow,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Schedule records the latest full form and (re)arms the debounce timer.
// The caller hands over ownership of form; it must not mutate it afterwards.
func (s *Saver) Schedule(form FormData) {
	s.mu.Lock()
	s.pending = form
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.fire)
	s.mu.Unlock()
}

func (s *Saver) fire() {
	s.mu.Lock()
	form := s.pending
	s.pending = nil
	s.timer = nil
	s.mu.Unlock()
	if form == nil {
		return
	}
	s.persist(form)
}

// Flush runs any pending cycle immediately. Deterministic hook for tests and
// for shutdown.
func (s *Saver) Flush() {
	s.mu.Lock()
	form := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if form == nil {
		return
	}
	s.persist(form)
}

// Cancel drops the pending cycle without persisting. A stale write cannot
// fire after Cancel returns and the pending data is observed cleared.
func (s *Saver) Cancel() {
	s.mu.Lock()
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
}

// Discard removes the cached snapshot. The durable record, if any, is kept.
// A cycle that already dequeued its form is past Cancel's reach, so Discard
// drains it first; otherwise its late Put would recreate the snapshot after
// the key is deleted.
func (s *Saver) Discard() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if err := s.cache.Delete(s.key); err != nil {
		log.Printf("assessment: discard snapshot: %v", err)
	}
}

// Saving reports whether a cycle is pending or in flight.
func (s *Saver) Saving() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil || s.saving
}

func (s *Saver) setSaving(v bool) {
	s.mu.Lock()
	s.saving = v
	s.mu.Unlock()
}

func (s *Saver) persist(form FormData) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	s.setSaving(true)
	defer s.setSaving(false)

	var id string
	if s.mgr != nil {
		id = s.mgr.ActiveID()
	}
	snap := Snapshot{
		Data:         form,
		Timestamp:    s.clock().UnixMilli(),
		Version:      SnapshotVersion,
		AssessmentID: id,
	}
	buf, err := json.Marshal(snap)
	if err != nil {
		log.Printf("assessment: marshal snapshot: %v", err)
		return
	}
	if err := s.cache.Put(s.key, buf); err != nil {
		log.Printf("assessment: cache snapshot: %v", err)
	}

	if s.mgr != nil && id != "" {
		// Best effort; SaveFormData logs its own failures.
		s.mgr.SaveFormData(context.Background(), id, form)
	}
}

// Restore reads the cached snapshot once, on engine start. It returns the
// recovered form and the assessment id the snapshot was linked to. Snapshots
// with a wrong version, or older than the recovery window, or unparseable,
// are discarded silently.
func (s *Saver) Restore() (FormData, string, bool) {
	buf, ok, err := s.cache.Get(s.key)
	if err != nil {
		log.Printf("assessment: read snapshot: %v", err)
		return nil, "", false
	}
	if !ok {
		return nil, "", false
	}
	var snap Snapshot
	if err := json.Unmarshal(buf, &snap); err != nil {
		log.Printf("assessment: malformed snapshot discarded: %v", err)
		return nil, "", false
	}
	if snap.Version != SnapshotVersion {
		return nil, "", false
	}
	if s.clock().UnixMilli()-snap.Timestamp >= s.window.Milliseconds() {
		return nil, "", false
	}
	if snap.Data == nil {
		snap.Data = FormData{}
	}
	return snap.Data, snap.AssessmentID, true
}
