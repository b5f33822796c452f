package assessment

import (
	"context"
	"sort"
	"sync"
	"time"
)

// memoryStore keeps records and payloads in maps. It backs offline mode and
// tests; the sql store is the production backend.
type memoryStore struct {
	mu       sync.RWMutex
	records  map[string]Assessment
	payloads map[string]FormData
}

func NewInMemoryStore() Store {
	return &memoryStore{
		records:  map[string]Assessment{},
		payloads: map[string]FormData{},
	}
}

func (m *memoryStore) Create(ctx context.Context, a Assessment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[a.ID] = a
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (Assessment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.records[id]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) SavePayload(ctx context.Context, id string, form FormData, stats Stats, now time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	m.payloads[id] = form.Clone()
	a.AnsweredQuestions = stats.AnsweredQuestions
	a.CompletionPercentage = stats.CompletionPercentage
	a.UpdatedAt = now
	m.records[id] = a
	return nil
}

func (m *memoryStore) LoadPayload(ctx context.Context, id string) (FormData, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	form, ok := m.payloads[id]
	if !ok {
		return nil, ErrNotFound
	}
	return form.Clone(), nil
}

func (m *memoryStore) SetStatus(ctx context.Context, id, status string, at time.Time) (Assessment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.records[id]
	if !ok {
		return Assessment{}, ErrNotFound
	}
	if a.Terminal() {
		return Assessment{}, ErrTerminal
	}
	a.Status = status
	a.UpdatedAt = at
	if status == StatusCompleted {
		t := at
		a.CompletedAt = &t
	}
	m.records[id] = a
	return a, nil
}

func (m *memoryStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.records))
	for _, a := range m.records {
		if opts.UserID != "" && a.UserID != opts.UserID {
			continue
		}
		if opts.Status != "" && a.Status != opts.Status {
			continue
		}
		out = append(out, summarize(a))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].SubmissionDate.After(out[j].SubmissionDate)
	})
	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []Summary{}, nil
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func summarize(a Assessment) Summary {
	sub := a.StartedAt
	if sub.IsZero() {
		sub = a.UpdatedAt
	}
	return Summary{
		ID:                   a.ID,
		UserID:               a.UserID,
		SubmissionDate:       sub,
		CompletionStatus:     a.Status,
		CompletionPercentage: a.CompletionPercentage,
	}
}
