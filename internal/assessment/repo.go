package assessment

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when an assessment id is unknown to the store.
var ErrNotFound = errors.New("assessment not found")

// ErrTerminal is returned when a status change targets a record already in a
// terminal state (completed or abandoned).
var ErrTerminal = errors.New("assessment already finalized")

type ListOpts struct {
	UserID string
	Status string
	Limit  int
	Offset int
}

// Store is the durable record store: assessment metadata plus the mirrored
// FormData payload, keyed by assessment id. Every payload write carries the
// full FormData, never a delta, so interleaved writes stay safe by
// construction (last writer wins at snapshot granularity).
type Store interface {
	Create(ctx context.Context, a Assessment) error
	Get(ctx context.Context, id string) (Assessment, error)

	// SavePayload upserts the full form plus recomputed stats under id and
	// refreshes the metadata counters and updated_at.
	SavePayload(ctx context.Context, id string, form FormData, stats Stats, now time.Time) error
	// LoadPayload returns the mirrored form for id, or ErrNotFound.
	LoadPayload(ctx context.Context, id string) (FormData, error)

	// SetStatus transitions a record out of in_progress. Terminal states are
	// final: transitioning an already-finalized record returns ErrTerminal.
	SetStatus(ctx context.Context, id, status string, at time.Time) (Assessment, error)

	// List enumerates known records sorted by submission date descending,
	// skipping malformed rows rather than failing the whole listing.
	List(ctx context.Context, opts ListOpts) ([]Summary, error)
}
