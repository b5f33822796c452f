package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"
)

// Lifecycle event types appended by the assessment manager.
const (
	TypeAssessmentCreated   = "assessment.created"
	TypeAssessmentCompleted = "assessment.completed"
	TypeAssessmentAbandoned = "assessment.abandoned"
)

type Event struct {
	Offset    int64
	SiteID    string
	Type      string
	Key       string // natural key: assessment id
	DataJSON  string
	CreatedAt int64
}

// Recorder appends lifecycle events. Recording is best-effort; callers treat
// failures as non-fatal.
type Recorder interface {
	Append(ctx context.Context, typ, key string, data any) error
}

// EventRepo records events in the event_log table.
type EventRepo struct {
	db     *sql.DB
	siteID string
}

func NewEventRepo(db *sql.DB) *EventRepo { return &EventRepo{db: db, siteID: "local"} }

func (r *EventRepo) Append(ctx context.Context, typ, key string, data any) error {
	buf, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx,
		`INSERT INTO event_log (site_id, typ, key, data, created_at)
		 VALUES ($1,$2,$3,$4,$5)`,
		r.siteID, typ, key, string(buf), time.Now().Unix())
	return err
}

// Nop discards events. Used when no database is wired.
type Nop struct{}

func (Nop) Append(ctx context.Context, typ, key string, data any) error { return nil }
