package assessment

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log"
	"strconv"
	"time"
)

// SQLStore persists records and payloads through database/sql. It works on
// both the sqlite and postgres schemas from internal/db.
type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

func (s *SQLStore) Create(ctx context.Context, a Assessment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO assessments (id,user_id,status,started_at,updated_at,total_questions,answered_questions,completion_percentage)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		a.ID, a.UserID, a.Status, a.StartedAt.Unix(), a.UpdatedAt.Unix(),
		a.TotalQuestions, a.AnsweredQuestions, a.CompletionPercentage)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Assessment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id,user_id,status,started_at,updated_at,completed_at,total_questions,answered_questions,completion_percentage
		 FROM assessments WHERE id=$1`, id)
	return scanAssessment(row)
}

func (s *SQLStore) SavePayload(ctx context.Context, id string, form FormData, stats Stats, now time.Time) error {
	buf, err := json.Marshal(form)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET answered_questions=$1, completion_percentage=$2, updated_at=$3 WHERE id=$4`,
		stats.AnsweredQuestions, stats.CompletionPercentage, now.Unix(), id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO assessment_data (assessment_id,form_data_json,total_questions,answered_questions,completion_percentage,version,updated_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (assessment_id) DO UPDATE SET
		   form_data_json=EXCLUDED.form_data_json,
		   total_questions=EXCLUDED.total_questions,
		   answered_questions=EXCLUDED.answered_questions,
		   completion_percentage=EXCLUDED.completion_percentage,
		   version=EXCLUDED.version,
		   updated_at=EXCLUDED.updated_at`,
		id, string(buf), stats.TotalQuestions, stats.AnsweredQuestions,
		stats.CompletionPercentage, SnapshotVersion, now.Unix())
	return err
}

func (s *SQLStore) LoadPayload(ctx context.Context, id string) (FormData, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT form_data_json, version FROM assessment_data WHERE assessment_id=$1`, id)
	var raw, version string
	if err := row.Scan(&raw, &version); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// An incompatible schema version is treated as absent, not as an error.
	if version != SnapshotVersion {
		return nil, ErrNotFound
	}
	var form FormData
	if err := json.Unmarshal([]byte(raw), &form); err != nil {
		return nil, ErrNotFound
	}
	if form == nil {
		form = FormData{}
	}
	return form, nil
}

func (s *SQLStore) SetStatus(ctx context.Context, id, status string, at time.Time) (Assessment, error) {
	var completedAt interface{}
	if status == StatusCompleted {
		completedAt = at.Unix()
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE assessments SET status=$1, completed_at=$2, updated_at=$3 WHERE id=$4 AND status=$5`,
		status, completedAt, at.Unix(), id, StatusInProgress)
	if err != nil {
		return Assessment{}, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either the id is unknown or the record is already terminal.
		if _, gerr := s.Get(ctx, id); gerr != nil {
			return Assessment{}, gerr
		}
		return Assessment{}, ErrTerminal
	}
	return s.Get(ctx, id)
}

func (s *SQLStore) List(ctx context.Context, opts ListOpts) ([]Summary, error) {
	q := `SELECT id,user_id,status,started_at,updated_at,completion_percentage,total_score
	      FROM assessments`
	args := []interface{}{}
	where := ""
	if opts.UserID != "" {
		args = append(args, opts.UserID)
		where = ` WHERE user_id=$1`
	}
	if opts.Status != "" {
		args = append(args, opts.Status)
		if where == "" {
			where = ` WHERE status=$1`
		} else {
			where += ` AND status=$2`
		}
	}
	q += where + ` ORDER BY started_at DESC`
	if opts.Limit > 0 {
		q += ` LIMIT ` + strconv.Itoa(opts.Limit)
		if opts.Offset > 0 {
			q += ` OFFSET ` + strconv.Itoa(opts.Offset)
		}
	}

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Summary{}
	for rows.Next() {
		var (
			sum        Summary
			started    sql.NullInt64
			updated    sql.NullInt64
			totalScore sql.NullFloat64
		)
		if err := rows.Scan(&sum.ID, &sum.UserID, &sum.CompletionStatus, &started, &updated, &sum.CompletionPercentage, &totalScore); err != nil {
			// A malformed row should not fail the whole listing.
			log.Printf("assessment: skipping malformed record: %v", err)
			continue
		}
		if sum.ID == "" {
			log.Printf("assessment: skipping record with empty id")
			continue
		}
		switch {
		case started.Valid && started.Int64 > 0:
			sum.SubmissionDate = time.Unix(started.Int64, 0).UTC()
		case updated.Valid:
			sum.SubmissionDate = time.Unix(updated.Int64, 0).UTC()
		}
		if totalScore.Valid {
			v := totalScore.Float64
			sum.TotalScore = &v
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func scanAssessment(row *sql.Row) (Assessment, error) {
	var (
		a           Assessment
		startedAt   int64
		updatedAt   int64
		completedAt sql.NullInt64
	)
	err := row.Scan(&a.ID, &a.UserID, &a.Status, &startedAt, &updatedAt, &completedAt,
		&a.TotalQuestions, &a.AnsweredQuestions, &a.CompletionPercentage)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Assessment{}, ErrNotFound
		}
		return Assessment{}, err
	}
	a.StartedAt = time.Unix(startedAt, 0).UTC()
	a.UpdatedAt = time.Unix(updatedAt, 0).UTC()
	if completedAt.Valid {
		t := time.Unix(completedAt.Int64, 0).UTC()
		a.CompletedAt = &t
	}
	return a, nil
}
