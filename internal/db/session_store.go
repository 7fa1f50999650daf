package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/api"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// SessionStore keeps questionnaire sessions in a SQL table. Queries use $N
// placeholders, which both pgx and modernc sqlite accept.
type SessionStore struct {
	db *sql.DB
}

var _ api.Store = (*SessionStore)(nil)

func NewSessionStore(db *sql.DB) (*SessionStore, error) {
	if db == nil {
		return nil, errors.New("nil db")
	}
	return &SessionStore{db: db}, nil
}

func (s *SessionStore) GetSession(ctx context.Context, id string) (*api.SessionRecord, error) {
	var (
		stateJSON            string
		createdMs, updatedMs int64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT state_json, created_at, updated_at FROM questionnaire_sessions WHERE id=$1`, id,
	).Scan(&stateJSON, &createdMs, &updatedMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select session: %w", err)
	}
	var state models.SessionState
	if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", id, err)
	}
	return &api.SessionRecord{
		ID:        id,
		State:     state,
		CreatedAt: time.UnixMilli(createdMs).UTC(),
		UpdatedAt: time.UnixMilli(updatedMs).UTC(),
	}, nil
}

func (s *SessionStore) PutSession(ctx context.Context, rec *api.SessionRecord) error {
	buf, err := json.Marshal(rec.State)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO questionnaire_sessions (id, state_json, created_at, updated_at)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (id) DO UPDATE SET state_json=EXCLUDED.state_json, updated_at=EXCLUDED.updated_at`,
		rec.ID, string(buf), rec.CreatedAt.UnixMilli(), rec.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteSession(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questionnaire_sessions WHERE id=$1`, id)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *SessionStore) ListSessions(ctx context.Context) ([]*api.SessionRecord, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, state_json, created_at, updated_at FROM questionnaire_sessions ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	var out []*api.SessionRecord
	for rows.Next() {
		var (
			id, stateJSON        string
			createdMs, updatedMs int64
		)
		if err := rows.Scan(&id, &stateJSON, &createdMs, &updatedMs); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		var state models.SessionState
		if err := json.Unmarshal([]byte(stateJSON), &state); err != nil {
			return nil, fmt.Errorf("decode session %s: %w", id, err)
		}
		out = append(out, &api.SessionRecord{
			ID:        id,
			State:     state,
			CreatedAt: time.UnixMilli(createdMs).UTC(),
			UpdatedAt: time.UnixMilli(updatedMs).UTC(),
		})
	}
	return out, rows.Err()
}

func (s *SessionStore) CleanupBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM questionnaire_sessions WHERE updated_at < $1`, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("cleanup sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (s *SessionStore) Close() error { return s.db.Close() }
