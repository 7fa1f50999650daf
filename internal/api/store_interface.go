package api

import (
	"context"
	"time"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// SessionRecord is one persisted questionnaire session.
type SessionRecord struct {
	ID        string
	State     models.SessionState
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Store persists session records. GetSession returns nil, nil for unknown
// ids. PutSession upserts and keeps the CreatedAt of an existing record.
type Store interface {
	GetSession(ctx context.Context, id string) (*SessionRecord, error)
	PutSession(ctx context.Context, rec *SessionRecord) error
	DeleteSession(ctx context.Context, id string) (bool, error)
	// ListSessions returns all records ordered by id.
	ListSessions(ctx context.Context) ([]*SessionRecord, error)
	// CleanupBefore deletes records last updated before cutoff.
	CleanupBefore(ctx context.Context, cutoff time.Time) (int, error)
	Close() error
}

var _ Store = (*memoryStore)(nil)
