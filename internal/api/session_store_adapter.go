package api

import (
	"context"
	"fmt"
	"time"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/services"
)

// sessionStoreAdapter exposes a Store as services.SessionStore. Records
// idle for longer than ttl read as empty, before cleanup removes them.
type sessionStoreAdapter struct {
	store Store
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionStore(store Store, ttl time.Duration) services.SessionStore {
	return &sessionStoreAdapter{store: store, ttl: ttl, now: func() time.Time { return time.Now().UTC() }}
}

func (a *sessionStoreAdapter) Get(ctx context.Context, id string) (models.SessionState, error) {
	rec, err := a.store.GetSession(ctx, id)
	if err != nil {
		return models.SessionState{}, fmt.Errorf("load session: %w", err)
	}
	if rec == nil || (a.ttl > 0 && rec.UpdatedAt.Before(a.now().Add(-a.ttl))) {
		return models.SessionState{}, nil
	}
	return rec.State, nil
}

func (a *sessionStoreAdapter) Put(ctx context.Context, id string, state models.SessionState) error {
	now := a.now()
	if err := a.store.PutSession(ctx, &SessionRecord{ID: id, State: state, CreatedAt: now, UpdatedAt: now}); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

type completedSessions struct {
	store Store
}

// NewCompletedSessions lists the finished questionnaires held in store,
// regardless of session TTL.
func NewCompletedSessions(store Store) services.CompletedSessionSource {
	return completedSessions{store: store}
}

func (c completedSessions) ListCompleted(ctx context.Context) ([]models.SessionState, error) {
	recs, err := c.store.ListSessions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]models.SessionState, 0, len(recs))
	for _, rec := range recs {
		if rec.State.Completed && rec.State.Result != nil {
			out = append(out, rec.State)
		}
	}
	return out, nil
}
