package api

import (
	"context"
	"sort"
	"sync"
	"time"
)

type memoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*SessionRecord
}

// NewMemoryStore keeps sessions in process memory; they are lost on restart.
func NewMemoryStore() Store {
	return newMemoryStore()
}

func newMemoryStore() *memoryStore {
	return &memoryStore{sessions: map[string]*SessionRecord{}}
}

func copyRecord(rec *SessionRecord) *SessionRecord {
	cp := *rec
	cp.State.Answers = rec.State.Answers.Clone()
	if rec.State.QuestionOrder != nil {
		cp.State.QuestionOrder = append([]int(nil), rec.State.QuestionOrder...)
	}
	return &cp
}

func (s *memoryStore) GetSession(_ context.Context, id string) (*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.sessions[id]
	if !ok {
		return nil, nil
	}
	return copyRecord(rec), nil
}

func (s *memoryStore) PutSession(_ context.Context, rec *SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := copyRecord(rec)
	if prev, ok := s.sessions[rec.ID]; ok && !prev.CreatedAt.IsZero() {
		cp.CreatedAt = prev.CreatedAt
	}
	s.sessions[rec.ID] = cp
	return nil
}

func (s *memoryStore) DeleteSession(_ context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return false, nil
	}
	delete(s.sessions, id)
	return true, nil
}

func (s *memoryStore) ListSessions(context.Context) ([]*SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*SessionRecord, 0, len(s.sessions))
	for _, rec := range s.sessions {
		out = append(out, copyRecord(rec))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *memoryStore) CleanupBefore(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for id, rec := range s.sessions {
		if rec.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) Close() error { return nil }
