package services

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/logger"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// SessionStore persists questionnaire state per session id. Get returns the
// zero state for unknown ids.
type SessionStore interface {
	Get(ctx context.Context, sessionID string) (models.SessionState, error)
	Put(ctx context.Context, sessionID string, state models.SessionState) error
}

// PositionCatalog resolves configured job positions.
type PositionCatalog interface {
	Position(id string) (models.Position, bool)
}

// SubmissionObserver receives the outcome of every submission attempt.
type SubmissionObserver interface {
	ObserveSubmission(outcome string, fitScore int)
}

type nopObserver struct{}

func (nopObserver) ObserveSubmission(string, int) {}

// ErrSessionRequired is returned when a request carries no session id.
var ErrSessionRequired = errors.New("session id required")

// SessionServiceOptions configure a SessionService.
type SessionServiceOptions struct {
	DefaultPositionID string
	// RequireAnswerBeforeNext blocks Next while the current question is unanswered.
	RequireAnswerBeforeNext bool
	Observer                SubmissionObserver
	Logger                  *zap.Logger
}

// SessionService applies questionnaire transitions to stored sessions,
// reading and writing the record exactly once per call.
type SessionService struct {
	store           SessionStore
	q               *Questionnaire
	bank            *QuestionBank
	positions       PositionCatalog
	defaultPosition string
	requireAnswer   bool
	observer        SubmissionObserver
	logger          *zap.Logger
}

func NewSessionService(store SessionStore, q *Questionnaire, positions PositionCatalog, opts SessionServiceOptions) *SessionService {
	observer := opts.Observer
	if observer == nil {
		observer = nopObserver{}
	}
	return &SessionService{
		store:           store,
		q:               q,
		bank:            q.bank,
		positions:       positions,
		defaultPosition: opts.DefaultPositionID,
		requireAnswer:   opts.RequireAnswerBeforeNext,
		observer:        observer,
		logger:          logger.WithFields(opts.Logger),
	}
}

func (s *SessionService) load(ctx context.Context, sid string) (models.SessionState, error) {
	if strings.TrimSpace(sid) == "" {
		return models.SessionState{}, ErrSessionRequired
	}
	return s.store.Get(ctx, sid)
}

// update runs fn over the stored state and persists the result when fn succeeds.
func (s *SessionService) update(ctx context.Context, sid string, fn func(models.SessionState) (models.SessionState, error)) (models.SessionState, error) {
	cur, err := s.load(ctx, sid)
	if err != nil {
		return models.SessionState{}, err
	}
	next, err := fn(cur)
	if err != nil {
		return cur, err
	}
	if err := s.store.Put(ctx, sid, next); err != nil {
		return cur, err
	}
	return next, nil
}

// Position resolves id, falling back to the default position.
func (s *SessionService) Position(id string) (models.Position, error) {
	if id == "" {
		id = s.defaultPosition
	}
	p, ok := s.positions.Position(id)
	if !ok {
		return models.Position{}, NewNotFoundError("position " + id + " not found")
	}
	return p, nil
}

func (s *SessionService) Start(ctx context.Context, sid string) (StatusView, error) {
	next, err := s.update(ctx, sid, func(cur models.SessionState) (models.SessionState, error) {
		return s.q.Start(cur), nil
	})
	if err != nil {
		return StatusView{}, err
	}
	s.logger.Info("questionnaire started", logger.SessionField(sid))
	return Status(next), nil
}

func (s *SessionService) Status(ctx context.Context, sid string) (StatusView, error) {
	cur, err := s.load(ctx, sid)
	if err != nil {
		return StatusView{}, err
	}
	return Status(cur), nil
}

// QuestionView is a client-facing item without scoring metadata.
type QuestionView struct {
	ID   int    `json:"id"`
	Text string `json:"text"`
}

// Questions lists the items in the session's presentation order.
func (s *SessionService) Questions(ctx context.Context, sid, locale, fallback string) ([]QuestionView, error) {
	cur, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	order := s.q.Order(cur)
	out := make([]QuestionView, 0, len(order))
	for _, id := range order {
		q, _ := s.bank.Lookup(id)
		out = append(out, QuestionView{ID: q.ID, Text: q.Text(locale, fallback)})
	}
	return out, nil
}

func (s *SessionService) Answer(ctx context.Context, sid string, questionID, value int) (StatusView, error) {
	next, err := s.update(ctx, sid, func(cur models.SessionState) (models.SessionState, error) {
		return s.q.Answer(cur, questionID, value)
	})
	if err != nil {
		return StatusView{}, err
	}
	return Status(next), nil
}

// SaveProgress upserts answers and, when index is set, moves the cursor in
// the same step.
func (s *SessionService) SaveProgress(ctx context.Context, sid string, answers models.Answers, index *int) (StatusView, error) {
	next, err := s.update(ctx, sid, func(cur models.SessionState) (models.SessionState, error) {
		st, err := s.q.ApplyAnswers(cur, answers)
		if err != nil || index == nil {
			return st, err
		}
		return s.q.Seek(st, *index)
	})
	if err != nil {
		return StatusView{}, err
	}
	s.logger.Debug("progress saved",
		logger.SessionField(sid),
		zap.Int("answers", len(next.Answers)),
		zap.Int("index", next.CurrentQuestionIndex),
	)
	return Status(next), nil
}

// SubmitParams select the position and locale of a submission.
type SubmitParams struct {
	PositionID      string
	Locale          string
	AllowIncomplete bool
}

func (s *SessionService) submitOptions(p SubmitParams) (SubmitOptions, error) {
	pos, err := s.Position(p.PositionID)
	if err != nil {
		return SubmitOptions{}, err
	}
	return SubmitOptions{Position: pos, Locale: p.Locale, AllowIncomplete: p.AllowIncomplete}, nil
}

// NavResult reports the state after a navigation step. Result is set when
// the step completed the questionnaire.
type NavResult struct {
	Status  StatusView         `json:"status"`
	Blocked bool               `json:"blocked,omitempty"`
	Result  *models.Assessment `json:"result,omitempty"`
}

// Next advances the cursor. The position is only resolved when the step
// submits, so an unknown position does not block navigation.
func (s *SessionService) Next(ctx context.Context, sid string, p SubmitParams) (NavResult, error) {
	blocked := false
	next, err := s.update(ctx, sid, func(cur models.SessionState) (models.SessionState, error) {
		if s.requireAnswer && cur.Status() == models.StatusInProgress && !s.q.CurrentAnswered(cur) {
			blocked = true
			return cur, nil
		}
		var opts SubmitOptions
		if cur.Status() == models.StatusInProgress && cur.CurrentQuestionIndex >= s.q.lastIndex() {
			var err error
			if opts, err = s.submitOptions(p); err != nil {
				return cur, err
			}
		}
		return s.q.Next(cur, opts)
	})
	if err != nil {
		s.recordFailure(err)
		return NavResult{}, err
	}
	res := NavResult{Status: Status(next), Blocked: blocked}
	if next.Completed && next.Result != nil {
		res.Result = next.Result
		s.observer.ObserveSubmission("completed", next.Result.Fit.Value)
	}
	return res, nil
}

func (s *SessionService) Back(ctx context.Context, sid string) (StatusView, error) {
	next, err := s.update(ctx, sid, s.q.Back)
	if err != nil {
		return StatusView{}, err
	}
	return Status(next), nil
}

// Submit merges answers into the session and completes it.
func (s *SessionService) Submit(ctx context.Context, sid string, answers models.Answers, p SubmitParams) (*models.Assessment, error) {
	opts, err := s.submitOptions(p)
	if err != nil {
		return nil, err
	}
	next, err := s.update(ctx, sid, func(cur models.SessionState) (models.SessionState, error) {
		st, err := s.q.ApplyAnswers(cur, answers)
		if err != nil {
			return cur, err
		}
		return s.q.Submit(st, opts)
	})
	if err != nil {
		s.recordFailure(err)
		return nil, err
	}
	s.observer.ObserveSubmission("completed", next.Result.Fit.Value)
	s.logger.Info("questionnaire submitted",
		logger.SessionField(sid),
		zap.String(logger.FieldPosition, next.Result.PositionID),
		zap.Int("fit_score", next.Result.Fit.Value),
		zap.Ints("imputed", next.Result.Imputed),
	)
	return next.Result, nil
}

// Result returns the assessment of a completed session.
func (s *SessionService) Result(ctx context.Context, sid string) (*models.Assessment, error) {
	cur, err := s.load(ctx, sid)
	if err != nil {
		return nil, err
	}
	if !cur.Completed || cur.Result == nil {
		return nil, NewNotFoundError("no completed questionnaire")
	}
	return cur.Result, nil
}

func (s *SessionService) recordFailure(err error) {
	switch {
	case errors.Is(err, ErrIncompleteAnswers):
		s.observer.ObserveSubmission("incomplete", 0)
	case errors.Is(err, ErrMissingProfile):
		s.observer.ObserveSubmission("missing_profile", 0)
	case errors.Is(err, ErrInvalidAnswer), errors.Is(err, ErrUnknownQuestion):
		s.observer.ObserveSubmission("invalid", 0)
	}
}
