package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/logger"
	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// CVAnalyzer scores a résumé against a position. Implementations call a
// remote language model; they are an external collaborator of this service.
type CVAnalyzer interface {
	AnalyzeCV(ctx context.Context, cvText string, position models.Position) (*models.CVMatch, error)
}

// ErrAnalyzerDisabled is returned by analyzers that are not configured.
var ErrAnalyzerDisabled = errors.New("résumé analysis is disabled")

const maxCVTextLength = 100_000

// ResultsService stores résumé matches and reports the combined score.
type ResultsService struct {
	store    SessionStore
	sessions *SessionService
	analyzer CVAnalyzer
	weights  models.ScoringWeights
	now      func() time.Time
	logger   *zap.Logger
}

func NewResultsService(store SessionStore, sessions *SessionService, analyzer CVAnalyzer, weights models.ScoringWeights, log *zap.Logger) *ResultsService {
	return &ResultsService{
		store:    store,
		sessions: sessions,
		analyzer: analyzer,
		weights:  weights,
		now:      func() time.Time { return time.Now().UTC() },
		logger:   logger.WithFields(log),
	}
}

// AnalyzeCV runs the analyzer and keeps the match in the session.
func (r *ResultsService) AnalyzeCV(ctx context.Context, sid, cvText, positionID string) (*models.CVMatch, error) {
	if strings.TrimSpace(sid) == "" {
		return nil, ErrSessionRequired
	}
	cvText = strings.TrimSpace(cvText)
	if cvText == "" {
		return nil, NewInvalidError("cv_text required")
	}
	if len(cvText) > maxCVTextLength {
		return nil, NewInvalidError("cv_text too long")
	}
	if r.analyzer == nil {
		return nil, NewUnavailableError(ErrAnalyzerDisabled.Error())
	}
	pos, err := r.sessions.Position(positionID)
	if err != nil {
		return nil, err
	}
	match, err := r.analyzer.AnalyzeCV(ctx, cvText, pos)
	if err != nil {
		if errors.Is(err, ErrAnalyzerDisabled) {
			return nil, NewUnavailableError(err.Error())
		}
		r.logger.Warn("résumé analysis failed", zap.String(logger.FieldPosition, pos.ID), zap.Error(err))
		return nil, NewBadGatewayError("résumé analysis failed")
	}
	match.PositionID = pos.ID
	if match.AnalyzedAt.IsZero() {
		match.AnalyzedAt = r.now()
	}

	cur, err := r.store.Get(ctx, sid)
	if err != nil {
		return nil, err
	}
	cur.CVMatch = match
	cur.UpdatedAt = r.now()
	if err := r.store.Put(ctx, sid, cur); err != nil {
		return nil, err
	}
	r.logger.Info("résumé analyzed", logger.SessionField(sid), zap.String(logger.FieldPosition, pos.ID), zap.Float64("score", match.Score))
	return match, nil
}

// ResultsView bundles what is known about a session.
type ResultsView struct {
	HasResults  bool               `json:"has_results"`
	CVMatch     *models.CVMatch    `json:"cv_match,omitempty"`
	Personality *models.Assessment `json:"personality,omitempty"`
	Combined    *CombinedResult    `json:"combined_score,omitempty"`
}

// Results combines the résumé match with the personality fit when both are positive.
func (r *ResultsService) Results(ctx context.Context, sid string) (ResultsView, error) {
	if strings.TrimSpace(sid) == "" {
		return ResultsView{}, ErrSessionRequired
	}
	cur, err := r.store.Get(ctx, sid)
	if err != nil {
		return ResultsView{}, err
	}
	view := ResultsView{CVMatch: cur.CVMatch}
	if cur.Completed && cur.Result != nil {
		view.Personality = cur.Result
	}
	view.HasResults = view.CVMatch != nil || view.Personality != nil
	if view.CVMatch != nil && view.Personality != nil && view.CVMatch.Score > 0 && view.Personality.Fit.Value > 0 {
		c := CombinedScore(view.CVMatch.Score, view.Personality.Fit.Value, r.weights)
		view.Combined = &c
	}
	return view, nil
}

// ClearCV drops the stored résumé match; questionnaire progress is kept.
func (r *ResultsService) ClearCV(ctx context.Context, sid string) error {
	if strings.TrimSpace(sid) == "" {
		return ErrSessionRequired
	}
	cur, err := r.store.Get(ctx, sid)
	if err != nil {
		return err
	}
	if cur.CVMatch == nil {
		return nil
	}
	cur.CVMatch = nil
	cur.UpdatedAt = r.now()
	return r.store.Put(ctx, sid, cur)
}
