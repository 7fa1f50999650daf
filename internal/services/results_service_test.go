package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

type stubAnalyzer struct {
	match *models.CVMatch
	err   error
	calls int
}

func (s *stubAnalyzer) AnalyzeCV(_ context.Context, _ string, _ models.Position) (*models.CVMatch, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	m := *s.match
	return &m, nil
}

func newResultsFixture(t *testing.T, analyzer CVAnalyzer) (*ResultsService, *SessionService, *stubSessionStore) {
	t.Helper()
	sessions, store, _ := newSessionFixture(t, SessionServiceOptions{})
	weights := models.ScoringWeights{CV: 0.7, Personality: 0.3}
	return NewResultsService(store, sessions, analyzer, weights, nil), sessions, store
}

func TestAnalyzeCVStoresMatch(t *testing.T) {
	ctx := context.Background()
	an := &stubAnalyzer{match: &models.CVMatch{Score: 80, Summary: "solid"}}
	rs, _, store := newResultsFixture(t, an)

	m, err := rs.AnalyzeCV(ctx, "s1", "  ten years of Go  ", "")
	require.NoError(t, err)
	assert.Equal(t, "dev", m.PositionID)
	assert.False(t, m.AnalyzedAt.IsZero())
	require.NotNil(t, store.states["s1"].CVMatch)
	assert.Equal(t, 80.0, store.states["s1"].CVMatch.Score)
}

func TestAnalyzeCVErrors(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name     string
		analyzer CVAnalyzer
		text     string
		position string
		want     ErrorCode
	}{
		{"empty text", &stubAnalyzer{match: &models.CVMatch{}}, "   ", "", ErrorInvalid},
		{"too long", &stubAnalyzer{match: &models.CVMatch{}}, strings.Repeat("x", maxCVTextLength+1), "", ErrorInvalid},
		{"no analyzer", nil, "cv", "", ErrorUnavailable},
		{"disabled", &stubAnalyzer{err: ErrAnalyzerDisabled}, "cv", "", ErrorUnavailable},
		{"upstream failure", &stubAnalyzer{err: errors.New("quota")}, "cv", "", ErrorBadGateway},
		{"unknown position", &stubAnalyzer{match: &models.CVMatch{}}, "cv", "ghost", ErrorNotFound},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rs, _, store := newResultsFixture(t, c.analyzer)
			_, err := rs.AnalyzeCV(ctx, "s1", c.text, c.position)
			require.Error(t, err)
			assert.Equal(t, c.want, CodeOf(err))
			assert.Zero(t, store.puts)
		})
	}
}

func TestResultsCombinesWhenBothPresent(t *testing.T) {
	ctx := context.Background()
	an := &stubAnalyzer{match: &models.CVMatch{Score: 80}}
	rs, sessions, _ := newResultsFixture(t, an)

	view, err := rs.Results(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, view.HasResults)

	_, err = rs.AnalyzeCV(ctx, "s1", "cv", "")
	require.NoError(t, err)
	view, err = rs.Results(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, view.HasResults)
	assert.Nil(t, view.Combined)

	// the résumé match survives a questionnaire restart
	_, err = sessions.Start(ctx, "s1")
	require.NoError(t, err)
	res, err := sessions.Submit(ctx, "s1", uniformAnswers(3), SubmitParams{Locale: "en"})
	require.NoError(t, err)

	view, err = rs.Results(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, view.Combined)
	want := CombinedScore(80, res.Fit.Value, models.ScoringWeights{CV: 0.7, Personality: 0.3})
	assert.Equal(t, want, *view.Combined)
}

func TestClearCVKeepsQuestionnaire(t *testing.T) {
	ctx := context.Background()
	an := &stubAnalyzer{match: &models.CVMatch{Score: 55}}
	rs, sessions, store := newResultsFixture(t, an)

	_, err := sessions.Start(ctx, "s1")
	require.NoError(t, err)
	_, err = sessions.Answer(ctx, "s1", 1, 4)
	require.NoError(t, err)
	_, err = rs.AnalyzeCV(ctx, "s1", "cv", "")
	require.NoError(t, err)

	require.NoError(t, rs.ClearCV(ctx, "s1"))
	assert.Nil(t, store.states["s1"].CVMatch)
	assert.Equal(t, 4, store.states["s1"].Answers[1])

	puts := store.puts
	require.NoError(t, rs.ClearCV(ctx, "s1"))
	assert.Equal(t, puts, store.puts)
}
