package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

func newSessionFixture(t *testing.T, opts SessionServiceOptions) (*SessionService, *stubSessionStore, *recordingObserver) {
	t.Helper()
	f := newFixture(t)
	store := newStubSessionStore()
	obs := &recordingObserver{}
	if opts.DefaultPositionID == "" {
		opts.DefaultPositionID = "dev"
	}
	opts.Observer = obs
	opts.Logger = zaptest.NewLogger(t)
	svc := NewSessionService(store, f.q, stubPositions{"dev": testPosition(), "blank": {ID: "blank"}}, opts)
	return svc, store, obs
}

func TestSessionServiceRequiresSessionID(t *testing.T) {
	svc, _, _ := newSessionFixture(t, SessionServiceOptions{})
	_, err := svc.Start(context.Background(), " ")
	require.ErrorIs(t, err, ErrSessionRequired)
	_, err = svc.Status(context.Background(), "")
	require.ErrorIs(t, err, ErrSessionRequired)
}

func TestSessionServiceFullFlow(t *testing.T) {
	ctx := context.Background()
	svc, store, obs := newSessionFixture(t, SessionServiceOptions{})

	st, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.Started)

	st, err = svc.Start(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, st.Started)
	assert.Equal(t, 0, st.CurrentQuestionIndex)

	partial := uniformAnswers(4)
	delete(partial, 30)
	st, err = svc.SaveProgress(ctx, "s1", partial, ptrInt(29))
	require.NoError(t, err)
	assert.Len(t, st.Answers, 29)
	assert.Equal(t, 29, st.CurrentQuestionIndex)

	_, err = svc.Submit(ctx, "s1", nil, SubmitParams{Locale: "en"})
	var ie *IncompleteAnswersError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, []int{30}, ie.Missing)
	assert.Equal(t, ErrorUnprocessable, CodeOf(err))

	res, err := svc.Submit(ctx, "s1", models.Answers{30: 4}, SubmitParams{Locale: "en"})
	require.NoError(t, err)
	assert.Equal(t, "dev", res.PositionID)
	assert.Empty(t, res.Imputed)

	got, err := svc.Result(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, res.Fit.Value, got.Fit.Value)

	st, err = svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, st.Completed)

	assert.Equal(t, []string{"incomplete", "completed"}, obs.outcomes)
	assert.Equal(t, 3, store.puts)
}

func TestSessionServiceRejectsWritesBeforeStart(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newSessionFixture(t, SessionServiceOptions{})

	_, err := svc.Answer(ctx, "s1", 1, 3)
	require.ErrorIs(t, err, ErrNotInProgress)
	assert.Equal(t, ErrorConflict, CodeOf(err))

	_, err = svc.Back(ctx, "s1")
	require.ErrorIs(t, err, ErrNotInProgress)
	assert.Zero(t, store.puts)
}

func TestSessionServiceInvalidAnswerLeavesStoreUntouched(t *testing.T) {
	ctx := context.Background()
	svc, store, obs := newSessionFixture(t, SessionServiceOptions{})
	_, err := svc.Start(ctx, "s1")
	require.NoError(t, err)

	_, err = svc.SaveProgress(ctx, "s1", models.Answers{1: 2, 2: 7}, ptrInt(3))
	require.ErrorIs(t, err, ErrInvalidAnswer)
	assert.Equal(t, ErrorInvalid, CodeOf(err))

	_, err = svc.Submit(ctx, "s1", models.Answers{99: 3}, SubmitParams{})
	require.ErrorIs(t, err, ErrUnknownQuestion)

	assert.Equal(t, 1, store.puts)
	assert.Empty(t, store.states["s1"].Answers)
	assert.Equal(t, []string{"invalid"}, obs.outcomes)
}

func TestSessionServiceNextBlockedWithoutAnswer(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture(t, SessionServiceOptions{RequireAnswerBeforeNext: true})
	_, err := svc.Start(ctx, "s1")
	require.NoError(t, err)

	nav, err := svc.Next(ctx, "s1", SubmitParams{})
	require.NoError(t, err)
	assert.True(t, nav.Blocked)
	assert.Equal(t, 0, nav.Status.CurrentQuestionIndex)

	_, err = svc.Answer(ctx, "s1", 1, 5)
	require.NoError(t, err)
	nav, err = svc.Next(ctx, "s1", SubmitParams{})
	require.NoError(t, err)
	assert.False(t, nav.Blocked)
	assert.Equal(t, 1, nav.Status.CurrentQuestionIndex)
}

func TestSessionServiceNextSubmitsOnLastQuestion(t *testing.T) {
	ctx := context.Background()
	svc, _, obs := newSessionFixture(t, SessionServiceOptions{})
	_, err := svc.Start(ctx, "s1")
	require.NoError(t, err)
	_, err = svc.SaveProgress(ctx, "s1", uniformAnswers(3), ptrInt(29))
	require.NoError(t, err)

	nav, err := svc.Next(ctx, "s1", SubmitParams{Locale: "de"})
	require.NoError(t, err)
	require.NotNil(t, nav.Result)
	assert.True(t, nav.Status.Completed)
	assert.Equal(t, "de", nav.Result.Locale)
	assert.Equal(t, []string{"completed"}, obs.outcomes)
}

func TestSessionServiceNextResolvesPositionOnlyOnSubmit(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture(t, SessionServiceOptions{})
	_, err := svc.Start(ctx, "s1")
	require.NoError(t, err)

	nav, err := svc.Next(ctx, "s1", SubmitParams{PositionID: "nope"})
	require.NoError(t, err)
	assert.Equal(t, 1, nav.Status.CurrentQuestionIndex)

	_, err = svc.SaveProgress(ctx, "s1", uniformAnswers(3), ptrInt(29))
	require.NoError(t, err)
	_, err = svc.Next(ctx, "s1", SubmitParams{PositionID: "nope"})
	assert.Equal(t, ErrorNotFound, CodeOf(err))

	st, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.Completed)
	assert.Equal(t, 29, st.CurrentQuestionIndex)
}

func TestSessionServicePositionErrors(t *testing.T) {
	ctx := context.Background()
	svc, _, obs := newSessionFixture(t, SessionServiceOptions{})
	_, err := svc.Start(ctx, "s1")
	require.NoError(t, err)

	_, err = svc.Submit(ctx, "s1", uniformAnswers(3), SubmitParams{PositionID: "nope"})
	assert.Equal(t, ErrorNotFound, CodeOf(err))

	_, err = svc.Submit(ctx, "s1", uniformAnswers(3), SubmitParams{PositionID: "blank"})
	require.ErrorIs(t, err, ErrMissingProfile)
	assert.Equal(t, []string{"missing_profile"}, obs.outcomes)

	st, err := svc.Status(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, st.Completed)
}

func TestSessionServiceStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc, store, _ := newSessionFixture(t, SessionServiceOptions{})
	store.putErr = errors.New("disk full")
	_, err := svc.Start(ctx, "s1")
	require.Error(t, err)
	assert.Equal(t, ErrorInternal, CodeOf(err))
}

func TestSessionServiceQuestionsUseLocaleAndOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSessionFixture(t, SessionServiceOptions{})
	svc.q.shuffle = func(ids []int) { ids[0], ids[1] = ids[1], ids[0] }
	_, err := svc.Start(ctx, "s1")
	require.NoError(t, err)

	qs, err := svc.Questions(ctx, "s1", "de", "en")
	require.NoError(t, err)
	require.Len(t, qs, TotalQuestions)
	assert.Equal(t, 2, qs[0].ID)
	assert.Equal(t, "Frage", qs[0].Text)

	qs, err = svc.Questions(ctx, "s1", "fr", "en")
	require.NoError(t, err)
	assert.Equal(t, "item", qs[0].Text)
}

func TestSessionServiceResultBeforeCompletion(t *testing.T) {
	svc, _, _ := newSessionFixture(t, SessionServiceOptions{})
	_, err := svc.Result(context.Background(), "s1")
	assert.Equal(t, ErrorNotFound, CodeOf(err))
}
