package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// testQuestions builds 30 items: dimension cycles O,C,E,A,N and every
// second block of five is reverse keyed, giving a 3/3 split per dimension.
func testQuestions() []models.Question {
	qs := make([]models.Question, 0, TotalQuestions)
	for id := 1; id <= TotalQuestions; id++ {
		qs = append(qs, models.Question{
			ID:            id,
			TextI18n:      models.LocalizedText{"en": "item", "de": "Frage"},
			Dimension:     models.Dimensions[(id-1)%5],
			ReverseScored: ((id-1)/5)%2 == 1,
		})
	}
	return qs
}

func testInterpretations() models.Interpretations {
	levels := []models.ScoreBand{
		{Level: "very_low", Min: 6, Max: 10},
		{Level: "low", Min: 11, Max: 15},
		{Level: "medium", Min: 16, Max: 20},
		{Level: "high", Min: 21, Max: 25},
		{Level: "very_high", Min: 26, Max: 30},
	}
	desc := map[models.Dimension]map[string]models.LocalizedText{}
	for _, d := range models.Dimensions {
		desc[d] = map[string]models.LocalizedText{}
		for _, b := range levels {
			desc[d][b.Level] = models.LocalizedText{"en": string(d) + " " + b.Level}
		}
	}
	return models.Interpretations{
		ScoreBands:   levels,
		Descriptions: desc,
		FitBands: []models.FitBand{
			{Level: "excellent", Min: 80, Description: models.LocalizedText{"en": "excellent"}},
			{Level: "good", Min: 65, Description: models.LocalizedText{"en": "good"}},
			{Level: "moderate", Min: 50, Description: models.LocalizedText{"en": "moderate"}},
			{Level: "weak", Min: 0, Description: models.LocalizedText{"en": "weak"}},
		},
	}
}

func ptrInt(v int) *int           { return &v }
func ptrFloat(v float64) *float64 { return &v }

func testPosition() models.Position {
	return models.Position{
		ID:    "dev",
		Title: "Developer",
		Personality: &models.JobProfile{Dimensions: map[models.Dimension]models.DimensionTarget{
			models.Openness:          {IdealScore: ptrInt(22), Weight: ptrFloat(0.2)},
			models.Conscientiousness: {IdealScore: ptrInt(24), Weight: ptrFloat(0.4), MinScore: ptrInt(18)},
			models.Extraversion:      {IdealScore: ptrInt(16), Weight: ptrFloat(0.1)},
			models.Agreeableness:     {IdealScore: ptrInt(20), Weight: ptrFloat(0.15)},
			models.Neuroticism:       {IdealScore: ptrInt(12), Weight: ptrFloat(0.15), Reversed: true},
		}},
	}
}

type fixture struct {
	bank   *QuestionBank
	interp *Interpreter
	engine *ScoringEngine
	fit    *FitCombiner
	q      *Questionnaire
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	bank, err := NewQuestionBank(testQuestions())
	if err != nil {
		t.Fatalf("NewQuestionBank: %v", err)
	}
	interp, err := NewInterpreter(testInterpretations(), "en")
	if err != nil {
		t.Fatalf("NewInterpreter: %v", err)
	}
	engine := NewScoringEngine(bank, interp)
	fit := NewFitCombiner(interp)
	q := NewQuestionnaire(bank, engine, fit, QuestionnaireOptions{})
	q.now = func() time.Time { return time.Date(2025, 9, 17, 0, 0, 0, 0, time.UTC) }
	return fixture{bank: bank, interp: interp, engine: engine, fit: fit, q: q}
}

// uniformAnswers answers every item with v.
func uniformAnswers(v int) models.Answers {
	a := models.Answers{}
	for id := 1; id <= TotalQuestions; id++ {
		a[id] = v
	}
	return a
}

// answersForRaw picks responses so that every dimension scores raw[d].
// Each target must lie in 6..30.
func answersForRaw(bank *QuestionBank, raw map[models.Dimension]int) models.Answers {
	a := models.Answers{}
	remaining := map[models.Dimension]int{}
	left := map[models.Dimension]int{}
	for d, v := range raw {
		remaining[d] = v
		left[d] = QuestionsPerDimension
	}
	for _, q := range bank.Questions() {
		d := q.Dimension
		left[d]--
		// give as much as possible while leaving at least 1 for each remaining item
		v := remaining[d] - left[d]
		if v > LikertPoints {
			v = LikertPoints
		}
		if v < 1 {
			v = 1
		}
		remaining[d] -= v
		if q.ReverseScored {
			v = ReverseScore(v, LikertPoints)
		}
		a[q.ID] = v
	}
	return a
}

type stubSessionStore struct {
	mu     sync.Mutex
	states map[string]models.SessionState
	puts   int
	putErr error
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{states: map[string]models.SessionState{}}
}

func (s *stubSessionStore) Get(_ context.Context, id string) (models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.states[id], nil
}

func (s *stubSessionStore) Put(_ context.Context, id string, st models.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.putErr != nil {
		return s.putErr
	}
	s.puts++
	s.states[id] = st
	return nil
}

type stubPositions map[string]models.Position

func (p stubPositions) Position(id string) (models.Position, bool) {
	pos, ok := p[id]
	return pos, ok
}

type recordingObserver struct {
	outcomes []string
	scores   []int
}

func (r *recordingObserver) ObserveSubmission(outcome string, fit int) {
	r.outcomes = append(r.outcomes, outcome)
	r.scores = append(r.scores, fit)
}
