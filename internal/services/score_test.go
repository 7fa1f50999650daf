package services

import (
	"errors"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

func TestReverseScore(t *testing.T) {
	cases := []struct {
		raw, points, want int
	}{
		{1, 5, 5},
		{2, 5, 4},
		{3, 5, 3},
		{5, 5, 1},
		{0, 5, 5},
		{6, 5, 1},
		{1, 7, 7},
		{7, 7, 1},
	}
	for _, c := range cases {
		if got := ReverseScore(c.raw, c.points); got != c.want {
			t.Fatalf("ReverseScore(%d,%d)=%d, want %d", c.raw, c.points, got, c.want)
		}
	}
}

func TestReverseScoreIsInvolutive(t *testing.T) {
	for r := 1; r <= LikertPoints; r++ {
		if got := ReverseScore(ReverseScore(r, LikertPoints), LikertPoints); got != r {
			t.Fatalf("double reverse of %d = %d", r, got)
		}
	}
}

func TestScoreNeutralAnswersGiveMidpoint(t *testing.T) {
	f := newFixture(t)
	scores, err := f.engine.Score(uniformAnswers(3), "en")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	for _, d := range models.Dimensions {
		if got := scores[d].RawScore; got != 18 {
			t.Fatalf("%s raw=%d, want 18", d, got)
		}
		if scores[d].Level != "medium" {
			t.Fatalf("%s level=%s, want medium", d, scores[d].Level)
		}
	}
}

func TestScoreMaximalTraitIgnoresPhrasing(t *testing.T) {
	f := newFixture(t)
	answers := uniformAnswers(3)
	for _, q := range f.bank.Questions() {
		if q.Dimension != models.Conscientiousness {
			continue
		}
		if q.ReverseScored {
			answers[q.ID] = 1
		} else {
			answers[q.ID] = 5
		}
	}
	scores, err := f.engine.Score(answers, "en")
	if err != nil {
		t.Fatalf("Score: %v", err)
	}
	c := scores[models.Conscientiousness]
	if c.RawScore != MaxRawScore || c.Level != "very_high" {
		t.Fatalf("C=%+v, want raw %d very_high", c, MaxRawScore)
	}
	if c.Description != "C very_high" {
		t.Fatalf("description=%q", c.Description)
	}
}

func TestScoreRangeAndPurity(t *testing.T) {
	f := newFixture(t)
	rng := rand.New(rand.NewPCG(1, 2))
	for i := 0; i < 200; i++ {
		answers := models.Answers{}
		for id := 1; id <= TotalQuestions; id++ {
			answers[id] = 1 + rng.IntN(LikertPoints)
		}
		first, err := f.engine.Score(answers, "en")
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		for d, s := range first {
			if s.RawScore < MinRawScore || s.RawScore > MaxRawScore {
				t.Fatalf("%s raw=%d outside [%d,%d]", d, s.RawScore, MinRawScore, MaxRawScore)
			}
		}
		second, err := f.engine.Score(answers.Clone(), "en")
		if err != nil {
			t.Fatalf("Score: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Fatalf("Score not deterministic: %+v vs %+v", first, second)
		}
	}
}

func TestScoreRejectsBadInput(t *testing.T) {
	f := newFixture(t)

	incomplete := uniformAnswers(4)
	delete(incomplete, 7)
	delete(incomplete, 30)
	_, err := f.engine.Score(incomplete, "en")
	var ie *IncompleteAnswersError
	if !errors.As(err, &ie) {
		t.Fatalf("expected IncompleteAnswersError, got %v", err)
	}
	if !reflect.DeepEqual(ie.Missing, []int{7, 30}) {
		t.Fatalf("missing=%v", ie.Missing)
	}

	invalid := uniformAnswers(4)
	invalid[3] = 6
	if _, err := f.engine.Score(invalid, "en"); !errors.Is(err, ErrInvalidAnswer) {
		t.Fatalf("expected ErrInvalidAnswer, got %v", err)
	}

	unknown := uniformAnswers(4)
	unknown[99] = 2
	if _, err := f.engine.Score(unknown, "en"); !errors.Is(err, ErrUnknownQuestion) {
		t.Fatalf("expected ErrUnknownQuestion, got %v", err)
	}
}
