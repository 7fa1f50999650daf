package services

import (
	"errors"
	"testing"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

func TestInterpreterLevels(t *testing.T) {
	in, err := NewInterpreter(testInterpretations(), "en")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		raw  int
		want string
	}{
		{6, "very_low"}, {10, "very_low"}, {11, "low"}, {15, "low"},
		{16, "medium"}, {20, "medium"}, {21, "high"}, {25, "high"},
		{26, "very_high"}, {30, "very_high"},
	}
	for _, c := range cases {
		if got := in.Dimension(models.Openness, c.raw, "en").Level; got != c.want {
			t.Fatalf("level(%d)=%s, want %s", c.raw, got, c.want)
		}
	}
}

func TestInterpreterFitBands(t *testing.T) {
	in, err := NewInterpreter(testInterpretations(), "en")
	if err != nil {
		t.Fatal(err)
	}
	cases := []struct {
		value int
		want  string
	}{
		{100, "excellent"}, {80, "excellent"}, {79, "good"}, {65, "good"},
		{64, "moderate"}, {50, "moderate"}, {49, "weak"}, {0, "weak"},
	}
	for _, c := range cases {
		fit := in.Fit(c.value, "de")
		if fit.Level != c.want {
			t.Fatalf("fit(%d)=%s, want %s", c.value, fit.Level, c.want)
		}
		if fit.Description != c.want {
			t.Fatalf("fit(%d) description=%q, want fallback text", c.value, fit.Description)
		}
	}
}

func TestNewInterpreterRejectsGaps(t *testing.T) {
	cfg := testInterpretations()
	cfg.ScoreBands[1].Min = 12
	if _, err := NewInterpreter(cfg, "en"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for gap, got %v", err)
	}

	cfg = testInterpretations()
	delete(cfg.Descriptions[models.Agreeableness], "high")
	if _, err := NewInterpreter(cfg, "en"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration for missing description, got %v", err)
	}

	cfg = testInterpretations()
	cfg.FitBands = cfg.FitBands[:3]
	if _, err := NewInterpreter(cfg, "en"); !errors.Is(err, ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration without floor band, got %v", err)
	}
}
