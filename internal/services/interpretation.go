package services

import (
	"fmt"
	"sort"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// Interpreter turns raw and fit scores into levels and localized text.
type Interpreter struct {
	scoreBands     []models.ScoreBand
	descriptions   map[models.Dimension]map[string]models.LocalizedText
	fitBands       []models.FitBand
	fallbackLocale string
}

// NewInterpreter validates cfg: score bands must tile [MinRawScore, MaxRawScore],
// every (dimension, level) pair needs a description and fit bands need a 0 floor.
func NewInterpreter(cfg models.Interpretations, fallbackLocale string) (*Interpreter, error) {
	var problems []string

	bands := append([]models.ScoreBand(nil), cfg.ScoreBands...)
	sort.Slice(bands, func(i, j int) bool { return bands[i].Min < bands[j].Min })
	next := MinRawScore
	for _, b := range bands {
		if b.Level == "" {
			problems = append(problems, fmt.Sprintf("score band %d-%d has no level", b.Min, b.Max))
		}
		if b.Min > b.Max {
			problems = append(problems, fmt.Sprintf("score band %s has min %d above max %d", b.Level, b.Min, b.Max))
		}
		if b.Min != next {
			problems = append(problems, fmt.Sprintf("score band %s starts at %d, want %d", b.Level, b.Min, next))
		}
		next = b.Max + 1
	}
	if next != MaxRawScore+1 {
		problems = append(problems, fmt.Sprintf("score bands end at %d, want %d", next-1, MaxRawScore))
	}

	for _, d := range models.Dimensions {
		for _, b := range bands {
			if len(cfg.Descriptions[d][b.Level]) == 0 {
				problems = append(problems, fmt.Sprintf("no description for %s/%s", d, b.Level))
			}
		}
	}

	fit := append([]models.FitBand(nil), cfg.FitBands...)
	sort.Slice(fit, func(i, j int) bool { return fit[i].Min > fit[j].Min })
	if len(fit) == 0 || fit[len(fit)-1].Min > 0 {
		problems = append(problems, "fit bands must include a band starting at 0")
	}
	seen := map[int]bool{}
	for _, b := range fit {
		if b.Level == "" {
			problems = append(problems, fmt.Sprintf("fit band at %d has no level", b.Min))
		}
		if seen[b.Min] {
			problems = append(problems, fmt.Sprintf("fit bands share threshold %d", b.Min))
		}
		seen[b.Min] = true
	}

	if len(problems) > 0 {
		return nil, &ConfigurationError{Source: "interpretations", Problems: problems}
	}
	return &Interpreter{
		scoreBands:     bands,
		descriptions:   cfg.Descriptions,
		fitBands:       fit,
		fallbackLocale: fallbackLocale,
	}, nil
}

// Dimension interprets a raw score. Scores outside the tiled range clamp to the edge band.
func (in *Interpreter) Dimension(d models.Dimension, raw int, locale string) models.DimensionScore {
	band := in.scoreBands[0]
	for _, b := range in.scoreBands {
		if raw >= b.Min {
			band = b
		}
	}
	return models.DimensionScore{
		Dimension:   d,
		RawScore:    raw,
		Level:       band.Level,
		Description: in.descriptions[d][band.Level].In(locale, in.fallbackLocale),
	}
}

// LevelLabel returns the display label for a score level.
func (in *Interpreter) LevelLabel(level, locale string) string {
	for _, b := range in.scoreBands {
		if b.Level == level {
			return b.Label.In(locale, in.fallbackLocale)
		}
	}
	return level
}

// Fit picks the highest fit band whose threshold value reaches.
func (in *Interpreter) Fit(value int, locale string) models.FitScore {
	band := in.fitBands[len(in.fitBands)-1]
	for _, b := range in.fitBands {
		if value >= b.Min {
			band = b
			break
		}
	}
	return models.FitScore{
		Value:       value,
		Level:       band.Level,
		Description: band.Description.In(locale, in.fallbackLocale),
	}
}
