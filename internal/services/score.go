package services

import (
	"sort"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

const (
	// LikertPoints is the number of response options per item.
	LikertPoints = 5
	MinRawScore  = QuestionsPerDimension
	MaxRawScore  = QuestionsPerDimension * LikertPoints
)

// ReverseScore maps a Likert response to its reverse-keyed value on a
// points-wide scale (6-r for five points). Out-of-range input is clamped.
func ReverseScore(raw, points int) int {
	if points < 2 {
		return raw
	}
	if raw < 1 {
		raw = 1
	}
	if raw > points {
		raw = points
	}
	return (points + 1) - raw
}

// ValidAnswer reports whether v is a Likert response.
func ValidAnswer(v int) bool { return v >= 1 && v <= LikertPoints }

// ScoringEngine aggregates answers into per-dimension scores.
type ScoringEngine struct {
	bank   *QuestionBank
	interp *Interpreter
}

func NewScoringEngine(bank *QuestionBank, interp *Interpreter) *ScoringEngine {
	return &ScoringEngine{bank: bank, interp: interp}
}

// Validate checks ids and values in answers without requiring completeness.
// Errors are reported for the lowest offending id so results are stable.
func (e *ScoringEngine) Validate(answers models.Answers) error {
	ids := make([]int, 0, len(answers))
	for id := range answers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if _, ok := e.bank.Lookup(id); !ok {
			return &UnknownQuestionError{QuestionID: id}
		}
		if v := answers[id]; !ValidAnswer(v) {
			return &InvalidAnswerError{QuestionID: id, Value: v}
		}
	}
	return nil
}

// RawScores sums the keyed responses per dimension. answers must cover every item.
func (e *ScoringEngine) RawScores(answers models.Answers) (map[models.Dimension]int, error) {
	if err := e.Validate(answers); err != nil {
		return nil, err
	}
	if missing := e.bank.Missing(answers); len(missing) > 0 {
		return nil, &IncompleteAnswersError{Missing: missing}
	}
	raw := make(map[models.Dimension]int, len(models.Dimensions))
	for _, q := range e.bank.questions {
		v := answers[q.ID]
		if q.ReverseScored {
			v = ReverseScore(v, LikertPoints)
		}
		raw[q.Dimension] += v
	}
	return raw, nil
}

// Score returns the interpreted score of every dimension.
func (e *ScoringEngine) Score(answers models.Answers, locale string) (map[models.Dimension]models.DimensionScore, error) {
	raw, err := e.RawScores(answers)
	if err != nil {
		return nil, err
	}
	out := make(map[models.Dimension]models.DimensionScore, len(raw))
	for _, d := range models.Dimensions {
		out[d] = e.interp.Dimension(d, raw[d], locale)
	}
	return out, nil
}
