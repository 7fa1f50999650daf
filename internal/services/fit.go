package services

import (
	"math"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

const (
	defaultDimensionWeight = 0.2
	// maxDeviation is the widest possible gap between two raw scores.
	maxDeviation = float64(MaxRawScore - MinRawScore)
)

// FitCombiner compares dimension scores against a position's profile.
type FitCombiner struct {
	interp *Interpreter
}

func NewFitCombiner(interp *Interpreter) *FitCombiner {
	return &FitCombiner{interp: interp}
}

func dimensionWeight(t models.DimensionTarget) float64 {
	if t.Weight != nil {
		return *t.Weight
	}
	return defaultDimensionWeight
}

// CheckProfile reports dimensions the profile cannot score, and profiles
// whose weights leave nothing to average.
func CheckProfile(positionID string, profile *models.JobProfile) error {
	if profile == nil {
		return &MissingProfileError{PositionID: positionID}
	}
	var missing []models.Dimension
	var weights float64
	for _, d := range models.Dimensions {
		t, ok := profile.Dimensions[d]
		if !ok || t.IdealScore == nil {
			missing = append(missing, d)
			continue
		}
		if w := dimensionWeight(t); w > 0 {
			weights += w
		}
	}
	if len(missing) > 0 {
		return &MissingProfileError{PositionID: positionID, Dimensions: missing}
	}
	if weights == 0 {
		return &MissingProfileError{PositionID: positionID, NoWeights: true}
	}
	return nil
}

// Closeness scores one dimension on 0..100, 100 meaning the ideal was hit.
// The distance is symmetric; Reversed does not change it.
func Closeness(actual int, t models.DimensionTarget) float64 {
	deviation := float64(actual - *t.IdealScore)
	return math.Max(0, 100-math.Abs(deviation)/maxDeviation*100)
}

// FitValue is the weighted mean closeness, truncated to an int in 0..100.
func FitValue(raw map[models.Dimension]int, positionID string, profile *models.JobProfile) (int, error) {
	if err := CheckProfile(positionID, profile); err != nil {
		return 0, err
	}
	var total, weights float64
	for _, d := range models.Dimensions {
		t := profile.Dimensions[d]
		w := dimensionWeight(t)
		if w <= 0 {
			continue
		}
		total += Closeness(raw[d], t) * w
		weights += w
	}
	if weights == 0 {
		return 0, &MissingProfileError{PositionID: positionID, NoWeights: true}
	}
	// the epsilon keeps float noise in the weights from truncating 80 to 79
	v := int(math.Floor(total/weights + 1e-9))
	if v < 0 {
		v = 0
	}
	if v > 100 {
		v = 100
	}
	return v, nil
}

// Combine maps dimension scores and a position profile to an interpreted FitScore.
func (c *FitCombiner) Combine(scores map[models.Dimension]models.DimensionScore, position models.Position, locale string) (models.FitScore, error) {
	raw := make(map[models.Dimension]int, len(scores))
	for d, s := range scores {
		raw[d] = s.RawScore
	}
	v, err := FitValue(raw, position.ID, position.Personality)
	if err != nil {
		return models.FitScore{}, err
	}
	fit := c.interp.Fit(v, locale)
	for _, d := range models.Dimensions {
		t := position.Personality.Dimensions[d]
		if t.MinScore != nil && raw[d] < *t.MinScore {
			fit.BelowMinimum = append(fit.BelowMinimum, d)
		}
	}
	return fit, nil
}

// CombinedResult merges résumé match and personality fit.
type CombinedResult struct {
	CombinedScore       float64               `json:"combined_score"`
	CVMatchScore        float64               `json:"cv_match_score"`
	PersonalityFitScore int                   `json:"personality_fit_score"`
	Weights             models.ScoringWeights `json:"weights"`
}

// CombinedScore weights cv and fit. Weights that do not sum to one (±0.01) are
// normalized; the result is rounded to one decimal and clamped to 0..100.
func CombinedScore(cv float64, fit int, weights models.ScoringWeights) CombinedResult {
	w := weights
	if w.CV <= 0 && w.Personality <= 0 {
		w = models.ScoringWeights{CV: 0.7, Personality: 0.3}
	}
	if sum := w.CV + w.Personality; math.Abs(sum-1) > 0.01 {
		w.CV /= sum
		w.Personality /= sum
	}
	combined := math.Round((cv*w.CV+float64(fit)*w.Personality)*10) / 10
	combined = math.Max(0, math.Min(100, combined))
	return CombinedResult{
		CombinedScore:       combined,
		CVMatchScore:        math.Round(cv*10) / 10,
		PersonalityFitScore: fit,
		Weights:             w,
	}
}
