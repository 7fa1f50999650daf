package models

// LocalizedText holds one string per locale.
type LocalizedText map[string]string

// In returns the text for locale, then fallback, then any non-empty entry.
func (t LocalizedText) In(locale, fallback string) string {
	if s := t[locale]; s != "" {
		return s
	}
	if s := t[fallback]; s != "" {
		return s
	}
	for _, s := range t {
		if s != "" {
			return s
		}
	}
	return ""
}

// ScoreBand maps an inclusive raw-score range to a level.
type ScoreBand struct {
	Level string        `mapstructure:"level"`
	Min   int           `mapstructure:"min"`
	Max   int           `mapstructure:"max"`
	Label LocalizedText `mapstructure:"label"`
}

// FitBand applies to fit values >= Min.
type FitBand struct {
	Level       string        `mapstructure:"level"`
	Min         int           `mapstructure:"min"`
	Label       LocalizedText `mapstructure:"label"`
	Description LocalizedText `mapstructure:"description"`
}

// Interpretations is the configurable text and threshold set used for scoring.
type Interpretations struct {
	ScoreBands   []ScoreBand                            `mapstructure:"score_bands"`
	Descriptions map[Dimension]map[string]LocalizedText `mapstructure:"descriptions"`
	FitBands     []FitBand                              `mapstructure:"fit_bands"`
}

// DimensionTarget is a position's expectation for one trait.
type DimensionTarget struct {
	IdealScore *int     `mapstructure:"ideal_score"`
	Weight     *float64 `mapstructure:"weight"`
	MinScore   *int     `mapstructure:"min_score"`
	// Reversed marks traits where a lower score is desirable. It is
	// informational; fit distance is symmetric for every trait.
	Reversed bool `mapstructure:"reversed"`
}

// JobProfile is the ideal personality profile of a position.
type JobProfile struct {
	Dimensions map[Dimension]DimensionTarget `mapstructure:"dimensions"`
}

// RequirementCategory groups skills for the résumé analysis.
type RequirementCategory struct {
	Category string   `mapstructure:"category" json:"category"`
	Weight   float64  `mapstructure:"weight" json:"weight"`
	Skills   []string `mapstructure:"skills" json:"skills"`
}

// Position is a configured job opening.
type Position struct {
	ID          string                `mapstructure:"position_id"`
	Title       string                `mapstructure:"title"`
	Department  string                `mapstructure:"department"`
	MustHave    []RequirementCategory `mapstructure:"must_have"`
	ShouldHave  []RequirementCategory `mapstructure:"should_have"`
	NiceToHave  []RequirementCategory `mapstructure:"nice_to_have"`
	Personality *JobProfile           `mapstructure:"personality_profile"`
}

// ScoringWeights splits the combined score between résumé and personality.
type ScoringWeights struct {
	CV          float64 `mapstructure:"cv"`
	Personality float64 `mapstructure:"personality"`
}
