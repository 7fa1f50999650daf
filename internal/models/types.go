package models

import "time"

// Dimension is one of the five Big-Five traits.
type Dimension string

const (
	Openness          Dimension = "O"
	Conscientiousness Dimension = "C"
	Extraversion      Dimension = "E"
	Agreeableness     Dimension = "A"
	Neuroticism       Dimension = "N"
)

// Dimensions lists the traits in reporting order.
var Dimensions = []Dimension{Openness, Conscientiousness, Extraversion, Agreeableness, Neuroticism}

// Valid reports whether d is one of the five traits.
func (d Dimension) Valid() bool {
	switch d {
	case Openness, Conscientiousness, Extraversion, Agreeableness, Neuroticism:
		return true
	}
	return false
}

// Question is a single IPIP item. Text is keyed by locale.
type Question struct {
	ID            int
	TextI18n      map[string]string
	Dimension     Dimension
	ReverseScored bool
}

// Text returns the item text for locale, falling back to fallback and then any entry.
func (q Question) Text(locale, fallback string) string {
	if s := q.TextI18n[locale]; s != "" {
		return s
	}
	if s := q.TextI18n[fallback]; s != "" {
		return s
	}
	for _, s := range q.TextI18n {
		if s != "" {
			return s
		}
	}
	return ""
}

// Answers maps question id to a Likert response (1..5).
type Answers map[int]int

// Clone returns an independent copy; nil stays nil-safe.
func (a Answers) Clone() Answers {
	out := make(Answers, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// DimensionScore is the scored and interpreted result for one trait.
type DimensionScore struct {
	Dimension   Dimension `json:"dimension"`
	RawScore    int       `json:"score"`
	Level       string    `json:"level"`
	Description string    `json:"description"`
}

// FitScore expresses how closely a profile matches a position.
type FitScore struct {
	Value        int         `json:"value"`
	Level        string      `json:"level"`
	Description  string      `json:"description"`
	BelowMinimum []Dimension `json:"below_minimum,omitempty"`
}

// Assessment is attached to a session when it completes.
type Assessment struct {
	Scores      map[Dimension]DimensionScore `json:"scores"`
	Fit         FitScore                     `json:"fit"`
	PositionID  string                       `json:"position_id"`
	Imputed     []int                        `json:"imputed,omitempty"`
	Locale      string                       `json:"locale"`
	SubmittedAt time.Time                    `json:"submitted_at"`
}

// CVMatch is the résumé analysis result kept alongside the questionnaire.
type CVMatch struct {
	Score      float64   `json:"score"`
	Summary    string    `json:"summary,omitempty"`
	Strengths  []string  `json:"strengths,omitempty"`
	Gaps       []string  `json:"gaps,omitempty"`
	PositionID string    `json:"position_id"`
	AnalyzedAt time.Time `json:"analyzed_at"`
}

// SessionState is the questionnaire record owned by one browser session.
type SessionState struct {
	Started              bool        `json:"started"`
	Completed            bool        `json:"completed"`
	CurrentQuestionIndex int         `json:"current_question_index"`
	Answers              Answers     `json:"answers"`
	QuestionOrder        []int       `json:"question_order,omitempty"`
	Result               *Assessment `json:"result,omitempty"`
	CVMatch              *CVMatch    `json:"cv_match,omitempty"`
	StartedAt            time.Time   `json:"started_at,omitempty"`
	UpdatedAt            time.Time   `json:"updated_at,omitempty"`
}

// Status names the lifecycle phase derived from the flags.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Status derives the lifecycle phase.
func (s SessionState) Status() Status {
	switch {
	case !s.Started:
		return StatusNotStarted
	case s.Completed:
		return StatusCompleted
	default:
		return StatusInProgress
	}
}
