package services

import (
	"context"
	"sort"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// CompletedSessionSource lists the states of finished questionnaires.
type CompletedSessionSource interface {
	ListCompleted(ctx context.Context) ([]models.SessionState, error)
}

type AnalyticsService struct {
	source CompletedSessionSource
	bank   *QuestionBank
}

type AnalyticsItem struct {
	ID        int              `json:"id"`
	Dimension models.Dimension `json:"dimension"`
	Reverse   bool             `json:"reverse_scored"`
	Histogram []int            `json:"histogram"`
	Total     int              `json:"total"`
}

// DimensionReliability is Cronbach's alpha over the items of one trait,
// computed from sessions that answered all of them.
type DimensionReliability struct {
	Dimension models.Dimension `json:"dimension"`
	Alpha     float64          `json:"alpha"`
	N         int              `json:"n"`
}

type AnalyticsTimeseries struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type AnalyticsSummary struct {
	Completed   int                    `json:"completed"`
	WithImputed int                    `json:"with_imputed"`
	Items       []AnalyticsItem        `json:"items"`
	Reliability []DimensionReliability `json:"reliability"`
	FitLevels   map[string]int         `json:"fit_levels"`
	Timeseries  []AnalyticsTimeseries  `json:"timeseries"`
}

func NewAnalyticsService(source CompletedSessionSource, bank *QuestionBank) *AnalyticsService {
	return &AnalyticsService{source: source, bank: bank}
}

// Summary aggregates all completed sessions. Imputed answers are not stored
// with the session and therefore never enter histograms or alpha.
func (s *AnalyticsService) Summary(ctx context.Context) (*AnalyticsSummary, error) {
	states, err := s.source.ListCompleted(ctx)
	if err != nil {
		return nil, err
	}
	items, countsByDay := s.buildItems(states)
	summary := &AnalyticsSummary{
		Items:      items,
		FitLevels:  map[string]int{},
		Timeseries: buildTimeseries(countsByDay),
	}
	for _, st := range states {
		if st.Result == nil {
			continue
		}
		summary.Completed++
		if len(st.Result.Imputed) > 0 {
			summary.WithImputed++
		}
		summary.FitLevels[st.Result.Fit.Level]++
	}
	for _, d := range models.Dimensions {
		matrix := s.alphaMatrix(d, states)
		summary.Reliability = append(summary.Reliability, DimensionReliability{
			Dimension: d,
			Alpha:     CronbachAlpha(matrix),
			N:         len(matrix),
		})
	}
	return summary, nil
}

func (s *AnalyticsService) buildItems(states []models.SessionState) ([]AnalyticsItem, map[string]int) {
	questions := s.bank.Questions()
	index := make(map[int]int, len(questions))
	items := make([]AnalyticsItem, 0, len(questions))
	for i, q := range questions {
		items = append(items, AnalyticsItem{
			ID:        q.ID,
			Dimension: q.Dimension,
			Reverse:   q.ReverseScored,
			Histogram: make([]int, LikertPoints),
		})
		index[q.ID] = i
	}
	countsByDay := map[string]int{}
	for _, st := range states {
		if st.Result == nil {
			continue
		}
		for id, v := range st.Answers {
			idx, ok := index[id]
			if !ok || !ValidAnswer(v) {
				continue
			}
			items[idx].Histogram[v-1]++
			items[idx].Total++
		}
		countsByDay[st.Result.SubmittedAt.UTC().Format("2006-01-02")]++
	}
	return items, countsByDay
}

// alphaMatrix builds [sessions][items] for one dimension with reverse-keyed
// items already flipped, skipping sessions with a gap in that dimension.
func (s *AnalyticsService) alphaMatrix(d models.Dimension, states []models.SessionState) [][]float64 {
	var questions []models.Question
	for _, q := range s.bank.Questions() {
		if q.Dimension == d {
			questions = append(questions, q)
		}
	}
	sort.Slice(questions, func(i, j int) bool { return questions[i].ID < questions[j].ID })

	matrix := make([][]float64, 0, len(states))
	for _, st := range states {
		if st.Result == nil {
			continue
		}
		row := make([]float64, 0, len(questions))
		for _, q := range questions {
			v, ok := st.Answers[q.ID]
			if !ok {
				break
			}
			if q.ReverseScored {
				v = ReverseScore(v, LikertPoints)
			}
			row = append(row, float64(v))
		}
		if len(row) == len(questions) {
			matrix = append(matrix, row)
		}
	}
	return matrix
}

func buildTimeseries(counts map[string]int) []AnalyticsTimeseries {
	days := make([]string, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Strings(days)
	out := make([]AnalyticsTimeseries, 0, len(days))
	for _, d := range days {
		out = append(out, AnalyticsTimeseries{Date: d, Count: counts[d]})
	}
	return out
}
