package services

import (
	"fmt"
	"sort"
	"strings"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

const (
	// QuestionsPerDimension is fixed by the IPIP-30 design.
	QuestionsPerDimension = 6
	// TotalQuestions is the size of the bank.
	TotalQuestions = QuestionsPerDimension * 5
)

// QuestionSource supplies the raw item list, usually from the catalog.
type QuestionSource interface {
	Questions() ([]models.Question, error)
}

// QuestionBank is the immutable, validated item set. Safe for concurrent reads.
type QuestionBank struct {
	questions []models.Question
	index     map[int]int
}

// LoadQuestionBank reads src and validates the result.
func LoadQuestionBank(src QuestionSource) (*QuestionBank, error) {
	if src == nil {
		return nil, &ConfigurationError{Source: "question bank", Problems: []string{"no source configured"}}
	}
	qs, err := src.Questions()
	if err != nil {
		return nil, &ConfigurationError{Source: "question bank", Problems: []string{err.Error()}}
	}
	return NewQuestionBank(qs)
}

// NewQuestionBank validates qs and keeps their order.
func NewQuestionBank(qs []models.Question) (*QuestionBank, error) {
	var problems []string
	if len(qs) != TotalQuestions {
		problems = append(problems, fmt.Sprintf("expected %d questions, found %d", TotalQuestions, len(qs)))
	}
	counts := map[models.Dimension]int{}
	index := make(map[int]int, len(qs))
	for i, q := range qs {
		if q.ID <= 0 {
			problems = append(problems, fmt.Sprintf("question #%d has non-positive id %d", i+1, q.ID))
		}
		if _, dup := index[q.ID]; dup {
			problems = append(problems, fmt.Sprintf("question id %d is used more than once", q.ID))
		} else {
			index[q.ID] = i
		}
		if !q.Dimension.Valid() {
			problems = append(problems, fmt.Sprintf("question %d has unknown dimension %q", q.ID, q.Dimension))
		} else {
			counts[q.Dimension]++
		}
		if strings.TrimSpace(q.Text("", "")) == "" {
			problems = append(problems, fmt.Sprintf("question %d has no text", q.ID))
		}
	}
	for _, d := range models.Dimensions {
		if counts[d] != QuestionsPerDimension {
			problems = append(problems, fmt.Sprintf("dimension %s has %d questions, want %d", d, counts[d], QuestionsPerDimension))
		}
	}
	if len(problems) > 0 {
		return nil, &ConfigurationError{Source: "question bank", Problems: problems}
	}
	out := make([]models.Question, len(qs))
	copy(out, qs)
	return &QuestionBank{questions: out, index: index}, nil
}

// Questions returns the items in catalog order.
func (b *QuestionBank) Questions() []models.Question {
	out := make([]models.Question, len(b.questions))
	copy(out, b.questions)
	return out
}

func (b *QuestionBank) Lookup(id int) (models.Question, bool) {
	i, ok := b.index[id]
	if !ok {
		return models.Question{}, false
	}
	return b.questions[i], true
}

func (b *QuestionBank) Len() int { return len(b.questions) }

// IDs returns the question ids in catalog order.
func (b *QuestionBank) IDs() []int {
	ids := make([]int, len(b.questions))
	for i, q := range b.questions {
		ids[i] = q.ID
	}
	return ids
}

// Missing returns the sorted ids that have no entry in answers.
func (b *QuestionBank) Missing(answers models.Answers) []int {
	var missing []int
	for _, q := range b.questions {
		if _, ok := answers[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	sort.Ints(missing)
	return missing
}
