package services

import (
	"math/rand/v2"
	"time"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

// QuestionnaireOptions tune presentation and submission policy.
type QuestionnaireOptions struct {
	// Shuffle randomizes the presentation order on Start.
	Shuffle bool
	// NeutralValue replaces missing answers on an explicitly allowed
	// incomplete submission. Zero means the Likert midpoint.
	NeutralValue int
}

// SubmitOptions carry the per-request inputs of a submission.
type SubmitOptions struct {
	Position        models.Position
	Locale          string
	AllowIncomplete bool
}

// Questionnaire implements the session state machine. Every transition takes
// a state value and returns a new one; the input is never mutated.
type Questionnaire struct {
	bank    *QuestionBank
	engine  *ScoringEngine
	fit     *FitCombiner
	opts    QuestionnaireOptions
	now     func() time.Time
	shuffle func(ids []int)
}

func NewQuestionnaire(bank *QuestionBank, engine *ScoringEngine, fit *FitCombiner, opts QuestionnaireOptions) *Questionnaire {
	if opts.NeutralValue == 0 {
		opts.NeutralValue = (LikertPoints + 1) / 2
	}
	q := &Questionnaire{
		bank:   bank,
		engine: engine,
		fit:    fit,
		opts:   opts,
		now:    func() time.Time { return time.Now().UTC() },
	}
	if opts.Shuffle {
		q.shuffle = func(ids []int) {
			rand.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
		}
	}
	return q
}

func (q *Questionnaire) lastIndex() int { return q.bank.Len() - 1 }

// Order returns the presentation order of s, defaulting to catalog order.
func (q *Questionnaire) Order(s models.SessionState) []int {
	if len(s.QuestionOrder) == q.bank.Len() {
		return append([]int(nil), s.QuestionOrder...)
	}
	return q.bank.IDs()
}

// Start resets s to a fresh in-progress questionnaire.
func (q *Questionnaire) Start(s models.SessionState) models.SessionState {
	now := q.now()
	next := models.SessionState{
		Started:              true,
		CurrentQuestionIndex: 0,
		Answers:              models.Answers{},
		CVMatch:              s.CVMatch,
		StartedAt:            now,
		UpdatedAt:            now,
	}
	if q.shuffle != nil {
		order := q.bank.IDs()
		q.shuffle(order)
		next.QuestionOrder = order
	}
	return next
}

func (q *Questionnaire) requireInProgress(op string, s models.SessionState) error {
	if st := s.Status(); st != models.StatusInProgress {
		return &NotInProgressError{Op: op, Status: st}
	}
	return nil
}

// Answer upserts a single response.
func (q *Questionnaire) Answer(s models.SessionState, questionID, value int) (models.SessionState, error) {
	return q.ApplyAnswers(s, models.Answers{questionID: value})
}

// ApplyAnswers upserts several responses. Either all are applied or none.
func (q *Questionnaire) ApplyAnswers(s models.SessionState, answers models.Answers) (models.SessionState, error) {
	if err := q.requireInProgress("answer", s); err != nil {
		return s, err
	}
	if err := q.engine.Validate(answers); err != nil {
		return s, err
	}
	next := s
	next.Answers = s.Answers.Clone()
	for id, v := range answers {
		next.Answers[id] = v
	}
	next.UpdatedAt = q.now()
	return next, nil
}

// Seek moves the cursor to index, clamped to the bank.
func (q *Questionnaire) Seek(s models.SessionState, index int) (models.SessionState, error) {
	if err := q.requireInProgress("seek", s); err != nil {
		return s, err
	}
	next := s
	next.CurrentQuestionIndex = clamp(index, 0, q.lastIndex())
	next.UpdatedAt = q.now()
	return next, nil
}

// CurrentAnswered reports whether the question under the cursor has a response.
func (q *Questionnaire) CurrentAnswered(s models.SessionState) bool {
	order := q.Order(s)
	i := clamp(s.CurrentQuestionIndex, 0, len(order)-1)
	_, ok := s.Answers[order[i]]
	return ok
}

// Next advances the cursor. On the last question it submits instead.
func (q *Questionnaire) Next(s models.SessionState, opts SubmitOptions) (models.SessionState, error) {
	if err := q.requireInProgress("next", s); err != nil {
		return s, err
	}
	if s.CurrentQuestionIndex >= q.lastIndex() {
		opts.AllowIncomplete = false
		return q.Submit(s, opts)
	}
	return q.Seek(s, s.CurrentQuestionIndex+1)
}

// Back moves the cursor one question back; a no-op at the first question.
func (q *Questionnaire) Back(s models.SessionState) (models.SessionState, error) {
	if err := q.requireInProgress("back", s); err != nil {
		return s, err
	}
	if s.CurrentQuestionIndex <= 0 {
		return s, nil
	}
	return q.Seek(s, s.CurrentQuestionIndex-1)
}

// Submit scores the answers and completes the questionnaire. Missing answers
// fail with IncompleteAnswersError unless opts.AllowIncomplete is set, in which
// case they are filled with the neutral value and reported as imputed.
func (q *Questionnaire) Submit(s models.SessionState, opts SubmitOptions) (models.SessionState, error) {
	if err := q.requireInProgress("submit", s); err != nil {
		return s, err
	}
	if err := CheckProfile(opts.Position.ID, opts.Position.Personality); err != nil {
		return s, err
	}
	answers := s.Answers.Clone()
	missing := q.bank.Missing(answers)
	if len(missing) > 0 {
		if !opts.AllowIncomplete {
			return s, &IncompleteAnswersError{Missing: missing}
		}
		for _, id := range missing {
			answers[id] = q.opts.NeutralValue
		}
	}
	scores, err := q.engine.Score(answers, opts.Locale)
	if err != nil {
		return s, err
	}
	fit, err := q.fit.Combine(scores, opts.Position, opts.Locale)
	if err != nil {
		return s, err
	}
	now := q.now()
	next := s
	next.Answers = s.Answers.Clone()
	next.Completed = true
	next.CurrentQuestionIndex = q.lastIndex()
	next.Result = &models.Assessment{
		Scores:      scores,
		Fit:         fit,
		PositionID:  opts.Position.ID,
		Imputed:     missing,
		Locale:      opts.Locale,
		SubmittedAt: now,
	}
	next.UpdatedAt = now
	return next, nil
}

// StatusView is the resumable snapshot returned to clients.
type StatusView struct {
	Started              bool           `json:"started"`
	Completed            bool           `json:"completed"`
	CurrentQuestionIndex int            `json:"current_question_index"`
	Answers              models.Answers `json:"answers"`
}

// Status is valid in every state.
func Status(s models.SessionState) StatusView {
	answers := s.Answers.Clone()
	return StatusView{
		Started:              s.Started,
		Completed:            s.Completed,
		CurrentQuestionIndex: s.CurrentQuestionIndex,
		Answers:              answers,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
