package services

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/Sebastian-Gasior/AI-Recruiting-Demo/internal/models"
)

type ErrorCode string

const (
	ErrorInvalid         ErrorCode = "invalid"
	ErrorUnprocessable   ErrorCode = "unprocessable"
	ErrorNotFound        ErrorCode = "not_found"
	ErrorConflict        ErrorCode = "conflict"
	ErrorUnavailable     ErrorCode = "unavailable"
	ErrorBadGateway      ErrorCode = "bad_gateway"
	ErrorTooManyRequests ErrorCode = "too_many_requests"
	ErrorInternal        ErrorCode = "internal"
)

type ServiceError struct {
	Code    ErrorCode
	Message string
}

func (e *ServiceError) Error() string { return e.Message }

func NewInvalidError(msg string) error     { return &ServiceError{Code: ErrorInvalid, Message: msg} }
func NewNotFoundError(msg string) error    { return &ServiceError{Code: ErrorNotFound, Message: msg} }
func NewUnavailableError(msg string) error { return &ServiceError{Code: ErrorUnavailable, Message: msg} }
func NewBadGatewayError(msg string) error  { return &ServiceError{Code: ErrorBadGateway, Message: msg} }

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

var (
	ErrConfiguration     = errors.New("configuration error")
	ErrInvalidAnswer     = errors.New("invalid answer")
	ErrUnknownQuestion   = errors.New("unknown question")
	ErrIncompleteAnswers = errors.New("incomplete answers")
	ErrMissingProfile    = errors.New("missing job profile")
	ErrNotInProgress     = errors.New("questionnaire not in progress")
)

// ConfigurationError reports a malformed catalog. It is fatal at startup.
type ConfigurationError struct {
	Source   string
	Problems []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Source, strings.Join(e.Problems, "; "))
}

func (e *ConfigurationError) Unwrap() error { return ErrConfiguration }

type InvalidAnswerError struct {
	QuestionID int
	Value      int
}

func (e *InvalidAnswerError) Error() string {
	return fmt.Sprintf("answer %d for question %d is outside 1..%d", e.Value, e.QuestionID, LikertPoints)
}

func (e *InvalidAnswerError) Unwrap() error { return ErrInvalidAnswer }

type UnknownQuestionError struct {
	QuestionID int
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("question %d does not exist", e.QuestionID)
}

func (e *UnknownQuestionError) Unwrap() error { return ErrUnknownQuestion }

// IncompleteAnswersError lists the question ids without an answer.
type IncompleteAnswersError struct {
	Missing []int
}

func (e *IncompleteAnswersError) Error() string {
	ids := make([]string, 0, len(e.Missing))
	for _, id := range e.Missing {
		ids = append(ids, strconv.Itoa(id))
	}
	return fmt.Sprintf("%d questions unanswered: %s", len(e.Missing), strings.Join(ids, ","))
}

func (e *IncompleteAnswersError) Unwrap() error { return ErrIncompleteAnswers }

type MissingProfileError struct {
	PositionID string
	Dimensions []models.Dimension
	// NoWeights is set when every dimension weight is zero or negative.
	NoWeights bool
}

func (e *MissingProfileError) Error() string {
	if e.NoWeights {
		return fmt.Sprintf("position %q has no positive dimension weight", e.PositionID)
	}
	if len(e.Dimensions) == 0 {
		return fmt.Sprintf("position %q has no personality profile", e.PositionID)
	}
	dims := make([]string, 0, len(e.Dimensions))
	for _, d := range e.Dimensions {
		dims = append(dims, string(d))
	}
	sort.Strings(dims)
	return fmt.Sprintf("position %q lacks an ideal score for %s", e.PositionID, strings.Join(dims, ","))
}

func (e *MissingProfileError) Unwrap() error { return ErrMissingProfile }

type NotInProgressError struct {
	Op     string
	Status models.Status
}

func (e *NotInProgressError) Error() string {
	return fmt.Sprintf("%s requires an in-progress questionnaire (status %s)", e.Op, e.Status)
}

func (e *NotInProgressError) Unwrap() error { return ErrNotInProgress }

// CodeOf classifies err for transport layers.
func CodeOf(err error) ErrorCode {
	if se, ok := AsServiceError(err); ok {
		return se.Code
	}
	switch {
	case errors.Is(err, ErrInvalidAnswer), errors.Is(err, ErrUnknownQuestion), errors.Is(err, ErrSessionRequired):
		return ErrorInvalid
	case errors.Is(err, ErrIncompleteAnswers), errors.Is(err, ErrMissingProfile):
		return ErrorUnprocessable
	case errors.Is(err, ErrNotInProgress):
		return ErrorConflict
	}
	return ErrorInternal
}
