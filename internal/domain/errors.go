package domain

import "errors"

// Error kinds. Every error returned by the app layer unwraps to one of these.
var (
	ErrValidation  = errors.New("validation error")
	ErrNotFound    = errors.New("not found")
	ErrConflict    = errors.New("conflict")
	ErrUpstream    = errors.New("upstream error")
	ErrPersistence = errors.New("persistence error")
)

var (
	// ErrQuestionNotFound is returned when a question ID does not resolve within a session.
	ErrQuestionNotFound = kindError(ErrNotFound, "Question not found")
	// ErrSessionNotIngested is returned when questions are requested before ingestion ran.
	ErrSessionNotIngested = kindError(ErrNotFound, "no questions ingested for session")
	// ErrDuplicateSubmission is returned under the reject policy for a repeated answer.
	ErrDuplicateSubmission = kindError(ErrConflict, "answer already submitted for this question")
)

type kindErr struct {
	kind error
	msg  string
}

func (e *kindErr) Error() string { return e.msg }
func (e *kindErr) Unwrap() error { return e.kind }

func kindError(kind error, msg string) error {
	return &kindErr{kind: kind, msg: msg}
}

// Validation builds a validation error with a caller-facing message.
func Validation(msg string) error {
	return kindError(ErrValidation, msg)
}

// Upstream wraps a message from the trivia source.
func Upstream(msg string) error {
	return kindError(ErrUpstream, msg)
}
