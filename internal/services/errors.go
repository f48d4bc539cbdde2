package services

import "errors"

// Expected end-of-sequence signals. Callers branch on these; they are not faults.
var (
	ErrQuizComplete = errors.New("quiz complete")
	ErrNoQuestions  = errors.New("no question available")
)

type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string { return "Validation error" }

type ConflictError struct{ Message string }

func (e *ConflictError) Error() string { return e.Message }

type NotFoundError struct{ Message string }

func (e *NotFoundError) Error() string { return e.Message }

type UnauthorizedError struct{ Message string }

func (e *UnauthorizedError) Error() string { return e.Message }

type ForbiddenError struct{ Message string }

func (e *ForbiddenError) Error() string { return e.Message }

// IntegrityError reports stored data that breaks an invariant the quiz
// depends on, such as a question without a correct answer.
type IntegrityError struct {
	Message string
	Err     error
}

func (e *IntegrityError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *IntegrityError) Unwrap() error { return e.Err }
