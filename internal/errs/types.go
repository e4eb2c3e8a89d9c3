package errs

import (
	"fmt"
	"strings"
)

type ErrorMessage struct {
	Message string
}

func (e *ErrorMessage) Error() string { return e.Message }

type NotFoundError struct {
	ErrorMessage
}

type AlreadyExistsError struct {
	ErrorMessage
}

type ValidationError struct {
	ErrorMessage
}

type ForbiddenError struct {
	ErrorMessage
}

// DatabaseError wraps a storage failure. Operation is one of create, read,
// update, delete.
type DatabaseError struct {
	ErrorMessage
	Operation string
	Err       error
}

func (e *DatabaseError) Unwrap() error { return e.Err }

// TemplateError collects every problem found in a template document.
// Each problem is prefixed with its path, e.g. "widgets[1].configOptions[0]".
type TemplateError struct {
	ErrorMessage
	TemplateID string
	Problems   []string
}

func NewNotFoundError(message string) *NotFoundError {
	return &NotFoundError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewAlreadyExistsError(message string) *AlreadyExistsError {
	return &AlreadyExistsError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewForbiddenError(message string) *ForbiddenError {
	return &ForbiddenError{
		ErrorMessage: ErrorMessage{Message: message},
	}
}

func NewDatabaseError(operation, message string, err error) *DatabaseError {
	return &DatabaseError{
		ErrorMessage: ErrorMessage{Message: message},
		Operation:    operation,
		Err:          err,
	}
}

func NewTemplateError(templateID string, problems []string) *TemplateError {
	msg := fmt.Sprintf("template %q is invalid", templateID)
	switch len(problems) {
	case 0:
	case 1:
		msg += ": " + problems[0]
	default:
		msg += fmt.Sprintf(" (%d problems): %s", len(problems), strings.Join(problems, "; "))
	}
	return &TemplateError{
		ErrorMessage: ErrorMessage{Message: msg},
		TemplateID:   templateID,
		Problems:     problems,
	}
}
