package backend

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var (
	// ErrRequestFailed matches every transport or backend failure.
	ErrRequestFailed = errors.New("request failed")
	// ErrInvalidInput is returned before any request is sent.
	ErrInvalidInput = errors.New("invalid input")
)

// Error describes a failed round trip. Transport errors have Status 0.
type Error struct {
	Op        string
	Method    string
	Path      string
	Status    int
	Message   string
	RequestID string
	Internal  error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("%s: %s %s: %v", e.Op, e.Method, e.Path, e.Internal)
	}
	if e.Message != "" {
		return fmt.Sprintf("%s: %s %s returned %d: %s", e.Op, e.Method, e.Path, e.Status, e.Message)
	}
	return fmt.Sprintf("%s: %s %s returned %d", e.Op, e.Method, e.Path, e.Status)
}

func (e *Error) Is(target error) bool {
	return target == ErrRequestFailed
}

func (e *Error) Unwrap() error {
	return e.Internal
}

type InputError struct {
	Op      string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func handleValidationError(op string, err error) error {
	var v validator.ValidationErrors
	if !errors.As(err, &v) || len(v) == 0 {
		return &InputError{Op: op, Message: err.Error()}
	}

	var message string
	switch v[0].ActualTag() {
	case "required":
		message = fmt.Sprintf("%s is required", v[0].Field())
	case "e164":
		message = fmt.Sprintf("%s must be an E.164 number such as +15551234567, got %q", v[0].Field(), v[0].Value())
	case "max":
		message = fmt.Sprintf("%s must be at most %s characters", v[0].Field(), v[0].Param())
	default:
		message = fmt.Sprintf("%s failed %s validation", v[0].Field(), v[0].ActualTag())
	}
	return &InputError{Op: op, Message: message}
}
