package common

import (
	"errors"
	"fmt"
)

// AppError represents application-specific errors
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Pipeline error kinds. Each failed document surfaces exactly one of these so
// callers can tell a bad scan from a bad engine response from a bad schema.
var (
	ErrAcquisition    = errors.New("text acquisition failed")
	ErrEmptyContent   = errors.New("no extractable text")
	ErrInterpretation = errors.New("interpretation engine failed")
	ErrSchema         = errors.New("candidate does not satisfy invoice schema")
	ErrInvalidInput   = errors.New("invalid input")
)

// Error constructors
func NewAppError(code, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// AcquisitionError wraps err as a fatal text-acquisition failure.
func AcquisitionError(message string, err error) error {
	if err == nil {
		err = ErrAcquisition
	} else if !errors.Is(err, ErrAcquisition) {
		err = fmt.Errorf("%w: %w", ErrAcquisition, err)
	}
	return NewAppError("ACQUISITION_ERROR", message, err)
}

// EmptyContentError marks a document with no extractable text. It is an
// acquisition failure, so IsAcquisitionError also reports true for it.
func EmptyContentError(message string) error {
	return NewAppError("EMPTY_CONTENT", message, fmt.Errorf("%w: %w", ErrAcquisition, ErrEmptyContent))
}

// InterpretationError wraps transport or decode failures from the engine.
func InterpretationError(message string, err error) error {
	if err == nil {
		err = ErrInterpretation
	} else if !errors.Is(err, ErrInterpretation) {
		err = fmt.Errorf("%w: %w", ErrInterpretation, err)
	}
	return NewAppError("INTERPRETATION_ERROR", message, err)
}

// SchemaError marks engine output that fails the invoice schema. The message
// names the offending field.
func SchemaError(message string, err error) error {
	if err == nil {
		err = ErrSchema
	} else if !errors.Is(err, ErrSchema) {
		err = fmt.Errorf("%w: %w", ErrSchema, err)
	}
	return NewAppError("SCHEMA_ERROR", message, err)
}

func IsAcquisitionError(err error) bool { return errors.Is(err, ErrAcquisition) }
func IsEmptyContent(err error) bool     { return errors.Is(err, ErrEmptyContent) }
func IsInterpretation(err error) bool   { return errors.Is(err, ErrInterpretation) }
func IsSchemaError(err error) bool      { return errors.Is(err, ErrSchema) }

func WrapError(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}
