package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios
var (
	// Grammar errors (strict mode only)
	ErrUnknownCase   = errors.New("unknown grammatical case")
	ErrUnknownGender = errors.New("unknown grammatical gender")

	// Vocabulary errors
	ErrNoNouns      = errors.New("noun list is empty")
	ErrNoStems      = errors.New("possessive stem list is empty")
	ErrNoVocabulary = errors.New("vocabulary list is empty")

	// Database errors
	ErrDatabaseConnection = errors.New("database connection failed")
	ErrDatabaseQuery      = errors.New("database query failed")
	ErrRecordNotFound     = errors.New("record not found")

	// Assistant (language model) errors
	ErrAssistantConnection = errors.New("assistant connection failed")
	ErrAssistantTimeout    = errors.New("assistant request timeout")
	ErrAssistantResponse   = errors.New("assistant returned an unusable response")

	// Session errors
	ErrSessionNotFound = errors.New("quiz session not found")

	// Validation errors
	ErrInvalidInput    = errors.New("invalid input")
	ErrMissingRequired = errors.New("missing required field")
)

// DatabaseError represents a database operation error with context
type DatabaseError struct {
	Op    string // Operation that failed (e.g., "insert", "update", "query")
	Table string // Table involved
	Err   error  // Underlying error
}

func (e *DatabaseError) Error() string {
	return fmt.Sprintf("database %s operation on %s: %v", e.Op, e.Table, e.Err)
}

func (e *DatabaseError) Unwrap() error {
	return e.Err
}

// NewDatabaseError creates a new database error
func NewDatabaseError(op, table string, err error) error {
	return &DatabaseError{
		Op:    op,
		Table: table,
		Err:   err,
	}
}

// AssistantError represents a failed language model call
type AssistantError struct {
	Model      string
	Operation  string
	StatusCode int
	Message    string
	Err        error
}

func (e *AssistantError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("assistant %s failed for model %s (status %d): %s",
			e.Operation, e.Model, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("assistant %s failed for model %s: %v",
		e.Operation, e.Model, e.Err)
}

func (e *AssistantError) Unwrap() error {
	return e.Err
}

// ValidationError represents input validation errors
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
	Err     error // Sentinel the failure maps to, if any
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed for %s (value: %v): %s",
			e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("validation failed for %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	if e.Err == nil {
		return ErrInvalidInput
	}
	return e.Err
}

// Helper functions for common error patterns

// IsRetryable determines if an error should be retried
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, ErrAssistantTimeout) ||
		errors.Is(err, ErrAssistantConnection) ||
		errors.Is(err, ErrDatabaseConnection) {
		return true
	}

	// Server side failures of the model host are worth another try
	var ae *AssistantError
	if errors.As(err, &ae) {
		return ae.StatusCode >= 500
	}
	return false
}

// IsNotFound checks if error indicates a missing resource
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound) ||
		errors.Is(err, ErrSessionNotFound)
}

// IsValidation reports whether err came from input validation
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidInput)
}

// WrapWithContext adds context to an error
func WrapWithContext(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf(format+": %w", append(args, err)...)
}
