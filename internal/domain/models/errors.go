package models

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks malformed or incomplete input.
	ErrValidation = errors.New("validation error")
	// ErrInsufficientStock indicates a decrement larger than the stock on hand.
	ErrInsufficientStock = errors.New("insufficient stock")
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrStockConflict indicates the snapshot changed between read and write.
	ErrStockConflict = errors.New("stock was modified concurrently")
)

// ValidationError describes which input field was rejected.
type ValidationError struct {
	Field   string
	Message string
}

// NewValidationError builds a ValidationError for the given field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
