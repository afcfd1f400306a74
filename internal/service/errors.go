package service

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	// ErrNotFound is returned when a referenced recipe, user, ingredient,
	// tag, favorite, cart entry or follow edge does not exist.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller is not the owner of the
	// resource being mutated.
	ErrForbidden = errors.New("forbidden")
)

// ValidationError is a field-keyed validation failure. Handlers render it as
// an HTTP 400 body of the form {"<field>": "<message>"}.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AsValidationError unwraps err into a *ValidationError if it is one.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// duplicateAsValidation maps a unique-index violation onto the same
// field-keyed error the pre-insert existence check produces. Two concurrent
// inserts can both pass that check; the composite unique index catches the
// loser and the caller still sees a 400, not a 500.
func duplicateAsValidation(err error, field, message string) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return NewValidationError(field, message)
	}
	return err
}
