// Package apperr defines the error taxonomy shared by all core components.
// Handlers map each type to a distinct HTTP status.
package apperr

import (
	"fmt"
	"strings"

	"pharma-elog-backend/internal/model"
)

// ValidationError reports malformed or missing input. Client-correctable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Validation builds a ValidationError for a named field.
func Validation(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// AuthenticationError reports bad credentials or an inactive account, at
// login or at signature time.
type AuthenticationError struct {
	Message string
}

func (e *AuthenticationError) Error() string {
	return e.Message
}

// AuthorizationError reports a valid actor lacking a required role.
type AuthorizationError struct {
	Required []model.Role
}

func (e *AuthorizationError) Error() string {
	if len(e.Required) == 0 {
		return "operation not permitted"
	}
	names := make([]string, len(e.Required))
	for i, r := range e.Required {
		names[i] = string(r)
	}
	return fmt.Sprintf("requires role %s", strings.Join(names, " or "))
}

// NotFoundError reports a referenced entity id that does not exist.
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// ConflictError reports a state precondition failure: an invalid lifecycle
// transition or a concurrent update that took the precondition away.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// PersistenceError wraps a store failure. The triggering operation is never
// partially applied: entity mutation and audit append commit together or the
// whole operation fails.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
