// Package services implements the business operations behind the HTTP API:
// workflow lifecycle, template instantiation, and execution control.
package services

import (
	"errors"
	"fmt"
	"strings"
)

// Business logic errors indicating client mistakes (4xx responses).
var (
	ErrInvalidRequest    = errors.New("invalid request")
	ErrInvalidModule     = errors.New("invalid module context")
	ErrNameRequired      = errors.New("workflow name is required")
	ErrWorkflowNil       = errors.New("workflow cannot be nil")
	ErrAlreadyActive     = errors.New("workflow is already active")
	ErrAlreadyInactive   = errors.New("workflow is already inactive")
	ErrExecutionFinished = errors.New("execution already finished")
)

// ActivationError carries the validation messages that block activation.
type ActivationError struct {
	Messages []string
}

func (e *ActivationError) Error() string {
	return fmt.Sprintf("workflow cannot be activated: %s", strings.Join(e.Messages, "; "))
}

// IsActivationError checks whether err is an activation rejection.
func IsActivationError(err error) bool {
	var activationErr *ActivationError

	return errors.As(err, &activationErr)
}

// IsValidationError checks if an error should map to HTTP 400.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest) ||
		errors.Is(err, ErrInvalidModule) ||
		errors.Is(err, ErrNameRequired) ||
		errors.Is(err, ErrWorkflowNil) ||
		IsActivationError(err)
}

// IsConflictError checks if an error should map to HTTP 409.
func IsConflictError(err error) bool {
	return errors.Is(err, ErrAlreadyActive) ||
		errors.Is(err, ErrAlreadyInactive) ||
		errors.Is(err, ErrExecutionFinished)
}
