package gate

import "fmt"

// ValidationError reports an invalid evaluation input. Surfaced before any
// store write happens.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error [field=%s]: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// TransitionError reports a follow-on action attempted against a log that
// does not permit it, such as acknowledging anything but a level-2 gate.
type TransitionError struct {
	LogID    string
	Decision string
	Reason   string
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid transition [log=%s]: decision %q with reason %q is not acknowledgeable", e.LogID, e.Decision, e.Reason)
}

// NewTransitionError creates a new TransitionError.
func NewTransitionError(logID, decision, reason string) *TransitionError {
	return &TransitionError{LogID: logID, Decision: decision, Reason: reason}
}
