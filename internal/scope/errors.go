package scope

import (
	"errors"
	"fmt"
)

var (
	// ErrNameConflict reports a name already used in a reachable scope.
	ErrNameConflict = errors.New("name conflict")
	// ErrInvalidType reports a statement added through the wrong entry point.
	ErrInvalidType = errors.New("invalid statement type")
)

// ConflictError carries the details of a fatal name conflict.
type ConflictError struct {
	Name  string
	Tag   Tag
	Scope ScopeID
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s has already been used in this scope (%s, scope %d)", e.Name, e.Tag, e.Scope)
}

func (e *ConflictError) Unwrap() error { return ErrNameConflict }
