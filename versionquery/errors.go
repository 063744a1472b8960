// Package versionquery - error values returned by query parsing and validation.
package versionquery

import (
	"errors"
	"fmt"
)

// Common errors returned by query construction.
var (
	// ErrMalformedQuery is returned when an input string does not match the
	// query grammar at all.
	ErrMalformedQuery = errors.New("malformed version search query")

	// ErrInvalidQueryFields is returned when a query names a field value
	// that can never be satisfied, such as a selection symbol on the branch
	// field.
	ErrInvalidQueryFields = errors.New("invalid version search query fields")
)

// MalformedQueryError reports an input string rejected by the query grammar.
// The offending input is carried so callers can show it to the user.
type MalformedQueryError struct {
	Input string
}

func (e *MalformedQueryError) Error() string {
	return fmt.Sprintf("invalid version search query: %q", e.Input)
}

// Is reports whether target is ErrMalformedQuery.
func (e *MalformedQueryError) Is(target error) bool {
	return target == ErrMalformedQuery
}

// InvalidQueryFieldsError reports a grammatical query whose field values
// cannot be satisfied.
type InvalidQueryFieldsError struct {
	Detail string
}

func (e *InvalidQueryFieldsError) Error() string {
	return e.Detail
}

// Is reports whether target is ErrInvalidQueryFields.
func (e *InvalidQueryFieldsError) Is(target error) bool {
	return target == ErrInvalidQueryFields
}
