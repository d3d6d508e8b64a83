package schema

import (
	"errors"
	"fmt"
)

var (
	ErrNoFields      = errors.New("no field declarations")
	ErrUnknownSchema = errors.New("unknown schema")
)

// LayoutError reports a field layout that violates the schema invariants.
type LayoutError struct {
	Schema string
	Field  string
	Msg    string
}

func (e *LayoutError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("schema %s: %s", e.Schema, e.Msg)
	}
	return fmt.Sprintf("schema %s: field %s: %s", e.Schema, e.Field, e.Msg)
}

// DocumentError reports a persisted schema document that failed validation.
type DocumentError struct {
	Schema string
	Msg    string
	Err    error
}

func (e *DocumentError) Error() string {
	msg := "schema document"
	if e.Schema != "" {
		msg += " " + e.Schema
	}
	msg += ": " + e.Msg
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}
