// Package errors defines the error taxonomy of the preparation pipeline.
//
// Two categories of failure exist:
//   - SchemaError: a required field is missing, has the wrong kind, or the
//     data cannot be laid out the way a stage needs it.
//   - ComputeError: a statistic is undefined, e.g. every value of a column
//     is missing in the train partition.
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrSchema) { ... }
//
//	var se *errors.SchemaError
//	if errors.As(err, &se) { fmt.Println(se.Field) }
package errors

import (
	"errors"
	"fmt"
)

// Re-export standard library functions so callers only need this package.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Sentinel errors
var (
	// ErrSchema matches every SchemaError.
	ErrSchema = New("schema error")
	// ErrCompute matches every ComputeError.
	ErrCompute = New("compute error")
)

// SchemaError reports a field that is absent or has an unexpected shape.
type SchemaError struct {
	Field   string
	Message string
}

// NewSchemaError creates a SchemaError for field.
func NewSchemaError(field, format string, args ...any) *SchemaError {
	return &SchemaError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// MissingField creates a SchemaError for a required field that is absent.
func MissingField(field string) *SchemaError {
	return &SchemaError{Field: field, Message: "required field is missing"}
}

func (e *SchemaError) Error() string {
	if e.Field == "" {
		return "schema: " + e.Message
	}
	return fmt.Sprintf("schema: %s: %s", e.Field, e.Message)
}

// Is reports whether target is ErrSchema.
func (e *SchemaError) Is(target error) bool {
	return target == ErrSchema
}

// ComputeError reports a statistic that cannot be computed.
type ComputeError struct {
	Field     string
	Statistic string
	Message   string
}

// NewComputeError creates a ComputeError for the given field and statistic.
func NewComputeError(field, statistic, message string) *ComputeError {
	return &ComputeError{Field: field, Statistic: statistic, Message: message}
}

func (e *ComputeError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("compute %s: %s", e.Statistic, e.Message)
	}
	return fmt.Sprintf("compute %s of %s: %s", e.Statistic, e.Field, e.Message)
}

// Is reports whether target is ErrCompute.
func (e *ComputeError) Is(target error) bool {
	return target == ErrCompute
}

// WithField returns a copy of the error attributed to field. Statistics
// routines do not know which column they run on; callers attach it.
func (e *ComputeError) WithField(field string) *ComputeError {
	c := *e
	c.Field = field
	return &c
}
