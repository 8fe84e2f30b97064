package domain

import (
	"fmt"
	"strings"
)

// SourceError marks a transient failure of an external data source (network
// error, timeout, non-success status, unusable payload). It is caught at the
// source boundary and triggers that source's fallback; it never surfaces past
// the assembler.
type SourceError struct {
	Source string // "weather" or "soil"
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("%s source: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() error { return e.Err }

// NewSourceError wraps err as a transient failure of the named source.
func NewSourceError(source string, err error) *SourceError {
	return &SourceError{Source: source, Err: err}
}

// SchemaError reports feature-vector fields that are missing or out of range.
// It is raised only by vector validation inside the assembler and converted
// one level up into full scenario substitution.
type SchemaError struct {
	Fields []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("feature vector schema violation: %s", strings.Join(e.Fields, ", "))
}
