package feature

import "fmt"

// SchemaMismatchError is returned when an encoded row cannot be reconciled
// with the training schema, typically because the schema itself is
// malformed.
type SchemaMismatchError struct {
	Column string
	Reason string
}

func (e *SchemaMismatchError) Error() string {
	if e.Column == "" {
		return "schema mismatch: " + e.Reason
	}
	return fmt.Sprintf("schema mismatch on column %q: %s", e.Column, e.Reason)
}
