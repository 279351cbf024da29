package student

import (
	"fmt"
	"strings"
)

// UnknownCategoryError is returned when a categorical field holds a value
// outside its declared domain.
type UnknownCategoryError struct {
	Field  string
	Value  string
	Levels []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("%s: unknown category %q, expected one of [%s]",
		e.Field, e.Value, strings.Join(e.Levels, ", "))
}

// RangeError is returned when a numeric field is outside its bounds.
type RangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s: value %d out of range [%d, %d]", e.Field, e.Value, e.Min, e.Max)
}

// MissingFieldError is returned when a raw input map does not carry a field.
type MissingFieldError struct {
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s: field is required", e.Field)
}

// NumberError is returned when a numeric field value is not an integer.
type NumberError struct {
	Field string
	Value string
}

func (e *NumberError) Error() string {
	return fmt.Sprintf("%s: invalid integer %q", e.Field, e.Value)
}

// DuplicateFieldError is returned when more than one raw key resolves to
// the same field.
type DuplicateFieldError struct {
	Field string
	Keys  []string
}

func (e *DuplicateFieldError) Error() string {
	return fmt.Sprintf("%s: supplied more than once as [%s]", e.Field, strings.Join(e.Keys, ", "))
}
