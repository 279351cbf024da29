package artifact

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by a Source when the named artifact does not exist.
var ErrNotFound = errors.New("artifact not found")

// LoadError reports a missing, unreadable or inconsistent artifact. It is
// fatal: no prediction can be served without the required artifacts.
type LoadError struct {
	Artifact string
	Source   string
	Err      error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading artifact %s from %s: %v", e.Artifact, e.Source, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}
