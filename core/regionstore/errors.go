package regionstore

import (
	"fmt"

	"region-sync/core/region"

	"go.uber.org/multierr"
)

// Operation names used in failures.
const (
	OpWrite  = "write"
	OpDelete = "delete"
)

// Failure is one failed operation of a batch.
type Failure struct {
	Location region.Location
	Op       string
	Err      error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s %s: %v", f.Op, f.Location, f.Err)
}

func (f Failure) Unwrap() error {
	return f.Err
}

// StorageError is returned by batch calls when at least one operation failed.
// Failures are kept in completion order. The other operations of the batch
// were applied and are not rolled back.
type StorageError struct {
	Failures []Failure
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage batch failed: %d operation(s) failed, last: %v", len(e.Failures), e.last())
}

// Unwrap returns the cause of the last failure observed.
func (e *StorageError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1].Err
}

// Errors returns every failure as an error.
func (e *StorageError) Errors() []error {
	var combined error
	for _, f := range e.Failures {
		combined = multierr.Append(combined, f)
	}
	return multierr.Errors(combined)
}

func (e *StorageError) last() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[len(e.Failures)-1]
}
