package collection

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySelection is returned when a transfer is requested with nothing selected.
	ErrEmptySelection = errors.New("no images selected")
	// ErrStableIDLength is returned when stable ids are not parallel to references.
	ErrStableIDLength = errors.New("stable ids must have the same length as references")
	// ErrNoProduct is returned by controller operations before a product is loaded.
	ErrNoProduct = errors.New("no product loaded")
	// ErrPersist marks failures of the persistence collaborator.
	ErrPersist = errors.New("persist transfer failed")
)

// PersistError wraps a persistence failure. The controller state is unchanged
// when it is returned.
type PersistError struct {
	ProductKey string
	Err        error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist transfer for %s: %v", e.ProductKey, e.Err)
}

func (e *PersistError) Unwrap() []error {
	return []error{ErrPersist, e.Err}
}
