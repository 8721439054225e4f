package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNoCounterRow  = errors.New("no counter row")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StoreError wraps a failure from the durable store. Connection refusals,
// timeouts and query failures all travel through it uniformly: the caller
// only decides between "store answered" and "store unavailable".
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store: %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError tags err with the store operation that produced it.
func NewStoreError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StoreError{Op: op, Err: err}
}

// IsStoreError reports whether err originated in the durable store.
func IsStoreError(err error) bool {
	var se *StoreError
	return errors.As(err, &se)
}
