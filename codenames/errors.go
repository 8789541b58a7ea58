package codenames

import (
	"errors"
	"fmt"
)

// ErrNotFound is wrapped by a DataAccessError when a key isn't in a store.
var ErrNotFound = errors.New("codenames: not found")

// ConfigError is returned when scoring or sequencing parameters are missing or
// out of range. It's always returned before any computation happens.
type ConfigError struct {
	Key    string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("codenames: bad parameter %q: %s", e.Key, e.Reason)
}

// DataAccessError is returned when a distance or embedding lookup fails. A
// single DataAccessError aborts the whole call it happened in.
type DataAccessError struct {
	// A and B are the IDs being looked up. B is empty for single-item lookups.
	A, B string
	Err  error
}

func (e *DataAccessError) Error() string {
	if e.B == "" {
		return fmt.Sprintf("codenames: lookup of %q failed: %v", e.A, e.Err)
	}
	return fmt.Sprintf("codenames: lookup of (%q, %q) failed: %v", e.A, e.B, e.Err)
}

func (e *DataAccessError) Unwrap() error {
	return e.Err
}

// InvalidBoardError is returned when a board is malformed.
type InvalidBoardError struct {
	Reason string
}

func (e *InvalidBoardError) Error() string {
	return "codenames: invalid board: " + e.Reason
}

// MissingPair returns a DataAccessError for a pair that isn't in a store.
func MissingPair(a, b string) error {
	return &DataAccessError{A: a, B: b, Err: ErrNotFound}
}

// MissingItem returns a DataAccessError for an item that isn't in a store.
func MissingItem(id string) error {
	return &DataAccessError{A: id, Err: ErrNotFound}
}
