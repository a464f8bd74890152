package core

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for invalid parameters: bad label sets,
	// non-positive amounts, malformed perturbation intervals, unknown modes.
	ErrConfiguration = errors.New("configuration error")
	ErrCancelled     = errors.New("context cancelled")
)

// UnknownKeyError is returned when an urn-type or outcome label outside
// the registered domain is used.
type UnknownKeyError struct {
	Role string
	Kind string // "urn" or "outcome"
	Key  interface{}
}

func (e *UnknownKeyError) Error() string {
	if e.Role == "" {
		return fmt.Sprintf("unknown %s key: %v", e.Kind, e.Key)
	}
	return fmt.Sprintf("%s: unknown %s key: %v", e.Role, e.Kind, e.Key)
}

// InvariantError reports an urn whose normalized weights do not form a
// probability distribution. The run must abort when it is returned.
type InvariantError struct {
	Role    string
	Urn     interface{}
	Weights []float64
	Sum     float64
}

func (e *InvariantError) Error() string {
	return fmt.Sprintf("%s: urn %v: sampling weights sum to %v, weights %v", e.Role, e.Urn, e.Sum, e.Weights)
}

func configError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrConfiguration, fmt.Sprintf(format, args...))
}
