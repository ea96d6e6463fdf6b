package idgen

import "github.com/google/uuid"

// NewFunc returns a new globally unique identifier.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new identifier.
func New() string { return NewFunc() }

// Prefixed returns a new identifier qualified with prefix, e.g. "thread/<uuid>".
func Prefixed(prefix string) string {
	if prefix == "" {
		return New()
	}
	return prefix + "/" + New()
}
