package graph

import "fmt"

// Scope represents the lifetime a managed object is bound to
type Scope string

const (
	// ScopeFunction binds a fresh object per function activation
	ScopeFunction Scope = "function"
	// ScopeThread shares one object per thread state
	ScopeThread Scope = "thread"
	// ScopeProcess shares one object per process state
	ScopeProcess Scope = "process"
)

// IsValid returns true for a known scope
func (s Scope) IsValid() bool {
	switch s {
	case ScopeFunction, ScopeThread, ScopeProcess:
		return true
	}
	return false
}

// ParseScope parses scope text, empty text defaults to process scope
func ParseScope(text string) (Scope, error) {
	if text == "" {
		return ScopeProcess, nil
	}
	ret := Scope(text)
	if !ret.IsValid() {
		return "", fmt.Errorf("invalid scope: %q", text)
	}
	return ret, nil
}
