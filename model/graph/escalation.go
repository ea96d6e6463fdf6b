package graph

import (
	"errors"
	"reflect"
)

// Escalation maps a failure type to the function handling it.
//
// Either Type or Target is set: Type matches by the dynamic error type (an
// interface type matches every error implementing it), Target matches by
// errors.Is.
type Escalation struct {
	Type     reflect.Type `json:"-" yaml:"-"`
	Target   error        `json:"-" yaml:"-"`
	Function string       `json:"function" yaml:"function"`
}

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// EscalationOf returns an escalation handled by function for errors of type T
func EscalationOf[T error](function string) *Escalation {
	return &Escalation{Type: reflect.TypeOf((*T)(nil)).Elem(), Function: function}
}

// EscalationFor returns an escalation handled by function for target errors
func EscalationFor(target error, function string) *Escalation {
	return &Escalation{Target: target, Function: function}
}

// IsCatchAll returns true if the escalation handles every error
func (e *Escalation) IsCatchAll() bool {
	return e.Type == errorType
}

func (e *Escalation) isInterface() bool {
	return e.Type != nil && e.Type.Kind() == reflect.Interface
}

// MatchEscalation returns the escalation handling err.  The failure's own type
// is matched first, then its cause chain, then interface types it implements,
// each pass in declaration order.
func MatchEscalation(escalations []*Escalation, err error) *Escalation {
	if err == nil || len(escalations) == 0 {
		return nil
	}
	errType := reflect.TypeOf(err)
	for _, candidate := range escalations {
		if candidate.Target != nil && reflect.TypeOf(candidate.Target).Comparable() && candidate.Target == err {
			return candidate
		}
		if candidate.Type != nil && !candidate.isInterface() && candidate.Type == errType {
			return candidate
		}
	}
	chain := causes(err)
	for _, candidate := range escalations {
		if candidate.Target != nil && errors.Is(err, candidate.Target) {
			return candidate
		}
		if candidate.Type == nil || candidate.isInterface() {
			continue
		}
		for _, cause := range chain[1:] {
			if reflect.TypeOf(cause) == candidate.Type {
				return candidate
			}
		}
	}
	for _, candidate := range escalations {
		if !candidate.isInterface() {
			continue
		}
		for _, cause := range chain {
			if reflect.TypeOf(cause).Implements(candidate.Type) {
				return candidate
			}
		}
	}
	return nil
}

// causes returns err followed by its wrapped errors, breadth first
func causes(err error) []error {
	ret := []error{err}
	for i := 0; i < len(ret); i++ {
		switch actual := ret[i].(type) {
		case interface{ Unwrap() error }:
			if cause := actual.Unwrap(); cause != nil {
				ret = append(ret, cause)
			}
		case interface{ Unwrap() []error }:
			for _, cause := range actual.Unwrap() {
				if cause != nil {
					ret = append(ret, cause)
				}
			}
		}
	}
	return ret
}
