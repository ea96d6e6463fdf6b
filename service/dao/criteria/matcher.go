// Package criteria matches list parameters against record fields.
package criteria

import (
	"github.com/viant/floor/service/dao"
)

// Fields exposes record fields by parameter name
type Fields func(name string) (string, bool)

// Match returns true when every parameter matches its field.  A parameter
// value is either a string or a []string of alternatives; parameters naming
// an unknown field are ignored.
func Match(fields Fields, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		actual, ok := fields(parameter.Name)
		if !ok {
			continue
		}
		if !matches(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matches(actual string, expected interface{}) bool {
	switch candidate := expected.(type) {
	case string:
		return actual == candidate
	case []string:
		for _, value := range candidate {
			if actual == value {
				return true
			}
		}
		return false
	}
	return true
}
