package dao

// Parameter names understood by the process table
const (
	ParameterState    = "State"
	ParameterFunction = "Function"
)

// Parameter represents a list filter, Value is a string or []string
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a filter matching any of values
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
