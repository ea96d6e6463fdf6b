// Package function defines managed functions: stateless units of work that
// the kernel invokes with their resolved managed objects and a parameter.
package function

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/structology/conv"
)

// Callback receives the outcome of an invoked flow, escalation is nil when
// the flow completed normally.  A returned error escalates from the invoking
// function.
type Callback func(escalation error) error

// Context represents the view a function body has of its activation
type Context interface {
	context.Context

	// Parameter returns the activation parameter
	Parameter() interface{}

	// Object returns the value of the managed object declared at index
	Object(index int) (interface{}, error)

	// DoFlow instigates the flow declared at index once the body returns
	DoFlow(index int, parameter interface{}, callback Callback) error

	// ProcessID returns the owning process
	ProcessID() string

	// ThreadID returns the owning thread
	ThreadID() string
}

// Function represents a unit of work
type Function interface {
	// Execute runs the body; the returned value becomes the parameter of the
	// next function, an error escalates.
	Execute(ctx Context) (interface{}, error)
}

// Func adapts a plain function to Function
type Func func(ctx Context) (interface{}, error)

// Execute calls f
func (f Func) Execute(ctx Context) (interface{}, error) { return f(ctx) }

// ObjectAs returns the object at index asserted to T
func ObjectAs[T any](ctx Context, index int) (T, error) {
	var zero T
	value, err := ctx.Object(index)
	if err != nil {
		return zero, err
	}
	ret, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("object %v: expected %T, but had %T", index, zero, value)
	}
	return ret, nil
}

var (
	converter = newConverter()
	// converter caches struct layouts in plain maps
	converterMux sync.Mutex
)

func newConverter() *conv.Converter {
	options := conv.DefaultOptions()
	options.IgnoreUnmapped = true
	return conv.NewConverter(options)
}

// Convert copies value into dest (a pointer), converting between compatible
// representations such as maps and structs.
func Convert(value interface{}, dest interface{}) error {
	if value == nil {
		return nil
	}
	converterMux.Lock()
	err := converter.Convert(value, dest)
	converterMux.Unlock()
	if err != nil {
		return fmt.Errorf("failed to convert %T to %T: %w", value, dest, err)
	}
	return nil
}

// ConvertTo returns value converted to a new value of type t; a value that is
// nil or already of type t is returned as is.
func ConvertTo(value interface{}, t reflect.Type) (interface{}, error) {
	if value == nil || t == nil || reflect.TypeOf(value) == t {
		return value, nil
	}
	if t.Kind() == reflect.Ptr {
		dest := reflect.New(t.Elem())
		if err := Convert(value, dest.Interface()); err != nil {
			return nil, err
		}
		return dest.Interface(), nil
	}
	dest := reflect.New(t)
	if err := Convert(value, dest.Interface()); err != nil {
		return nil, err
	}
	return dest.Elem().Interface(), nil
}

// ParameterAs converts the activation parameter into dest
func ParameterAs(ctx Context, dest interface{}) error {
	return Convert(ctx.Parameter(), dest)
}
