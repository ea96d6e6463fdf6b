package managed

import "context"

// SourceFunc adapts a function to Source.  Start and Stop are no-ops.
type SourceFunc func(ctx context.Context) (Object, error)

// Start is a no-op
func (f SourceFunc) Start(ExecuteContext) error { return nil }

// Source calls the function and hands the result to user
func (f SourceFunc) Source(ctx context.Context, user User) {
	object, err := f(ctx)
	if err != nil {
		user.SetFailure(err)
		return
	}
	user.SetObject(object)
}

// Stop is a no-op
func (f SourceFunc) Stop() {}

type value struct {
	v interface{}
}

func (v *value) Object() (interface{}, error) { return v.v, nil }

// Value wraps v as an Object
func Value(v interface{}) Object {
	return &value{v: v}
}

// ValueSource returns a Source creating a fresh Object per call from fn
func ValueSource(fn func() (interface{}, error)) Source {
	return SourceFunc(func(context.Context) (Object, error) {
		v, err := fn()
		if err != nil {
			return nil, err
		}
		return Value(v), nil
	})
}
