package managed

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type coordinatingObject struct{ value }

func (c *coordinatingObject) LoadObjects(Registry) error { return nil }

type fullObject struct{ value }

func (f *fullObject) LoadObjects(Registry) error                 { return nil }
func (f *fullObject) SetAsynchronousContext(AsynchronousContext) {}
func (f *fullObject) SetProcessAwareContext(ProcessAwareContext) {}
func (f *fullObject) Recycle(context.Context) error              { return nil }

func TestCapabilitiesOf(t *testing.T) {
	testCases := []struct {
		name   string
		object Object
		expect Capability
		text   string
	}{
		{name: "plain", object: Value(1), expect: 0, text: ""},
		{name: "coordinating", object: &coordinatingObject{}, expect: CapCoordinating, text: "coordinating"},
		{name: "all", object: &fullObject{}, expect: CapCoordinating | CapAsynchronous | CapProcessAware | CapRecyclable,
			text: "coordinating|asynchronous|processAware|recyclable"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			actual := CapabilitiesOf(tc.object)
			assert.Equal(t, tc.expect, actual)
			assert.Equal(t, tc.text, actual.String())
			caps := NewCapabilities(tc.object)
			_, ok := caps.Coordinating()
			assert.Equal(t, actual.Has(CapCoordinating), ok)
			_, ok = caps.Asynchronous()
			assert.Equal(t, actual.Has(CapAsynchronous), ok)
			_, ok = caps.ProcessAware()
			assert.Equal(t, actual.Has(CapProcessAware), ok)
			_, ok = caps.Recyclable()
			assert.Equal(t, actual.Has(CapRecyclable), ok)
		})
	}
}

type recordingUser struct {
	object Object
	err    error
}

func (r *recordingUser) SetObject(object Object) { r.object = object }
func (r *recordingUser) SetFailure(err error)    { r.err = err }

func TestValueSource(t *testing.T) {
	counter := 0
	source := ValueSource(func() (interface{}, error) {
		counter++
		if counter > 1 {
			return nil, errors.New("SOURCE_FAILURE")
		}
		return counter, nil
	})
	assert.NoError(t, source.Start(nil))

	user := &recordingUser{}
	source.Source(context.Background(), user)
	v, err := user.object.Object()
	assert.NoError(t, err)
	assert.Equal(t, 1, v)

	user = &recordingUser{}
	source.Source(context.Background(), user)
	assert.Nil(t, user.object)
	assert.EqualError(t, user.err, "SOURCE_FAILURE")
	source.Stop()
}
