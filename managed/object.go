package managed

import (
	"context"
	"time"
)

// Object represents a managed object instance
type Object interface {
	// Object returns the value handed to functions
	Object() (interface{}, error)
}

// Registry gives a Coordinating object access to its dependencies, in the
// order they were declared.
type Registry interface {
	Object(index int) (interface{}, error)
	Len() int
}

// Coordinating objects are loaded with their dependencies before first use
type Coordinating interface {
	Object
	LoadObjects(registry Registry) error
}

// Operation represents an asynchronous operation step
type Operation func() error

// AsynchronousContext lets an object flag a pending operation
type AsynchronousContext interface {
	// Start marks an operation as pending and runs op (when not nil). Functions
	// depending on the object wait until Complete or the timeout.
	Start(op Operation)
	// Complete runs op (when not nil) and clears the pending operation.
	Complete(op Operation)
}

// Asynchronous objects receive an AsynchronousContext once sourced
type Asynchronous interface {
	Object
	SetAsynchronousContext(ctx AsynchronousContext)
}

// ProcessAwareContext runs operations under the owning process' lock
type ProcessAwareContext interface {
	Run(op func() (interface{}, error)) (interface{}, error)
}

// ProcessAware objects receive the context of the process they are bound to
type ProcessAware interface {
	Object
	SetProcessAwareContext(ctx ProcessAwareContext)
}

// Recyclable objects are recycled when their scope ends
type Recyclable interface {
	Object
	Recycle(ctx context.Context) error
}

// User receives the result of sourcing
type User interface {
	SetObject(object Object)
	SetFailure(err error)
}

// FlowCallback is notified once an invoked process completes
type FlowCallback func(escalation error)

// ExecuteContext lets a started Source instigate new processes
type ExecuteContext interface {
	// InvokeProcess starts a process at the function configured for flow. The
	// supplied object, when not nil, is bound PROCESS-scoped into it.
	InvokeProcess(flow int, parameter interface{}, object Object, delay time.Duration, callback FlowCallback) error
}

// Source produces managed objects
type Source interface {
	// Start is called once when the floor opens
	Start(ctx ExecuteContext) error
	// Source delivers an object or a failure to user, synchronously or later
	Source(ctx context.Context, user User)
	// Stop is called once when the floor closes
	Stop()
}
