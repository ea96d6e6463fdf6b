package execution

import (
	"time"

	"github.com/viant/floor/managed"
	"github.com/viant/floor/model/graph"
)

// ContainerState represents the sourcing state of a managed object
type ContainerState int

const (
	// StateUnsourced is the initial state
	StateUnsourced ContainerState = iota
	// StateSourcing waits for the source to deliver
	StateSourcing
	// StateSourced holds a coordinating object not yet loaded
	StateSourced
	// StateLoading runs LoadObjects of a coordinating object
	StateLoading
	// StateReady holds a usable object
	StateReady
	// StateFailed holds the failure delivered to every dependent function
	StateFailed
)

func (s ContainerState) String() string {
	switch s {
	case StateUnsourced:
		return "unsourced"
	case StateSourcing:
		return "sourcing"
	case StateSourced:
		return "sourced"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

// Container binds one managed object instance to a scope
type Container struct {
	Name  string
	Scope graph.Scope
	// Holder is the thread kept alive by pending asynchronous operations, empty for process scope
	Holder       string
	State        ContainerState
	Object       managed.Object
	Capabilities managed.Capabilities
	Err          error
	// Pooled is set when the object was obtained from a pool
	Pooled bool
	// Lost is set once the object was torn down and must not be recycled
	Lost bool
	// Released is set once the owning scope ended
	Released bool
	// Deferred is set when the scope ended while an operation was pending
	Deferred bool

	waiters      []*JobNode
	asyncPending bool
	asyncGen     uint64
	timer        *time.Timer
}

// NewContainer creates an unsourced container
func NewContainer(name string, scope graph.Scope, holder string) *Container {
	return &Container{Name: name, Scope: scope, Holder: holder}
}

// Bind sets the sourced object and evaluates its capabilities
func (c *Container) Bind(object managed.Object) {
	c.Object = object
	c.Capabilities = managed.NewCapabilities(object)
	if _, ok := c.Capabilities.Coordinating(); ok {
		c.State = StateSourced
		return
	}
	c.State = StateReady
}

// Fail marks the container failed
func (c *Container) Fail(err error) {
	c.State = StateFailed
	c.Err = err
}

// Available returns true when dependent functions may use the object
func (c *Container) Available() bool {
	return c.State == StateReady && !c.asyncPending
}

// Wait registers node to be resumed once the container changes
func (c *Container) Wait(node *JobNode) {
	c.waiters = append(c.waiters, node)
}

// TakeWaiters returns and clears waiting nodes in registration order
func (c *Container) TakeWaiters() []*JobNode {
	ret := c.waiters
	c.waiters = nil
	return ret
}

// Waiting returns number of waiting nodes
func (c *Container) Waiting() int {
	return len(c.waiters)
}

// Value returns the object value
func (c *Container) Value() (interface{}, error) {
	if c.State == StateFailed {
		return nil, c.Err
	}
	if c.Object == nil {
		return nil, nil
	}
	return c.Object.Object()
}

// StartAsync marks an asynchronous operation pending, onTimeout is called with
// the operation generation once timeout elapses.  It returns false if an
// operation was already pending.
func (c *Container) StartAsync(timeout time.Duration, onTimeout func(gen uint64)) bool {
	if c.asyncPending {
		return false
	}
	c.asyncPending = true
	c.asyncGen++
	gen := c.asyncGen
	c.timer = time.AfterFunc(timeout, func() { onTimeout(gen) })
	return true
}

// CompleteAsync clears a pending operation, it returns false if none was pending
func (c *Container) CompleteAsync() bool {
	if !c.asyncPending {
		return false
	}
	c.asyncPending = false
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	return true
}

// ExpireAsync clears the pending operation of generation gen, it returns
// false if the operation already completed.
func (c *Container) ExpireAsync(gen uint64) bool {
	if !c.asyncPending || c.asyncGen != gen {
		return false
	}
	c.asyncPending = false
	c.timer = nil
	return true
}

// AsyncPending returns true while an asynchronous operation is pending
func (c *Container) AsyncPending() bool {
	return c.asyncPending
}
