package execution

import (
	"time"

	"github.com/viant/floor/model/graph"
)

// ThreadState represents one logical thread of control within a process
type ThreadState struct {
	ID        string
	ProcessID string
	Root      *Flow
	// Objects holds thread scoped containers by bound name
	Objects map[string]*Container
	// Active counts queued, running and suspended jobs plus holds
	Active    int
	Result    interface{}
	Failure   error
	Spawn     *Spawn
	StartedAt time.Time

	containers []*Container
}

// Spawn links a spawned thread to the job node that instigated it
type Spawn struct {
	ThreadID string
	Node     *JobNode
	Request  *FlowRequest
}

// Container returns the thread scoped container for name, creating it when missing
func (t *ThreadState) Container(name string) (*Container, bool) {
	if ret, ok := t.Objects[name]; ok {
		return ret, false
	}
	ret := NewContainer(name, graph.ScopeThread, t.ID)
	t.Objects[name] = ret
	t.containers = append(t.containers, ret)
	return ret, true
}

// Containers returns thread scoped containers in creation order
func (t *ThreadState) Containers() []*Container {
	return t.containers
}

// Fail records the first unhandled failure and aborts the remaining work
func (t *ThreadState) Fail(err error) {
	if t.Failure == nil {
		t.Failure = err
	}
	if t.Root != nil {
		t.Root.Abort()
	}
}

// Failed returns true once an unhandled failure was recorded
func (t *ThreadState) Failed() bool {
	return t.Failure != nil
}
