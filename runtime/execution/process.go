package execution

import (
	"context"
	"sync"
	"time"

	"github.com/viant/floor/internal/clock"
	"github.com/viant/floor/internal/idgen"
	"github.com/viant/floor/model/graph"
	"github.com/viant/floor/tracing"
)

// Process state constants
const (
	StateOpen     = "open"
	StateCleaning = "cleaning"
	StateClosed   = "closed"
)

// ProcessState represents the top level unit of invocation
type ProcessState struct {
	ID    string
	Name  string
	State string
	// Main is the id of the thread started with the process
	Main    string
	Threads map[string]*ThreadState
	// Objects holds process scoped containers by bound name
	Objects map[string]*Container
	// Containers lists every container created for the process
	Containers []*Container
	Cleanup    *CleanupSequence
	Aware      *AwareContext
	Handle     *Handle
	Cancelled  bool
	// PendingAsync counts asynchronous operations of process scoped objects
	PendingAsync   int
	Result         interface{}
	Err            error
	ThreadFailures []*ThreadFailure
	Listeners      []func(outcome *Outcome)
	StartedAt      time.Time
	Context        context.Context
	CancelFunc     context.CancelFunc
	Span           *tracing.Span

	mux sync.Mutex
}

// Info represents a read-only view of a live process
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	State     string    `json:"state"`
	Threads   int       `json:"threads"`
	Objects   int       `json:"objects"`
	StartedAt time.Time `json:"startedAt"`
}

// NewProcessState creates an open process
func NewProcessState(ctx context.Context, id, name string, cleanup *CleanupSequence) *ProcessState {
	if id == "" {
		id = idgen.New()
	}
	return &ProcessState{
		ID:        id,
		Name:      name,
		State:     StateOpen,
		Threads:   make(map[string]*ThreadState),
		Objects:   make(map[string]*Container),
		Cleanup:   cleanup,
		Aware:     &AwareContext{},
		StartedAt: clock.Now(),
		Context:   ctx,
	}
}

// Lock locks the process state
func (p *ProcessState) Lock() { p.mux.Lock() }

// Unlock unlocks the process state
func (p *ProcessState) Unlock() { p.mux.Unlock() }

// NewThread registers a new thread, the first thread becomes the main thread
func (p *ProcessState) NewThread(spawn *Spawn) *ThreadState {
	ret := &ThreadState{
		ID:        idgen.New(),
		ProcessID: p.ID,
		Objects:   make(map[string]*Container),
		Spawn:     spawn,
		StartedAt: clock.Now(),
	}
	ret.Root = NewFlow(ret.ID, nil, nil)
	if p.Main == "" {
		p.Main = ret.ID
	}
	p.Threads[ret.ID] = ret
	return ret
}

// Thread returns a live thread
func (p *ProcessState) Thread(id string) (*ThreadState, bool) {
	ret, ok := p.Threads[id]
	return ret, ok
}

// RemoveThread deregisters a thread, it returns the number of live threads left
func (p *ProcessState) RemoveThread(id string) int {
	delete(p.Threads, id)
	return len(p.Threads)
}

// Container returns the container for name at scope, creating it when
// missing.  The second result is true for a new container.
func (p *ProcessState) Container(scope graph.Scope, name string, thread *ThreadState, node *JobNode) (*Container, bool) {
	var ret *Container
	var created bool
	switch scope {
	case graph.ScopeFunction:
		ret, created = node.ScopedContainer(name)
	case graph.ScopeThread:
		ret, created = thread.Container(name)
	default:
		if ret = p.Objects[name]; ret == nil {
			ret = NewContainer(name, graph.ScopeProcess, "")
			p.Objects[name] = ret
			created = true
		}
	}
	if created {
		p.Containers = append(p.Containers, ret)
	}
	return ret, created
}

// ProcessContainers returns process scoped containers in creation order
func (p *ProcessState) ProcessContainers() []*Container {
	var ret []*Container
	for _, container := range p.Containers {
		if container.Scope == graph.ScopeProcess {
			ret = append(ret, container)
		}
	}
	return ret
}

// Outcome builds the process outcome
func (p *ProcessState) Outcome() *Outcome {
	ret := &Outcome{
		ProcessID:      p.ID,
		Name:           p.Name,
		Result:         p.Result,
		Err:            p.Err,
		ThreadFailures: p.ThreadFailures,
		StartedAt:      p.StartedAt,
		TimeTaken:      clock.Since(p.StartedAt),
	}
	if p.Cleanup != nil {
		ret.CleanupEscalations = p.Cleanup.Escalations()
	}
	return ret
}

// Info returns a view of the process
func (p *ProcessState) Info() *Info {
	p.mux.Lock()
	defer p.mux.Unlock()
	objects := 0
	for _, container := range p.Containers {
		if container.Object != nil && !container.Released {
			objects++
		}
	}
	return &Info{ID: p.ID, Name: p.Name, State: p.State, Threads: len(p.Threads), Objects: objects, StartedAt: p.StartedAt}
}

// GetState returns the process state
func (p *ProcessState) GetState() string {
	p.mux.Lock()
	defer p.mux.Unlock()
	return p.State
}
