package execution

import (
	"github.com/viant/floor/function"
	"github.com/viant/floor/internal/idgen"
	"github.com/viant/floor/model/graph"
)

type (
	// FlowRequest represents a flow instigated by a function body
	FlowRequest struct {
		Index     int
		Function  *graph.Function
		Strategy  graph.Strategy
		Parameter interface{}
		Callback  function.Callback
	}

	// Flow represents a chain of function activations within one thread
	Flow struct {
		ID       string
		ThreadID string
		// Parent is the job node that instigated the flow, nil for a thread root
		Parent  *JobNode
		Request *FlowRequest
		// Escalation flows run an escalation handler chain
		Escalation bool
		// Takeover flows hand their result to the parent as its own
		Takeover bool
		// Office flows run an office escalation handler
		Office bool
		// Detached flows do not continue any parent on completion
		Detached bool
		// Handled is the escalation a replacing handler flow took over
		Handled error
		Result  interface{}

		epoch   uint64
		aborted bool
		done    bool
	}

	// JobNode represents one activation of a function
	JobNode struct {
		ID        string
		Function  *graph.Function
		Parameter interface{}
		ProcessID string
		ThreadID  string
		Flow      *Flow
		// Objects holds resolved containers in declaration order
		Objects []*Container
		// Scoped holds function scoped containers owned by the activation
		Scoped map[string]*Container
		scoped []*Container
		// Requests are flows recorded by the body
		Requests []*FlowRequest
		// Pending are sequential flows waiting for their predecessor
		Pending []*FlowRequest
		// Outstanding counts sequential and parallel flows not yet completed
		Outstanding int
		Result      interface{}
		// Call, when set, makes the node run a flow callback
		Call *Call

		epoch uint64
	}

	// Call represents a flow callback activation on the instigating thread
	Call struct {
		Target  *JobNode
		Request *FlowRequest
		// Flow is the completed flow, nil for a spawned thread
		Flow       *Flow
		Escalation error
		// Continue resumes the target once the callback returns
		Continue bool
	}
)

// NewFlow creates a flow instigated by parent
func NewFlow(threadID string, parent *JobNode, request *FlowRequest) *Flow {
	ret := &Flow{ID: idgen.New(), ThreadID: threadID, Parent: parent, Request: request}
	if parent != nil {
		ret.epoch = parent.epoch
	}
	return ret
}

// Abort marks the flow and all flows it instigated as aborted
func (f *Flow) Abort() {
	f.aborted = true
}

// Aborted returns true if the flow or any enclosing flow was aborted
func (f *Flow) Aborted() bool {
	for flow := f; flow != nil; {
		if flow.aborted {
			return true
		}
		parent := flow.Parent
		if parent == nil {
			return false
		}
		if flow.epoch != parent.epoch {
			return true
		}
		flow = parent.Flow
	}
	return false
}

// Complete records the flow result, it returns false if already completed
func (f *Flow) Complete(result interface{}) bool {
	if f.done {
		return false
	}
	f.done = true
	f.Result = result
	return true
}

// Done returns true once the flow completed
func (f *Flow) Done() bool {
	return f.done
}

// InOffice returns true if the flow runs within an office escalation
func (f *Flow) InOffice() bool {
	for flow := f; flow != nil; {
		if flow.Office {
			return true
		}
		if flow.Parent == nil {
			return false
		}
		flow = flow.Parent.Flow
	}
	return false
}

// IsSequential returns true for a sequential flow slot
func (f *Flow) IsSequential() bool {
	return f.Request != nil && f.Request.Strategy == graph.StrategySequential
}

// NewJobNode creates an activation of fn within flow
func NewJobNode(processID string, flow *Flow, fn *graph.Function, parameter interface{}) *JobNode {
	return &JobNode{
		ID:        idgen.New(),
		Function:  fn,
		Parameter: parameter,
		ProcessID: processID,
		ThreadID:  flow.ThreadID,
		Flow:      flow,
		Objects:   make([]*Container, len(fn.Objects)),
	}
}

// NewCallNode creates an activation running a flow callback for target
func NewCallNode(threadID string, call *Call) *JobNode {
	target := call.Target
	return &JobNode{
		ID:        idgen.New(),
		Function:  target.Function,
		ProcessID: target.ProcessID,
		ThreadID:  threadID,
		Flow:      target.Flow,
		Call:      call,
	}
}

// AbortChildren aborts every flow the node instigated so far
func (n *JobNode) AbortChildren() {
	n.epoch++
	n.Pending = nil
}

// Request records a flow to instigate once the body returns
func (n *JobNode) Request(request *FlowRequest) {
	n.Requests = append(n.Requests, request)
}

// TakeRequests returns and clears recorded flow requests
func (n *JobNode) TakeRequests() []*FlowRequest {
	ret := n.Requests
	n.Requests = nil
	return ret
}

// ScopedContainer returns the function scoped container for name, creating it when missing
func (n *JobNode) ScopedContainer(name string) (*Container, bool) {
	if n.Scoped == nil {
		n.Scoped = make(map[string]*Container)
	}
	if ret, ok := n.Scoped[name]; ok {
		return ret, false
	}
	ret := NewContainer(name, graph.ScopeFunction, n.ThreadID)
	n.Scoped[name] = ret
	n.scoped = append(n.scoped, ret)
	return ret, true
}

// ScopedContainers returns function scoped containers in creation order
func (n *JobNode) ScopedContainers() []*Container {
	return n.scoped
}
