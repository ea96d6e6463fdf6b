package processor

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/viant/floor/function"
	"github.com/viant/floor/runtime/execution"
)

var errActivationClosed = errors.New("activation already returned")

// activation is the function.Context of one body run
type activation struct {
	context.Context
	service *Service
	process *execution.ProcessState
	node    *execution.JobNode
	values  []interface{}

	mux    sync.Mutex
	closed bool
}

func newActivation(s *Service, process *execution.ProcessState, node *execution.JobNode) *activation {
	return &activation{service: s, process: process, node: node, Context: process.Context}
}

// prepare reads the values of resolved objects and checks declared types
func (a *activation) prepare(objects []*execution.Container, plan []*resolution) error {
	a.values = make([]interface{}, len(objects))
	for _, step := range plan {
		if step.declared < 0 {
			continue
		}
		container := objects[step.declared]
		if container == nil || container.Object == nil {
			continue
		}
		value, err := container.Object.Object()
		if err != nil {
			return &execution.SourcingError{Object: step.name, Cause: err}
		}
		if step.typ != nil && value != nil && !reflect.TypeOf(value).AssignableTo(step.typ) {
			return &execution.SourcingError{Object: step.name, Cause: fmt.Errorf("expected %v, but had %T", step.typ, value)}
		}
		a.values[step.declared] = value
	}
	return nil
}

func (a *activation) bind(ctx context.Context) function.Context {
	a.Context = ctx
	return a
}

func (a *activation) close() {
	a.mux.Lock()
	a.closed = true
	a.mux.Unlock()
}

func (a *activation) Parameter() interface{} {
	return a.node.Parameter
}

func (a *activation) Object(index int) (interface{}, error) {
	if index < 0 || index >= len(a.values) {
		return nil, fmt.Errorf("function %v: object index %v out of range [0,%v)", a.node.Function.Name, index, len(a.values))
	}
	return a.values[index], nil
}

func (a *activation) DoFlow(index int, parameter interface{}, callback function.Callback) error {
	fn := a.node.Function
	flow, err := fn.Flow(index)
	if err != nil {
		return err
	}
	target, ok := a.service.office.Function(flow.Function)
	if !ok {
		return fmt.Errorf("function %v: %w: %v", fn.Name, execution.ErrUnknownFunction, flow.Function)
	}
	a.mux.Lock()
	defer a.mux.Unlock()
	if a.closed {
		return fmt.Errorf("function %v: %w", fn.Name, errActivationClosed)
	}
	a.process.Lock()
	a.node.Request(&execution.FlowRequest{Index: index, Function: target, Strategy: flow.StrategyOf(), Parameter: parameter, Callback: callback})
	a.process.Unlock()
	return nil
}

func (a *activation) ProcessID() string {
	return a.node.ProcessID
}

func (a *activation) ThreadID() string {
	return a.node.ThreadID
}
