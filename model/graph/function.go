package graph

import (
	"fmt"
	"reflect"

	"github.com/viant/floor/function"
)

// Strategy represents how an instigated flow is run
type Strategy string

const (
	// StrategySequential runs the flow after the instigating body, before its next function
	StrategySequential Strategy = "sequential"
	// StrategyParallel runs the flow concurrently in the same thread, next function joins on it
	StrategyParallel Strategy = "parallel"
	// StrategySpawn runs the flow in a new thread state of the same process
	StrategySpawn Strategy = "spawn"
)

type (
	// Function represents the static metadata of a managed function
	Function struct {
		Name string `json:"name" yaml:"name"`
		// Team is the responsible team, empty means the default team
		Team        string        `json:"team,omitempty" yaml:"team,omitempty"`
		Objects     []*ObjectRef  `json:"objects,omitempty" yaml:"objects,omitempty"`
		Flows       []*Flow       `json:"flows,omitempty" yaml:"flows,omitempty"`
		Escalations []*Escalation `json:"escalations,omitempty" yaml:"escalations,omitempty"`
		// Next is the function continuing the thread with this function's result
		Next string `json:"next,omitempty" yaml:"next,omitempty"`
		// Parameter, when set, is the type the parameter is converted to before the body runs
		Parameter reflect.Type      `json:"-" yaml:"-"`
		Body      function.Function `json:"-" yaml:"-"`
	}

	// Flow represents a flow the function may instigate by index
	Flow struct {
		Function string   `json:"function" yaml:"function"`
		Strategy Strategy `json:"strategy,omitempty" yaml:"strategy,omitempty"`
	}
)

// NewFunction creates a function
func NewFunction(name string, body function.Function) *Function {
	return &Function{Name: name, Body: body}
}

// WithTeam sets the responsible team
func (f *Function) WithTeam(team string) *Function {
	f.Team = team
	return f
}

// WithObject adds an object dependency, empty scope keeps the bound object scope
func (f *Function) WithObject(name string, scope Scope) *Function {
	f.Objects = append(f.Objects, &ObjectRef{Name: name, Scope: scope})
	return f
}

// WithFlow adds an instigated flow
func (f *Function) WithFlow(function string, strategy Strategy) *Function {
	f.Flows = append(f.Flows, &Flow{Function: function, Strategy: strategy})
	return f
}

// WithEscalation adds escalation handlers
func (f *Function) WithEscalation(escalations ...*Escalation) *Function {
	f.Escalations = append(f.Escalations, escalations...)
	return f
}

// WithParameter declares the parameter type by example, e.g. WithParameter(&Order{})
func (f *Function) WithParameter(sample interface{}) *Function {
	f.Parameter = reflect.TypeOf(sample)
	return f
}

// WithNext sets next function
func (f *Function) WithNext(next string) *Function {
	f.Next = next
	return f
}

// StrategyOf returns the effective flow strategy
func (f *Flow) StrategyOf() Strategy {
	if f.Strategy == "" {
		return StrategySequential
	}
	return f.Strategy
}

// Flow returns flow at index
func (f *Function) Flow(index int) (*Flow, error) {
	if index < 0 || index >= len(f.Flows) {
		return nil, fmt.Errorf("function %v: flow index %v out of range [0,%v)", f.Name, index, len(f.Flows))
	}
	return f.Flows[index], nil
}

// Validate checks function metadata
func (f *Function) Validate() error {
	if f.Name == "" {
		return fmt.Errorf("function name was empty")
	}
	if f.Body == nil {
		return fmt.Errorf("function %v: body was empty", f.Name)
	}
	for i, ref := range f.Objects {
		if ref == nil || ref.Name == "" {
			return fmt.Errorf("function %v: object[%v] name was empty", f.Name, i)
		}
		if ref.Scope != "" && !ref.Scope.IsValid() {
			return fmt.Errorf("function %v: object %v: invalid scope %q", f.Name, ref.Name, ref.Scope)
		}
	}
	for i, flow := range f.Flows {
		if flow == nil || flow.Function == "" {
			return fmt.Errorf("function %v: flow[%v] function was empty", f.Name, i)
		}
		switch flow.StrategyOf() {
		case StrategySequential, StrategyParallel, StrategySpawn:
		default:
			return fmt.Errorf("function %v: flow[%v]: invalid strategy %q", f.Name, i, flow.Strategy)
		}
	}
	for i, escalation := range f.Escalations {
		if escalation == nil || escalation.Function == "" {
			return fmt.Errorf("function %v: escalation[%v] function was empty", f.Name, i)
		}
		if escalation.Type == nil && escalation.Target == nil {
			return fmt.Errorf("function %v: escalation[%v] had neither type nor target", f.Name, i)
		}
	}
	return nil
}
