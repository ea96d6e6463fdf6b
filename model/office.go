package model

import (
	"fmt"
	"sort"

	"github.com/viant/floor/model/graph"
)

type (
	// Office represents a static set of functions, objects and works
	Office struct {
		Name      string                  `json:"name" yaml:"name"`
		Functions []*graph.Function       `json:"functions,omitempty" yaml:"functions,omitempty"`
		Objects   []*graph.ManagedObject  `json:"objects,omitempty" yaml:"objects,omitempty"`
		Works     []*Work                 `json:"works,omitempty" yaml:"works,omitempty"`
		// Escalations are consulted when no function in the thread handles a failure
		Escalations []*graph.Escalation `json:"escalations,omitempty" yaml:"escalations,omitempty"`

		functions map[string]*graph.Function
		objects   map[string]*graph.ManagedObject
		works     map[string]*Work
	}

	// Work names an initial function invoked to start a process
	Work struct {
		Name    string `json:"name" yaml:"name"`
		Initial string `json:"initial,omitempty" yaml:"initial,omitempty"`
	}
)

// NewOffice creates an office
func NewOffice(name string) *Office {
	return &Office{Name: name}
}

// WithFunction adds functions
func (o *Office) WithFunction(functions ...*graph.Function) *Office {
	o.Functions = append(o.Functions, functions...)
	o.functions = nil
	return o
}

// WithObject adds managed object bindings
func (o *Office) WithObject(objects ...*graph.ManagedObject) *Office {
	o.Objects = append(o.Objects, objects...)
	o.objects = nil
	return o
}

// WithWork adds a work, empty initial means a work with no initial function
func (o *Office) WithWork(name, initial string) *Office {
	o.Works = append(o.Works, &Work{Name: name, Initial: initial})
	o.works = nil
	return o
}

// WithEscalation adds office escalations
func (o *Office) WithEscalation(escalations ...*graph.Escalation) *Office {
	o.Escalations = append(o.Escalations, escalations...)
	return o
}

// Function returns function by name
func (o *Office) Function(name string) (*graph.Function, bool) {
	o.index()
	ret, ok := o.functions[name]
	return ret, ok
}

// Object returns managed object binding by name
func (o *Office) Object(name string) (*graph.ManagedObject, bool) {
	o.index()
	ret, ok := o.objects[name]
	return ret, ok
}

// Work returns work by name
func (o *Office) Work(name string) (*Work, bool) {
	o.index()
	ret, ok := o.works[name]
	return ret, ok
}

func (o *Office) index() {
	if o.functions == nil {
		o.functions = make(map[string]*graph.Function, len(o.Functions))
		for _, fn := range o.Functions {
			if fn != nil {
				o.functions[fn.Name] = fn
			}
		}
	}
	if o.objects == nil {
		o.objects = make(map[string]*graph.ManagedObject, len(o.Objects))
		for _, object := range o.Objects {
			if object != nil {
				o.objects[object.Name] = object
			}
		}
	}
	if o.works == nil {
		o.works = make(map[string]*Work, len(o.Works))
		for _, work := range o.Works {
			if work != nil {
				o.works[work.Name] = work
			}
		}
	}
}

// Validate performs static validation of the office.  The returned slice is
// empty when the office is sound.  Sources and teams are not checked here,
// they are resolved when the kernel binds the office.
func (o *Office) Validate() []error {
	var issues []error
	o.functions, o.objects, o.works = nil, nil, nil

	seen := map[string]bool{}
	for _, fn := range o.Functions {
		if fn == nil {
			issues = append(issues, fmt.Errorf("function was nil"))
			continue
		}
		if err := fn.Validate(); err != nil {
			issues = append(issues, err)
		}
		if seen[fn.Name] {
			issues = append(issues, fmt.Errorf("duplicate function %v", fn.Name))
		}
		seen[fn.Name] = true
	}
	seenObjects := map[string]bool{}
	for _, object := range o.Objects {
		if object == nil {
			issues = append(issues, fmt.Errorf("managed object was nil"))
			continue
		}
		if object.Name == "" {
			issues = append(issues, fmt.Errorf("managed object name was empty"))
			continue
		}
		if seenObjects[object.Name] {
			issues = append(issues, fmt.Errorf("duplicate managed object %v", object.Name))
		}
		seenObjects[object.Name] = true
		if object.Source == "" {
			issues = append(issues, fmt.Errorf("managed object %v: source was empty", object.Name))
		}
		if object.Scope != "" && !object.Scope.IsValid() {
			issues = append(issues, fmt.Errorf("managed object %v: invalid scope %q", object.Name, object.Scope))
		}
	}
	o.index()

	for _, fn := range o.Functions {
		if fn == nil {
			continue
		}
		for _, ref := range fn.Objects {
			if ref == nil {
				continue
			}
			if _, ok := o.objects[ref.Name]; !ok {
				issues = append(issues, fmt.Errorf("function %v refers to unknown object %v", fn.Name, ref.Name))
			}
		}
		for _, flow := range fn.Flows {
			if flow != nil && flow.Function != "" && !seen[flow.Function] {
				issues = append(issues, fmt.Errorf("function %v flow refers to unknown function %v", fn.Name, flow.Function))
			}
		}
		if fn.Next != "" && !seen[fn.Next] {
			issues = append(issues, fmt.Errorf("function %v next refers to unknown function %v", fn.Name, fn.Next))
		}
		for _, escalation := range fn.Escalations {
			if escalation != nil && escalation.Function != "" && !seen[escalation.Function] {
				issues = append(issues, fmt.Errorf("function %v escalation refers to unknown function %v", fn.Name, escalation.Function))
			}
		}
	}
	for i, escalation := range o.Escalations {
		if escalation == nil || escalation.Function == "" {
			issues = append(issues, fmt.Errorf("office escalation[%v] function was empty", i))
			continue
		}
		if !seen[escalation.Function] {
			issues = append(issues, fmt.Errorf("office escalation refers to unknown function %v", escalation.Function))
		}
	}
	for _, work := range o.Works {
		if work == nil || work.Name == "" {
			issues = append(issues, fmt.Errorf("work name was empty"))
			continue
		}
		if work.Initial != "" && !seen[work.Initial] {
			issues = append(issues, fmt.Errorf("work %v refers to unknown function %v", work.Name, work.Initial))
		}
	}

	for _, object := range o.Objects {
		if object == nil {
			continue
		}
		for _, dep := range object.Dependencies {
			if _, ok := o.objects[dep]; !ok {
				issues = append(issues, fmt.Errorf("managed object %v depends on unknown object %v", object.Name, dep))
			}
		}
	}
	issues = append(issues, o.detectCycles()...)
	return issues
}

// detectCycles reports managed object dependency cycles
func (o *Office) detectCycles() []error {
	const (
		visiting = 1
		visited  = 2
	)
	var issues []error
	marks := map[string]int{}
	var visit func(name string, path []string)
	visit = func(name string, path []string) {
		switch marks[name] {
		case visiting:
			issues = append(issues, fmt.Errorf("managed object dependency cycle: %v", append(path, name)))
			return
		case visited:
			return
		}
		object, ok := o.objects[name]
		if !ok {
			return
		}
		marks[name] = visiting
		for _, dep := range object.Dependencies {
			visit(dep, append(path, name))
		}
		marks[name] = visited
	}
	names := make([]string, 0, len(o.objects))
	for name := range o.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		visit(name, nil)
	}
	return issues
}
