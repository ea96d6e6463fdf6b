package graph

import (
	"reflect"
	"time"
)

type (
	// ManagedObject represents the static binding of a managed object.
	ManagedObject struct {
		// Name is the bound name functions refer to
		Name string `json:"name" yaml:"name"`
		// Source is the registered source producing instances
		Source string `json:"source" yaml:"source"`
		// Scope is the default scope of the binding
		Scope Scope `json:"scope,omitempty" yaml:"scope,omitempty"`
		// Dependencies lists bound names loaded into a coordinating object
		Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
		// Timeout bounds asynchronous operations of the object
		Timeout time.Duration `json:"timeout,omitempty" yaml:"timeout,omitempty"`
		// Type, when set, is the type the object value must be assignable to
		Type reflect.Type `json:"-" yaml:"-"`
	}

	// ObjectRef represents a function dependency on a bound managed object
	ObjectRef struct {
		Name string `json:"name" yaml:"name"`
		// Scope overrides the object's default scope when set
		Scope Scope `json:"scope,omitempty" yaml:"scope,omitempty"`
		// Type, when set, overrides the object's expected type
		Type reflect.Type `json:"-" yaml:"-"`
	}
)

// NewManagedObject creates a managed object binding
func NewManagedObject(name, source string, scope Scope) *ManagedObject {
	return &ManagedObject{Name: name, Source: source, Scope: scope}
}

// WithDependencies sets dependencies loaded by a coordinating object
func (m *ManagedObject) WithDependencies(names ...string) *ManagedObject {
	m.Dependencies = append(m.Dependencies, names...)
	return m
}

// WithTimeout sets asynchronous operation timeout
func (m *ManagedObject) WithTimeout(timeout time.Duration) *ManagedObject {
	m.Timeout = timeout
	return m
}

// WithType sets the expected object value type
func (m *ManagedObject) WithType(t reflect.Type) *ManagedObject {
	m.Type = t
	return m
}

// ScopeOf returns effective scope of the reference
func (r *ObjectRef) ScopeOf(object *ManagedObject) Scope {
	if r.Scope != "" {
		return r.Scope
	}
	if object != nil && object.Scope != "" {
		return object.Scope
	}
	return ScopeProcess
}

// TypeOf returns effective expected type of the reference
func (r *ObjectRef) TypeOf(object *ManagedObject) reflect.Type {
	if r.Type != nil {
		return r.Type
	}
	if object != nil {
		return object.Type
	}
	return nil
}
