package managed

import "strings"

// Capability represents the optional protocols an object implements
type Capability uint8

const (
	CapCoordinating Capability = 1 << iota
	CapAsynchronous
	CapProcessAware
	CapRecyclable
)

var capabilityNames = []struct {
	cap  Capability
	name string
}{
	{CapCoordinating, "coordinating"},
	{CapAsynchronous, "asynchronous"},
	{CapProcessAware, "processAware"},
	{CapRecyclable, "recyclable"},
}

// CapabilitiesOf returns the capability set of the object
func CapabilitiesOf(object Object) Capability {
	var ret Capability
	if _, ok := object.(Coordinating); ok {
		ret |= CapCoordinating
	}
	if _, ok := object.(Asynchronous); ok {
		ret |= CapAsynchronous
	}
	if _, ok := object.(ProcessAware); ok {
		ret |= CapProcessAware
	}
	if _, ok := object.(Recyclable); ok {
		ret |= CapRecyclable
	}
	return ret
}

// Has returns true if all of c are present
func (s Capability) Has(c Capability) bool {
	return s&c == c
}

func (s Capability) String() string {
	var names []string
	for _, item := range capabilityNames {
		if s.Has(item.cap) {
			names = append(names, item.name)
		}
	}
	return strings.Join(names, "|")
}

// Capabilities holds an object with its evaluated capability set and typed
// accessors.
type Capabilities struct {
	Object Object
	Set    Capability
}

// NewCapabilities evaluates capabilities of object
func NewCapabilities(object Object) Capabilities {
	return Capabilities{Object: object, Set: CapabilitiesOf(object)}
}

// Coordinating returns the coordinating protocol when supported
func (c Capabilities) Coordinating() (Coordinating, bool) {
	if !c.Set.Has(CapCoordinating) {
		return nil, false
	}
	return c.Object.(Coordinating), true
}

// Asynchronous returns the asynchronous protocol when supported
func (c Capabilities) Asynchronous() (Asynchronous, bool) {
	if !c.Set.Has(CapAsynchronous) {
		return nil, false
	}
	return c.Object.(Asynchronous), true
}

// ProcessAware returns the process aware protocol when supported
func (c Capabilities) ProcessAware() (ProcessAware, bool) {
	if !c.Set.Has(CapProcessAware) {
		return nil, false
	}
	return c.Object.(ProcessAware), true
}

// Recyclable returns the recycle protocol when supported
func (c Capabilities) Recyclable() (Recyclable, bool) {
	if !c.Set.Has(CapRecyclable) {
		return nil, false
	}
	return c.Object.(Recyclable), true
}
