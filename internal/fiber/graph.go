// Package fiber models a page's component-instance graph and walks it into
// bounded, serializable component trees.
package fiber

import (
	"encoding/json"
	"errors"

	"github.com/mj1618/fiberscope/internal/dom"
)

// TypeInfo describes an instance's type. Function types carry Name and
// DisplayName, host types Raw (the tag name), and wrapper objects such as
// memo or forwardRef carry the type they wrap.
type TypeInfo struct {
	Name        string
	DisplayName string
	Raw         string
	Wrapped     *TypeInfo
}

// DebugSource is the authoring location a development build attaches to
// an instance.
type DebugSource struct {
	FileName     string
	LineNumber   int
	ColumnNumber int
}

// Hook is one entry of a function component's hook list.
type Hook struct {
	Value    any
	HasQueue bool
	Next     *Hook
}

// Instance is a single node of the component-instance graph. Links may
// form cycles.
type Instance struct {
	ID          int
	Tag         WorkTag
	Key         *string
	Type        *TypeInfo
	ElementType *TypeInfo
	Props       map[string]any
	ClassState  any
	Hooks       *Hook
	DebugSource *DebugSource
	DebugStack  string
	HostNode    *dom.Node

	Child   *Instance
	Sibling *Instance
	Return  *Instance
	Owner   *Instance
}

// Kind returns the classification of the instance's work tag.
func (i *Instance) Kind() Kind { return Classify(i.Tag) }

// Func stands in for a function value found in props or state.
type Func struct {
	Name string
}

// Placeholder returns the transport-safe rendering of the function.
func (f Func) Placeholder() string {
	name := f.Name
	if name == "" {
		name = "anonymous"
	}
	return "[Function: " + name + "]"
}

// MarshalJSON encodes the function as its placeholder string.
func (f Func) MarshalJSON() ([]byte, error) {
	return json.Marshal(f.Placeholder())
}

// MarshalYAML encodes the function as its placeholder string.
func (f Func) MarshalYAML() (any, error) {
	return f.Placeholder(), nil
}

// ErrOpaque is returned when an Opaque value is serialized.
var ErrOpaque = errors.New("opaque value")

// Opaque stands in for a value the capture could not represent, such as a
// DOM node, a rendered element or an object nested beyond the capture
// depth. It never serializes.
type Opaque struct {
	Desc string
}

// MarshalJSON always fails.
func (o Opaque) MarshalJSON() ([]byte, error) {
	return nil, ErrOpaque
}

// Graph indexes decoded instances by id.
type Graph struct {
	ByID map[int]*Instance
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{ByID: make(map[int]*Instance)}
}

// Instance returns the instance with the given id.
func (g *Graph) Instance(id int) *Instance {
	if g == nil || id == 0 {
		return nil
	}
	return g.ByID[id]
}

// Add registers inst.
func (g *Graph) Add(inst *Instance) {
	g.ByID[inst.ID] = inst
}
