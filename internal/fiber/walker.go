package fiber

import (
	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/model"
)

// DefaultMaxDepth is the default depth bound of a walk.
const DefaultMaxDepth = 5

// MaxChildren bounds how many siblings are visited under one instance.
const MaxChildren = 200

// MaxNodes bounds the number of nodes emitted by one walk.
const MaxNodes = 5000

// Walker turns instance subtrees into component trees.
type Walker struct {
	// Attribute, when set, is called for every emitted node.
	Attribute func(*Instance) model.AttributionResult
}

// walk is the state shared by one call to Walk.
type walk struct {
	*Walker
	maxDepth int
	budget   int
}

// Walk converts the subtree rooted at inst into a component tree. It
// returns nil when inst is nil or depth exceeds maxDepth. A sibling chain
// ends at the first instance it repeats, and a walk emits at most
// MaxNodes nodes, so cyclic links always terminate.
func (w *Walker) Walk(inst *Instance, depth, maxDepth int) *model.ComponentNode {
	st := &walk{Walker: w, maxDepth: maxDepth, budget: MaxNodes}
	return st.node(inst, depth)
}

func (w *walk) node(inst *Instance, depth int) *model.ComponentNode {
	if inst == nil || depth > w.maxDepth || w.budget <= 0 {
		return nil
	}
	w.budget--
	node := &model.ComponentNode{
		Name:     Name(inst),
		Kind:     model.KindComponent,
		Key:      inst.Key,
		Depth:    depth,
		Props:    SanitizeProps(inst.Props),
		State:    State(inst),
		Children: []*model.ComponentNode{},
	}
	if inst.Kind() == KindHost {
		node.Kind = model.KindElement
	}
	if host := inst.HostNode; host != nil && !host.IsText() {
		node.TagName = host.Tag
		node.Styles = dom.StyleSubset(host)
	}
	if w.Attribute != nil {
		src := w.Attribute(inst)
		node.Source = &src
	}
	if depth == w.maxDepth {
		return node
	}

	seen := make(map[*Instance]bool)
	for child := inst.Child; child != nil && len(seen) < MaxChildren && !seen[child]; child = child.Sibling {
		seen[child] = true
		c := w.node(child, depth+1)
		if c == nil {
			break
		}
		node.Children = append(node.Children, c)
	}
	return node
}
