// Package dom models a rendered page as captured from the browser: element
// and text nodes in document order with their layout rectangles.
package dom

import (
	"strings"

	"github.com/mj1618/fiberscope/internal/model"
)

// TextTag is the Tag value of text nodes.
const TextTag = "#text"

// OverlayMarker is the attribute carried by every element the inspector
// itself injects into the page.
const OverlayMarker = "data-fiberscope-ui"

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Node is an element or text node of a captured document.
type Node struct {
	ID         int
	Tag        string // lower-case tag name, or TextTag
	Attrs      []Attr
	Text       string
	Rect       model.Rect
	PaintOrder int
	Inert      bool              // excluded from hit testing, e.g. pointer-events: none
	Style      map[string]string // computed style, captured for full snapshots only
	Expandos   map[string]int    // own property keys mapped to instance ids
	Parent     *Node
	Children   []*Node
}

// IsText reports whether n is a text node.
func (n *Node) IsText() bool { return n.Tag == TextTag }

// Attr returns the value of the named attribute.
func (n *Node) Attr(name string) (string, bool) {
	for _, a := range n.Attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// HasAttr reports whether the named attribute is present.
func (n *Node) HasAttr(name string) bool {
	_, ok := n.Attr(name)
	return ok
}

// ElementID returns the id attribute or "".
func (n *Node) ElementID() string {
	v, _ := n.Attr("id")
	return v
}

// Classes returns the class tokens in attribute order. Duplicates are kept.
func (n *Node) Classes() []string {
	v, _ := n.Attr("class")
	return strings.Fields(v)
}

// Contains reports whether other is n or one of its descendants.
func (n *Node) Contains(other *Node) bool {
	for cur := other; cur != nil; cur = cur.Parent {
		if cur == n {
			return true
		}
	}
	return false
}

// Closest returns the nearest inclusive ancestor matching pred.
func (n *Node) Closest(pred func(*Node) bool) *Node {
	for cur := n; cur != nil; cur = cur.Parent {
		if pred(cur) {
			return cur
		}
	}
	return nil
}

// IsOverlay reports whether n or any ancestor belongs to the inspector UI.
func (n *Node) IsOverlay() bool {
	return n.Closest(func(c *Node) bool { return c.HasAttr(OverlayMarker) }) != nil
}

// ElementChildren returns the non-text children of n.
func (n *Node) ElementChildren() []*Node {
	var out []*Node
	for _, c := range n.Children {
		if !c.IsText() {
			out = append(out, c)
		}
	}
	return out
}

// Document is a captured page.
type Document struct {
	URL            string
	Title          string
	ScrollX        float64
	ScrollY        float64
	ViewportWidth  float64
	ViewportHeight float64
	Root           *Node
	Nodes          []*Node // document order, text nodes included
	byID           map[int]*Node
}

// NewDocument builds a document from nodes listed in document order. The
// first node without a parent becomes the root. Parent and Children links
// are derived from parents, which maps a node id to its parent id.
func NewDocument(nodes []*Node, parents map[int]int) *Document {
	d := &Document{Nodes: nodes, byID: make(map[int]*Node, len(nodes))}
	for _, n := range nodes {
		d.byID[n.ID] = n
	}
	for _, n := range nodes {
		pid, ok := parents[n.ID]
		if !ok {
			if d.Root == nil {
				d.Root = n
			}
			continue
		}
		p := d.byID[pid]
		if p == nil || p == n {
			if d.Root == nil {
				d.Root = n
			}
			continue
		}
		n.Parent = p
		p.Children = append(p.Children, n)
	}
	return d
}

// Node returns the node with the given id.
func (d *Document) Node(id int) *Node {
	if d == nil {
		return nil
	}
	return d.byID[id]
}

// Elements returns the element nodes in document order.
func (d *Document) Elements() []*Node {
	out := make([]*Node, 0, len(d.Nodes))
	for _, n := range d.Nodes {
		if !n.IsText() {
			out = append(out, n)
		}
	}
	return out
}

// Append attaches children to n and returns n.
func (n *Node) Append(children ...*Node) *Node {
	for _, c := range children {
		c.Parent = n
		n.Children = append(n.Children, c)
	}
	return n
}

// FromRoot builds a document from an already linked tree. Nodes are
// listed in pre-order, which is document order.
func FromRoot(root *Node) *Document {
	d := &Document{Root: root, byID: make(map[int]*Node)}
	var walk func(*Node)
	walk = func(n *Node) {
		d.Nodes = append(d.Nodes, n)
		d.byID[n.ID] = n
		for _, c := range n.Children {
			walk(c)
		}
	}
	if root != nil {
		walk(root)
	}
	return d
}
