// Package spatial resolves pointer and rectangle interactions against a
// captured document.
package spatial

import (
	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/model"
)

// DefaultMinSize is the minimum width and height, in CSS pixels, an
// element needs to be picked up by a rectangle selection.
const DefaultMinSize = 5

// selectable is the allow-list of tags considered by rectangle selection.
var selectable = map[string]bool{
	"button": true, "a": true, "input": true, "textarea": true, "select": true,
	"img": true, "video": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"p": true, "span": true, "div": true, "section": true, "article": true,
	"nav": true, "header": true, "footer": true, "form": true, "label": true, "li": true,
}

// Hit is an element picked by a rectangle selection.
type Hit struct {
	Node *dom.Node
	Rect model.Rect
}

// ResolveAtPoint returns the topmost element whose rectangle contains the
// point. Higher paint order wins; equal paint order falls to the node later
// in document order, which is the deeper one. It returns nil when nothing
// is hit or when the hit belongs to the inspector overlay.
func ResolveAtPoint(doc *dom.Document, x, y float64) *dom.Node {
	if doc == nil {
		return nil
	}
	var best *dom.Node
	for _, n := range doc.Nodes {
		if n.IsText() || n.Inert || n.Rect.Empty() || !n.Rect.Contains(x, y) {
			continue
		}
		if best == nil || n.PaintOrder >= best.PaintOrder {
			best = n
		}
	}
	if best == nil || best.IsOverlay() {
		return nil
	}
	return best
}

// ResolveInRectangle returns the allow-listed elements intersecting the
// rectangle spanned by the two corners. Elements must be strictly larger
// than minSize in both dimensions. When an element and one of its
// descendants both qualify only the descendant is kept, so the result
// never holds an element together with its ancestor. Results are in
// document order.
func ResolveInRectangle(doc *dom.Document, x1, y1, x2, y2, minSize float64) []Hit {
	if doc == nil {
		return nil
	}
	sel := model.RectFromCorners(x1, y1, x2, y2)
	var hits []Hit
	for _, n := range doc.Nodes {
		if !selectable[n.Tag] {
			continue
		}
		r := n.Rect
		if r.Width <= minSize || r.Height <= minSize || !r.Intersects(sel) {
			continue
		}
		if n.IsOverlay() {
			continue
		}
		if dominates(n, hits) {
			continue
		}
		hits = dropAncestors(hits, n)
		hits = append(hits, Hit{Node: n, Rect: r})
	}
	return hits
}

// dominates reports whether n is an ancestor of an element already kept.
func dominates(n *dom.Node, hits []Hit) bool {
	for _, h := range hits {
		if n != h.Node && n.Contains(h.Node) {
			return true
		}
	}
	return false
}

func dropAncestors(hits []Hit, n *dom.Node) []Hit {
	kept := hits[:0]
	for _, h := range hits {
		if h.Node != n && h.Node.Contains(n) {
			continue
		}
		kept = append(kept, h)
	}
	return kept
}
