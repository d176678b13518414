package spatial

import (
	"testing"

	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func box(id int, tag string, left, top, w, h float64, attrs ...dom.Attr) *dom.Node {
	return &dom.Node{ID: id, Tag: tag, Attrs: attrs, Rect: model.Rect{Top: top, Left: left, Width: w, Height: h}}
}

// page lays out:
//
//	body      0,0   1000x1000
//	  section 0,0   500x500
//	    div   10,10 200x100  (card)
//	      button 20,20 50x20
//	    p     10,200 300x40
//	  div     600,0 100x100 (overlay toolbar)
//	    button 610,10 40x20
func page() *dom.Document {
	root := box(1, "html", 0, 0, 1000, 1000).Append(
		box(2, "body", 0, 0, 1000, 1000).Append(
			box(3, "section", 0, 0, 500, 500).Append(
				box(4, "div", 10, 10, 200, 100, dom.Attr{Name: "class", Value: "card"}).Append(
					box(5, "button", 20, 20, 50, 20),
				),
				box(6, "p", 10, 200, 300, 40),
			),
			box(7, "div", 600, 0, 100, 100, dom.Attr{Name: dom.OverlayMarker, Value: "1"}).Append(
				box(8, "button", 610, 10, 40, 20),
			),
		),
	)
	return dom.FromRoot(root)
}

func ids(hits []Hit) []int {
	out := make([]int, len(hits))
	for i, h := range hits {
		out[i] = h.Node.ID
	}
	return out
}

func TestResolveAtPoint_Deepest(t *testing.T) {
	d := page()
	n := ResolveAtPoint(d, 30, 25)
	require.NotNil(t, n)
	assert.Equal(t, 5, n.ID)

	n = ResolveAtPoint(d, 150, 50)
	require.NotNil(t, n)
	assert.Equal(t, 4, n.ID)
}

func TestResolveAtPoint_Repeatable(t *testing.T) {
	d := page()
	first := ResolveAtPoint(d, 30, 25)
	for i := 0; i < 5; i++ {
		assert.Same(t, first, ResolveAtPoint(d, 30, 25))
	}
}

func TestResolveAtPoint_PaintOrderWins(t *testing.T) {
	d := page()
	// a positioned popup drawn above the button but earlier in the document
	d.Node(3).PaintOrder = 10
	n := ResolveAtPoint(d, 30, 25)
	require.NotNil(t, n)
	assert.Equal(t, 3, n.ID)
}

func TestResolveAtPoint_SkipsInert(t *testing.T) {
	d := page()
	d.Node(5).Inert = true
	n := ResolveAtPoint(d, 30, 25)
	require.NotNil(t, n)
	assert.Equal(t, 4, n.ID)
}

func TestResolveAtPoint_Overlay(t *testing.T) {
	d := page()
	assert.Nil(t, ResolveAtPoint(d, 620, 15))
	assert.Nil(t, ResolveAtPoint(d, 650, 90))
}

func TestResolveAtPoint_Miss(t *testing.T) {
	d := page()
	assert.Nil(t, ResolveAtPoint(d, 5000, 5000))
	assert.Nil(t, ResolveAtPoint(nil, 1, 1))
}

func TestResolveInRectangle_ContainerAndChild(t *testing.T) {
	d := page()
	hits := ResolveInRectangle(d, 15, 15, 100, 60, DefaultMinSize)
	assert.Equal(t, []int{5}, ids(hits))
}

func TestResolveInRectangle_NormalizesCorners(t *testing.T) {
	d := page()
	a := ResolveInRectangle(d, 15, 15, 100, 60, DefaultMinSize)
	b := ResolveInRectangle(d, 100, 60, 15, 15, DefaultMinSize)
	assert.Equal(t, ids(a), ids(b))
}

func TestResolveInRectangle_DocumentOrder(t *testing.T) {
	d := page()
	hits := ResolveInRectangle(d, 0, 0, 400, 230, DefaultMinSize)
	assert.Equal(t, []int{5, 6}, ids(hits))
	assert.Equal(t, d.Node(6).Rect, hits[1].Rect)
}

func TestResolveInRectangle_NoAncestorPairs(t *testing.T) {
	d := page()
	hits := ResolveInRectangle(d, 0, 0, 1000, 1000, DefaultMinSize)
	for i := range hits {
		for j := range hits {
			if i != j {
				assert.False(t, hits[i].Node.Contains(hits[j].Node),
					"%d is an ancestor of %d", hits[i].Node.ID, hits[j].Node.ID)
			}
		}
	}
}

func TestResolveInRectangle_MinSizeAndOpenEdges(t *testing.T) {
	d := page()
	d.Node(5).Rect.Height = 5
	hits := ResolveInRectangle(d, 15, 15, 100, 60, DefaultMinSize)
	assert.Equal(t, []int{4}, ids(hits), "a 5px tall button is too small")

	// touching the card's right edge only
	hits = ResolveInRectangle(d, 210, 10, 260, 50, DefaultMinSize)
	assert.Equal(t, []int{3}, ids(hits))
}

func TestResolveInRectangle_ExcludesOverlay(t *testing.T) {
	d := page()
	hits := ResolveInRectangle(d, 590, 0, 720, 120, DefaultMinSize)
	assert.Empty(t, hits)
}

func TestResolveInRectangle_Empty(t *testing.T) {
	assert.Empty(t, ResolveInRectangle(page(), 900, 900, 950, 950, DefaultMinSize))
	assert.Nil(t, ResolveInRectangle(nil, 0, 0, 1, 1, DefaultMinSize))
}
