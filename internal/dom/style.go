package dom

// StyleProperties lists the computed style properties reported for a
// selected element.
var StyleProperties = []string{
	"display", "position", "width", "height", "margin", "padding",
	"background", "background-color", "border", "border-radius",
	"color", "font-size", "font-family", "font-weight",
	"flex", "flex-direction", "align-items", "justify-content", "gap",
	"grid", "grid-template-columns", "grid-gap",
}

// StyleSubset returns the relevant computed style values of n, skipping
// empty and default-looking values. It returns nil when nothing remains.
func StyleSubset(n *Node) map[string]string {
	if n == nil || len(n.Style) == 0 {
		return nil
	}
	out := make(map[string]string)
	for _, p := range StyleProperties {
		v := n.Style[p]
		switch v {
		case "", "none", "normal", "0px":
			continue
		}
		out[p] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
