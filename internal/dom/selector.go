package dom

import (
	"fmt"
	"strings"
)

// Selector returns a CSS path for n: "#id" when the element has an id,
// otherwise tag.firstClass segments from n up to, but excluding, body.
func Selector(n *Node) string {
	if n == nil || n.IsText() {
		return ""
	}
	if id := n.ElementID(); id != "" {
		return "#" + id
	}
	var parts []string
	for cur := n; cur != nil && cur.Tag != "body"; cur = cur.Parent {
		seg := cur.Tag
		if cls := cur.Classes(); len(cls) > 0 {
			seg += "." + cls[0]
		}
		parts = append(parts, seg)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, " > ")
}

// XPath returns an XPath expression for n. Elements with an id yield
// //*[@id="..."]; others an absolute path with 1-based same-tag indexes.
func XPath(n *Node) string {
	if n == nil || n.IsText() {
		return ""
	}
	if id := n.ElementID(); id != "" {
		return fmt.Sprintf(`//*[@id="%s"]`, id)
	}
	var parts []string
	for cur := n; cur != nil; cur = cur.Parent {
		idx := 1
		if cur.Parent != nil {
			for _, sib := range cur.Parent.Children {
				if sib == cur {
					break
				}
				if sib.Tag == cur.Tag {
					idx++
				}
			}
		}
		parts = append(parts, fmt.Sprintf("%s[%d]", cur.Tag, idx))
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return "/" + strings.Join(parts, "/")
}
