package dom

import (
	"regexp"
	"strings"

	"github.com/mj1618/fiberscope/internal/model"
)

// maxTreeText is the exclusive upper bound on reported text node length.
const maxTreeText = 200

var stateClassPattern = regexp.MustCompile(`^(hover|active|focus|disabled|checked|selected):(.+)$`)

// Tree builds the structural description of the subtree rooted at n, down
// to maxDepth levels below it. Script and style elements are skipped,
// the style attribute is dropped and only short non-empty text is kept.
func Tree(n *Node, maxDepth int) *model.DOMTreeNode {
	return tree(n, 0, maxDepth)
}

func tree(n *Node, depth, maxDepth int) *model.DOMTreeNode {
	if n == nil || n.IsText() || depth > maxDepth {
		return nil
	}
	if n.Tag == "script" || n.Tag == "style" {
		return nil
	}
	out := &model.DOMTreeNode{Type: "element", TagName: n.Tag}
	for _, a := range n.Attrs {
		if a.Name == "style" {
			continue
		}
		if out.Attributes == nil {
			out.Attributes = make(map[string]string)
		}
		out.Attributes[a.Name] = a.Value
	}
	out.States = StateClasses(n)
	for _, c := range n.Children {
		if c.IsText() {
			if text := strings.TrimSpace(c.Text); text != "" && len([]rune(text)) < maxTreeText {
				out.Children = append(out.Children, model.DOMTreeNode{Type: "text", Value: text})
			}
			continue
		}
		if child := tree(c, depth+1, maxDepth); child != nil {
			out.Children = append(out.Children, *child)
		}
	}
	return out
}

// StateClasses groups utility classes of the form "state:style" by state.
// It returns nil when the element has none.
func StateClasses(n *Node) map[string][]string {
	var out map[string][]string
	for _, cls := range n.Classes() {
		m := stateClassPattern.FindStringSubmatch(cls)
		if m == nil {
			continue
		}
		if out == nil {
			out = make(map[string][]string)
		}
		out[m[1]] = append(out[m[1]], m[2])
	}
	return out
}
