package stream

import (
	"strings"

	"github.com/mj1618/fiberscope/internal/dom"
	"github.com/mj1618/fiberscope/internal/srcpath"
)

// DefaultMatchDepth bounds how many ancestors are examined by MatchElement.
const DefaultMatchDepth = 10

// maxGuesses bounds the guessed component stack.
const maxGuesses = 5

// Match is the outcome of associating an element with mined components.
type Match struct {
	// Primary is the matched or best-guess component, nil when none.
	Primary *Component
	// Stack lists the matched component, or up to five guesses.
	Stack []Component
	// Matched is true when Primary was found through the element's own
	// attributes or classes rather than guessed.
	Matched bool
}

// MatchElement walks from n up through at most maxDepth ancestors. At each
// level data-* attributes are tested before class tokens. When nothing
// matches the first unique user components are returned as a guess.
func MatchElement(n *dom.Node, comps []Component, maxDepth int) Match {
	if len(comps) == 0 {
		return Match{}
	}
	for cur, depth := n, 0; cur != nil && depth < maxDepth; cur, depth = cur.Parent, depth+1 {
		if c := matchAttrs(cur, comps); c != nil {
			return Match{Primary: c, Stack: []Component{*c}, Matched: true}
		}
		if c := matchClasses(cur, comps); c != nil {
			return Match{Primary: c, Stack: []Component{*c}, Matched: true}
		}
	}
	guesses := uniqueUserComponents(comps)
	if len(guesses) == 0 {
		return Match{}
	}
	if len(guesses) > maxGuesses {
		guesses = guesses[:maxGuesses]
	}
	first := guesses[0]
	return Match{Primary: &first, Stack: guesses}
}

func matchAttrs(n *dom.Node, comps []Component) *Component {
	for _, a := range n.Attrs {
		if !strings.HasPrefix(a.Name, "data-") || a.Value == "" {
			continue
		}
		value := strings.ToLower(a.Value)
		name := strings.ToLower(a.Name)
		for i := range comps {
			lower := strings.ToLower(comps[i].Name)
			if strings.Contains(value, lower) || strings.Contains(name, lower) {
				return &comps[i]
			}
		}
	}
	return nil
}

func matchClasses(n *dom.Node, comps []Component) *Component {
	for _, cls := range n.Classes() {
		pascal := kebabToPascal(cls)
		for i := range comps {
			if strings.EqualFold(comps[i].Name, pascal) {
				return &comps[i]
			}
		}
	}
	return nil
}

// kebabToPascal upper-cases the first letter of every dash-separated part
// and joins them.
func kebabToPascal(s string) string {
	parts := strings.Split(s, "-")
	for i, p := range parts {
		if p == "" {
			continue
		}
		r := []rune(p)
		parts[i] = strings.ToUpper(string(r[0])) + string(r[1:])
	}
	return strings.Join(parts, "")
}

func uniqueUserComponents(comps []Component) []Component {
	seen := make(map[string]bool)
	var out []Component
	for _, c := range comps {
		if strings.HasPrefix(c.Name, "_") || !strings.Contains(c.File, "/") || srcpath.IsDependency(c.File) {
			continue
		}
		if seen[c.Name] {
			continue
		}
		seen[c.Name] = true
		out = append(out, c)
	}
	return out
}
