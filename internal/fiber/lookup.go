package fiber

import (
	"sort"
	"strings"

	"github.com/mj1618/fiberscope/internal/dom"
)

// LookupFunc finds the instance attached to a rendered node.
type LookupFunc func(*dom.Node) *Instance

// InstanceKeyPrefixes are the expando key prefixes under which the
// renderer attaches instances to DOM nodes, in lookup priority.
var InstanceKeyPrefixes = []string{
	"__reactFiber$",
	"__reactInternalInstance$",
	"__reactContainer$",
}

// LegacyRootKey is the expando set on containers rendered with the legacy
// root API. Its captured value is the root's first child instance.
const LegacyRootKey = "_reactRootContainer"

// ConventionLookup resolves instances through the node's expando keys
// following the renderer's naming convention.
func ConventionLookup(g *Graph) LookupFunc {
	return func(n *dom.Node) *Instance {
		if n == nil || len(n.Expandos) == 0 {
			return nil
		}
		keys := make([]string, 0, len(n.Expandos))
		for k := range n.Expandos {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, prefix := range InstanceKeyPrefixes {
			for _, k := range keys {
				if strings.HasPrefix(k, prefix) {
					if inst := g.Instance(n.Expandos[k]); inst != nil {
						return inst
					}
				}
			}
		}
		return g.Instance(n.Expandos[LegacyRootKey])
	}
}
