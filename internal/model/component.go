package model

// NodeKind distinguishes host elements from composite components.
type NodeKind string

const (
	KindElement   NodeKind = "element"
	KindComponent NodeKind = "component"
)

// HookState is one entry of a function component's hook list.
type HookState struct {
	Value    any  `yaml:"value"    json:"value"`
	HasQueue bool `yaml:"hasQueue" json:"hasQueue"`
}

// ComponentNode is a node of the extracted component tree.
type ComponentNode struct {
	Name     *string            `yaml:"name"              json:"name"`
	Kind     NodeKind           `yaml:"kind"              json:"kind"`
	TagName  string             `yaml:"tagName,omitempty" json:"tagName,omitempty"`
	Key      *string            `yaml:"key,omitempty"     json:"key,omitempty"`
	Depth    int                `yaml:"depth"             json:"depth"`
	Props    map[string]any     `yaml:"props"             json:"props"`
	State    any                `yaml:"state,omitempty"   json:"state,omitempty"`
	Styles   map[string]string  `yaml:"styles,omitempty"  json:"styles,omitempty"`
	Source   *AttributionResult `yaml:"source,omitempty"  json:"source,omitempty"`
	Children []*ComponentNode   `yaml:"children"          json:"children"`
}

// DisplayName returns the node name or "<anonymous>".
func (n *ComponentNode) DisplayName() string {
	if n == nil || n.Name == nil || *n.Name == "" {
		return "<anonymous>"
	}
	return *n.Name
}

// MaxDepth returns the deepest Depth value in the tree rooted at n, or -1
// for a nil tree.
func (n *ComponentNode) MaxDepth() int {
	if n == nil {
		return -1
	}
	deepest := n.Depth
	for _, c := range n.Children {
		if d := c.MaxDepth(); d > deepest {
			deepest = d
		}
	}
	return deepest
}

// HooksState is the state reported for function components.
type HooksState struct {
	Hooks []HookState `yaml:"hooks" json:"hooks"`
}
