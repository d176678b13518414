package model

// FlatComponent is a component node with a path breadcrumb instead of
// children.
type FlatComponent struct {
	Name    string             `yaml:"name"              json:"name"`
	Kind    NodeKind           `yaml:"kind"              json:"kind"`
	TagName string             `yaml:"tagName,omitempty" json:"tagName,omitempty"`
	Depth   int                `yaml:"depth"             json:"depth"`
	Source  *AttributionResult `yaml:"source,omitempty"  json:"source,omitempty"`
	Path    string             `yaml:"path,omitempty"    json:"path,omitempty"`
}

// FlattenComponents converts a component tree into a flat list in
// pre-order. Each entry gets a path of display names joined with " > ".
// Host nodes contribute their tag name to the path.
func FlattenComponents(root *ComponentNode) []FlatComponent {
	var result []FlatComponent
	if root != nil {
		flattenRecursive(root, "", &result)
	}
	return result
}

func flattenRecursive(n *ComponentNode, parentPath string, result *[]FlatComponent) {
	label := n.DisplayName()
	if n.Kind == KindElement && n.TagName != "" {
		label = n.TagName
	}
	currentPath := label
	if parentPath != "" {
		currentPath = parentPath + " > " + label
	}

	*result = append(*result, FlatComponent{
		Name:    n.DisplayName(),
		Kind:    n.Kind,
		TagName: n.TagName,
		Depth:   n.Depth,
		Source:  n.Source,
		Path:    currentPath,
	})

	for _, child := range n.Children {
		flattenRecursive(child, currentPath, result)
	}
}
