package model

// SelectedTarget describes a resolved element. It is built once per
// selection and never mutated afterwards.
type SelectedTarget struct {
	TagName  string   `yaml:"tagName"            json:"tagName"`
	ID       string   `yaml:"id,omitempty"       json:"id,omitempty"`
	Classes  []string `yaml:"classes,omitempty"  json:"classes,omitempty"`
	Rect     Rect     `yaml:"rect"               json:"rect"`
	Selector string   `yaml:"selector"           json:"selector"`
	XPath    string   `yaml:"xpath"              json:"xpath"`
	NodeID   int      `yaml:"nodeId"             json:"nodeId"`
}
