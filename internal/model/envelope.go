package model

import (
	"fmt"
	"strings"
)

// AttributionPath records which mechanism produced the component data of
// an envelope.
type AttributionPath string

const (
	PathInstanceTree  AttributionPath = "instance-tree"
	PathStreamPayload AttributionPath = "stream-payload"
	PathNone          AttributionPath = "none"
)

// ScreenshotRef points at captured image bytes. Handle is set while the
// bytes live in memory; Path once they have been written next to the
// extraction document.
type ScreenshotRef struct {
	Handle string `yaml:"handle,omitempty" json:"handle,omitempty"`
	Path   string `yaml:"path,omitempty"   json:"path,omitempty"`
	Bounds Bounds `yaml:"bounds"           json:"bounds"`
	Width  int    `yaml:"width"            json:"width"`
	Height int    `yaml:"height"           json:"height"`
}

// DOMTreeNode is the structural fallback reported for elements with no
// component instance attached. Text nodes carry only Type and Value.
type DOMTreeNode struct {
	Type       string              `yaml:"type"                 json:"type"`
	TagName    string              `yaml:"tagName,omitempty"    json:"tagName,omitempty"`
	Attributes map[string]string   `yaml:"attributes,omitempty" json:"attributes,omitempty"`
	States     map[string][]string `yaml:"states,omitempty"     json:"states,omitempty"`
	Value      string              `yaml:"value,omitempty"      json:"value,omitempty"`
	Children   []DOMTreeNode       `yaml:"children,omitempty"   json:"children,omitempty"`
}

// ExtractionEnvelope is the assembled result for one selected element.
type ExtractionEnvelope struct {
	Target          SelectedTarget    `yaml:"target"                   json:"target"`
	Component       *ComponentNode    `yaml:"component"                json:"component"`
	ComponentStack  []ComponentFrame  `yaml:"componentStack"           json:"componentStack"`
	Attribution     AttributionResult `yaml:"attribution"              json:"attribution"`
	AttributionPath AttributionPath   `yaml:"attributionPath"          json:"attributionPath"`
	Markup          string            `yaml:"markup"                   json:"markup"`
	Styles          map[string]string `yaml:"styles,omitempty"         json:"styles,omitempty"`
	Screenshot      *ScreenshotRef    `yaml:"screenshot,omitempty"     json:"screenshot,omitempty"`
	RuntimeVersion  *string           `yaml:"runtimeVersion"           json:"runtimeVersion"`
	DOMTree         *DOMTreeNode      `yaml:"domTree,omitempty"        json:"domTree,omitempty"`
	Context         string            `yaml:"context,omitempty"        json:"context,omitempty"`
}

// Extraction is the document handed to the output collaborator.
type Extraction struct {
	Success     bool                 `yaml:"success"     json:"success"`
	URL         string               `yaml:"url"         json:"url"`
	Timestamp   string               `yaml:"timestamp"   json:"timestamp"`
	Language    string               `yaml:"language"    json:"language"`
	Extractions []ExtractionEnvelope `yaml:"extractions" json:"extractions"`
}

// FormatContext renders a short plain-text description of a selection:
// an element preview followed by one "in Name (at file:line:col)" line per
// component stack frame, innermost first.
func FormatContext(preview string, stack []ComponentFrame) string {
	var b strings.Builder
	b.WriteString(preview)
	for _, f := range stack {
		name := f.Name
		if name == "" {
			name = "<anonymous>"
		}
		b.WriteString("\n  in ")
		b.WriteString(name)
		if f.Source.File == nil {
			continue
		}
		b.WriteString(" (at ")
		b.WriteString(*f.Source.File)
		if f.Source.Line != nil {
			fmt.Fprintf(&b, ":%d", *f.Source.Line)
			if f.Source.Column != nil {
				fmt.Fprintf(&b, ":%d", *f.Source.Column)
			}
		}
		b.WriteString(")")
	}
	return b.String()
}
