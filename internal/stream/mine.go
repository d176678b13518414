// Package stream recovers component source locations from the streamed
// server-component payloads a page embeds while hydrating.
package stream

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/srcpath"
)

// pushMarker identifies inline scripts that append to the stream buffer.
const pushMarker = "__next_f.push"

// componentRecord matches ["Name","file",line,col sequences of a payload.
var componentRecord = regexp.MustCompile(`\[\[?"([A-Z_][A-Za-z0-9_]*)","([^"]+)",(\d+),(\d+)`)

// Component is a component record mined from a payload.
type Component struct {
	Name   string `yaml:"name"   json:"name"`
	File   string `yaml:"file"   json:"file"`
	Line   int    `yaml:"line"   json:"line"`
	Column int    `yaml:"column" json:"column"`
}

// Attribution converts the record into an attribution result with the
// given provenance.
func (c Component) Attribution(p model.Provenance) model.AttributionResult {
	return model.AttributionResult{
		SourceLocation: model.NewSourceLocation(c.File, c.Line, c.Column),
		Provenance:     p,
	}
}

// PageSources holds the raw payload text available on a page.
type PageSources struct {
	// StreamBuffers are the string payloads of the page's stream buffer
	// entries, in push order.
	StreamBuffers []string
	// InlineScripts are the text contents of the page's inline scripts.
	InlineScripts []string
}

// Mine extracts component records from the stream buffers. Inline scripts
// are consulted only when the buffers yield nothing.
func Mine(src PageSources) []Component {
	var out []Component
	for _, payload := range src.StreamBuffers {
		out = appendRecords(out, payload)
	}
	if len(out) > 0 {
		return out
	}
	for _, script := range src.InlineScripts {
		if !strings.Contains(script, pushMarker) {
			continue
		}
		out = appendRecords(out, strings.ReplaceAll(script, `\"`, `"`))
	}
	return out
}

func appendRecords(out []Component, text string) []Component {
	for _, m := range componentRecord.FindAllStringSubmatch(text, -1) {
		name, file := m[1], m[2]
		if strings.HasPrefix(name, "_") || name == "html" || name == "body" {
			continue
		}
		file = srcpath.Normalize(file)
		if file == "" || srcpath.IsDependency(file) {
			continue
		}
		line, _ := strconv.Atoi(m[3])
		col, _ := strconv.Atoi(m[4])
		out = append(out, Component{Name: name, File: file, Line: line, Column: col})
	}
	return out
}
