package output

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/stream"
	"gopkg.in/yaml.v3"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// OutputFormat is the current output format, set by the root command's --format flag.
var OutputFormat Format = FormatYAML

// PrettyOutput enables pretty-printing for JSON output.
var PrettyOutput bool

// ComponentsResult is the top-level output of the `components` command.
type ComponentsResult struct {
	URL        string                 `yaml:"url"               json:"url"`
	TS         int64                  `yaml:"ts"                json:"ts"`
	Target     *model.SelectedTarget  `yaml:"target,omitempty"  json:"target,omitempty"`
	Runtime    string                 `yaml:"runtime,omitempty" json:"runtime,omitempty"`
	Components []model.FlatComponent  `yaml:"components"        json:"components"`
	Stack      []model.ComponentFrame `yaml:"stack,omitempty"   json:"stack,omitempty"`
}

// MineResult is the top-level output of the `mine` command.
type MineResult struct {
	URL        string             `yaml:"url"        json:"url"`
	TS         int64              `yaml:"ts"         json:"ts"`
	Components []stream.Component `yaml:"components" json:"components"`
}

// Print serializes v to stdout in the current output format.
func Print(v interface{}) error {
	switch OutputFormat {
	case FormatJSON:
		if PrettyOutput {
			return PrintPrettyJSON(v)
		}
		return PrintJSON(v)
	case FormatYAML:
		return PrintYAML(v)
	default:
		return fmt.Errorf("unsupported output format: %s", OutputFormat)
	}
}

// PrintJSON serializes v to stdout as compact single-line JSON.
func PrintJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintPrettyJSON serializes v to stdout as indented JSON.
func PrintPrettyJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("json encode: %w", err)
	}
	return nil
}

// PrintYAML serializes v to stdout as YAML.
func PrintYAML(v interface{}) error {
	enc := yaml.NewEncoder(os.Stdout)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}
