package model

import "testing"

func TestFormatContext(t *testing.T) {
	file := "src/Button.tsx"
	line, col := 12, 5
	stack := []ComponentFrame{
		{Name: "Button", Source: AttributionResult{
			SourceLocation: SourceLocation{File: &file, Line: &line, Column: &col},
			Provenance:     ProvenanceDebugMetadata,
			Exact:          true,
		}},
		{Name: "Toolbar", Source: Unresolved()},
	}
	want := "<button class=\"btn\">Save</button>\n  in Button (at src/Button.tsx:12:5)\n  in Toolbar"
	if got := FormatContext(`<button class="btn">Save</button>`, stack); got != want {
		t.Errorf("got %q\nwant %q", got, want)
	}
}

func TestNewSourceLocation(t *testing.T) {
	loc := NewSourceLocation("", 0, 0)
	if loc.File != nil || loc.Line != nil || loc.Column != nil {
		t.Errorf("expected all-nil location, got %+v", loc)
	}
	loc = NewSourceLocation("a.tsx", 3, 0)
	if !loc.Resolved() || *loc.Line != 3 || loc.Column != nil {
		t.Errorf("unexpected location %+v", loc)
	}
}
