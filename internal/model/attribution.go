package model

// Provenance names the strategy that produced an attribution.
type Provenance string

const (
	ProvenanceDebugMetadata Provenance = "instance-debug-metadata"
	ProvenanceStackTrace    Provenance = "stack-trace-parse"
	ProvenanceOwnerChain    Provenance = "owner-chain"
	ProvenanceStreamMatch   Provenance = "stream-payload-match"
	ProvenanceStreamGuess   Provenance = "stream-payload-guess"
	ProvenanceUnresolved    Provenance = "unresolved"
)

// SourceLocation is a normalized authoring location. All fields are nil
// when the location could not be recovered.
type SourceLocation struct {
	File   *string `yaml:"file"   json:"file"`
	Line   *int    `yaml:"line"   json:"line"`
	Column *int    `yaml:"column" json:"column"`
}

// NewSourceLocation builds a location from resolved values. Zero line or
// column values are left nil.
func NewSourceLocation(file string, line, column int) SourceLocation {
	loc := SourceLocation{}
	if file != "" {
		loc.File = &file
	}
	if line > 0 {
		loc.Line = &line
	}
	if column > 0 {
		loc.Column = &column
	}
	return loc
}

// Resolved reports whether a file is known.
func (l SourceLocation) Resolved() bool { return l.File != nil }

// AttributionResult pairs a location with how it was obtained. Exact is
// true only for locations read from instance debug metadata.
type AttributionResult struct {
	SourceLocation `yaml:",inline"`
	Provenance     Provenance `yaml:"provenance" json:"provenance"`
	Exact          bool       `yaml:"exact"      json:"exact"`
}

// Unresolved is the attribution recorded when every strategy fails.
func Unresolved() AttributionResult {
	return AttributionResult{Provenance: ProvenanceUnresolved}
}

// ComponentFrame is one entry of a component stack.
type ComponentFrame struct {
	Name   string            `yaml:"name"   json:"name"`
	Source AttributionResult `yaml:"source" json:"source"`
}
