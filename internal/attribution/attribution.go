// Package attribution maps component instances to the source locations
// they were authored at.
package attribution

import (
	"github.com/mj1618/fiberscope/internal/fiber"
	"github.com/mj1618/fiberscope/internal/model"
	"github.com/mj1618/fiberscope/internal/srcpath"
)

// Attribute runs the attribution strategies against inst in order and
// returns the first success:
//
//  1. the instance's own debug source record (exact)
//  2. the first project frame of its captured creation stack
//  3. the debug source record of its owner
//
// When all fail the result is unresolved with every location field nil.
func Attribute(inst *fiber.Instance) model.AttributionResult {
	if inst == nil {
		return model.Unresolved()
	}
	if loc, ok := fromDebugSource(inst.DebugSource); ok {
		return model.AttributionResult{SourceLocation: loc, Provenance: model.ProvenanceDebugMetadata, Exact: true}
	}
	if inst.DebugStack != "" {
		for _, f := range ParseStack(inst.DebugStack) {
			if srcpath.IsLikelySourceFile(f.File) {
				return model.AttributionResult{
					SourceLocation: model.NewSourceLocation(srcpath.Normalize(f.File), f.Line, f.Column),
					Provenance:     model.ProvenanceStackTrace,
				}
			}
		}
	}
	if inst.Owner != nil {
		if loc, ok := fromDebugSource(inst.Owner.DebugSource); ok {
			return model.AttributionResult{SourceLocation: loc, Provenance: model.ProvenanceOwnerChain}
		}
	}
	return model.Unresolved()
}

func fromDebugSource(src *fiber.DebugSource) (model.SourceLocation, bool) {
	if src == nil || !srcpath.IsLikelySourceFile(src.FileName) {
		return model.SourceLocation{}, false
	}
	return model.NewSourceLocation(srcpath.Normalize(src.FileName), src.LineNumber, src.ColumnNumber), true
}
