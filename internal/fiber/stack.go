package fiber

import "github.com/mj1618/fiberscope/internal/model"

// DefaultStackDepth is the default number of ancestors examined when
// building a component stack.
const DefaultStackDepth = 10

// ComponentStack walks from inst up the return chain, examining at most
// maxDepth instances, and returns a frame for every user component found,
// innermost first. attribute may be nil.
func ComponentStack(inst *Instance, maxDepth int, attribute func(*Instance) model.AttributionResult) []model.ComponentFrame {
	var frames []model.ComponentFrame
	for cur, i := inst, 0; cur != nil && i < maxDepth; cur, i = cur.Return, i+1 {
		if !cur.Kind().IsComponent() {
			continue
		}
		name := Name(cur)
		if name == nil || !IsUserComponent(*name) {
			continue
		}
		frame := model.ComponentFrame{Name: *name, Source: model.Unresolved()}
		if attribute != nil {
			frame.Source = attribute(cur)
		}
		frames = append(frames, frame)
	}
	return frames
}

// NearestComponentName returns the name of the closest user component at
// or above inst, or "" when there is none. The walk is bounded by
// maxDepth instances.
func NearestComponentName(inst *Instance, maxDepth int) string {
	for cur, i := inst, 0; cur != nil && i < maxDepth; cur, i = cur.Return, i+1 {
		if !cur.Kind().IsComponent() {
			continue
		}
		if name := Name(cur); name != nil && IsUserComponent(*name) {
			return *name
		}
	}
	return ""
}
