package fiber

import (
	"encoding/json"

	"github.com/mj1618/fiberscope/internal/model"
)

// ComplexPlaceholder replaces values that cannot be serialized.
const ComplexPlaceholder = "[Object: complex]"

// MaxHooks bounds the number of hook entries read from one instance.
const MaxHooks = 50

// SanitizeProps returns a shallow copy of props safe to serialize:
// children is dropped, functions become placeholders and objects that
// fail to serialize are replaced. It never returns nil.
func SanitizeProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		if k == "children" {
			continue
		}
		out[k] = SanitizeValue(v)
	}
	return out
}

// SanitizeValue makes a single captured value safe to serialize.
func SanitizeValue(v any) any {
	switch val := v.(type) {
	case Func:
		return val.Placeholder()
	case map[string]any, []any, Opaque:
		if _, err := json.Marshal(val); err != nil {
			return ComplexPlaceholder
		}
		return val
	default:
		return val
	}
}

// State returns the serializable state of inst: the memoized state of a
// class instance, otherwise the hook list. It returns nil when there is
// neither.
func State(inst *Instance) any {
	if inst == nil {
		return nil
	}
	if inst.ClassState != nil {
		return SanitizeValue(inst.ClassState)
	}
	var hooks []model.HookState
	for h := inst.Hooks; h != nil && len(hooks) < MaxHooks; h = h.Next {
		hooks = append(hooks, model.HookState{Value: SanitizeValue(h.Value), HasQueue: h.HasQueue})
	}
	if len(hooks) == 0 {
		return nil
	}
	return model.HooksState{Hooks: hooks}
}
