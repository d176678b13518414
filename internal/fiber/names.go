package fiber

import (
	"strings"
	"unicode"
)

// maxTypeNesting bounds how many wrapper types are unwrapped when looking
// for a name.
const maxTypeNesting = 8

// frameworkInternal lists component names contributed by framework
// routers, boundaries and dev tooling rather than by the application.
var frameworkInternal = map[string]bool{
	"InnerLayoutRouter":                 true,
	"RedirectErrorBoundary":             true,
	"RedirectBoundary":                  true,
	"HTTPAccessFallbackErrorBoundary":   true,
	"HTTPAccessFallbackBoundary":        true,
	"LoadingBoundary":                   true,
	"ErrorBoundary":                     true,
	"InnerScrollAndFocusHandler":        true,
	"ScrollAndFocusHandler":             true,
	"RenderFromTemplateContext":         true,
	"OuterLayoutRouter":                 true,
	"body":                              true,
	"html":                              true,
	"DevRootHTTPAccessFallbackBoundary": true,
	"AppDevOverlayErrorBoundary":        true,
	"AppDevOverlay":                     true,
	"HotReload":                         true,
	"Router":                            true,
	"ErrorBoundaryHandler":              true,
	"AppRouter":                         true,
	"ServerRoot":                        true,
	"SegmentStateProvider":              true,
	"RootErrorBoundary":                 true,
	"LoadableComponent":                 true,
	"MotionDOMComponent":                true,
}

// Name returns the display name of inst, or nil when none is known. The
// type's own name wins, then its display name, then a host tag name, then
// the names of wrapped types, and finally the element type.
func Name(inst *Instance) *string {
	if inst == nil {
		return nil
	}
	for _, t := range []*TypeInfo{inst.Type, inst.ElementType} {
		if name := typeName(t); name != "" {
			return &name
		}
	}
	return nil
}

func typeName(t *TypeInfo) string {
	for i := 0; t != nil && i < maxTypeNesting; i++ {
		switch {
		case t.Name != "":
			return t.Name
		case t.DisplayName != "":
			return t.DisplayName
		case t.Raw != "":
			return t.Raw
		}
		t = t.Wrapped
	}
	return ""
}

// IsUserComponent reports whether name looks like an application component
// rather than a host element, a framework internal or a context provider.
func IsUserComponent(name string) bool {
	if name == "" || strings.HasPrefix(name, "_") || frameworkInternal[name] {
		return false
	}
	first := []rune(name)[0]
	if unicode.ToUpper(first) != first {
		return false
	}
	if strings.HasPrefix(name, "Primitive.") {
		return false
	}
	if strings.Contains(name, "Provider") && strings.Contains(name, "Context") {
		return false
	}
	return true
}
