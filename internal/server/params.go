package server

import "fmt"

// StringParam returns params[key] as a string.
func StringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok && v != nil {
		if s, ok := v.(string); ok {
			return s
		}
		// Numbers arrive as float64 from JSON clients.
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

// IntParam returns params[key] as an int.
func IntParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case float64:
			return int(n)
		case int64:
			return int(n)
		}
	}
	return defaultVal
}

// FloatParam returns params[key] as a float64. ok is false when the key is
// missing or not a number.
func FloatParam(params map[string]interface{}, key string) (float64, bool) {
	switch n := params[key].(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

// BoolParam returns params[key] as a bool.
func BoolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}
