// Package srcpath normalizes file references found in bundler output,
// debug metadata and stack traces into project-relative paths.
package srcpath

import (
	"path"
	"strings"
)

// prefixes are stripped in order; only the first match applies per pass.
var prefixes = []string{
	"webpack-internal:///(rsc)/",
	"webpack-internal:///(ssr)/",
	"webpack-internal:///(app-pages-browser)/",
	"webpack-internal:///",
	"webpack://",
	"file:///",
	"http://localhost:3000/",
	"http://localhost:5173/",
	"rsc://React/Server/",
	"/_next/static/",
}

// dependencyMarkers identify paths that belong to installed packages or
// bundler runtime chunks rather than user code.
var dependencyMarkers = []string{
	"node_modules",
	"bower_components",
	"webpack/",
	".vite/",
	".next/",
}

var sourceExtensions = map[string]bool{
	".js":     true,
	".jsx":    true,
	".ts":     true,
	".tsx":    true,
	".mjs":    true,
	".cjs":    true,
	".vue":    true,
	".svelte": true,
}

// Normalize strips bundler and dev-server prefixes from raw, drops any
// query string and collapses leading slashes. It never fails; input that
// reduces to nothing yields "". Normalize(Normalize(x)) == Normalize(x).
//
// Passes repeat until the string stops changing. After the first pass
// every change shortens the string, so the loop ends.
func Normalize(raw string) string {
	s := raw
	for {
		next := normalizeOnce(s)
		if next == s {
			return s
		}
		s = next
	}
}

func normalizeOnce(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `\`, "/")
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
			break
		}
	}
	if i := strings.IndexByte(s, '?'); i >= 0 {
		s = s[:i]
	}
	if strings.HasPrefix(s, "//") {
		s = "/" + strings.TrimLeft(s, "/")
	}
	return s
}

// IsDependency reports whether a normalized path points into installed
// packages or bundler internals.
func IsDependency(p string) bool {
	for _, m := range dependencyMarkers {
		if strings.Contains(p, m) {
			return true
		}
	}
	return false
}

// IsLikelySourceFile reports whether p (raw or normalized) looks like an
// authored source file of the inspected project.
func IsLikelySourceFile(p string) bool {
	n := Normalize(p)
	if n == "" || IsDependency(n) {
		return false
	}
	return sourceExtensions[strings.ToLower(path.Ext(n))]
}
