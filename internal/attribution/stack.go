package attribution

import (
	"regexp"
	"strconv"
	"strings"
)

// Frame is one parsed line of a JavaScript stack trace.
type Frame struct {
	Function string
	File     string
	Line     int
	Column   int
}

// stackLine matches V8 frames in both "at Name (file:line:col)" and
// "at file:line:col" form. File names may themselves contain parentheses,
// as bundler layer prefixes do.
var stackLine = regexp.MustCompile(`^\s*at\s+(?:(.+?)\s+\()?(.+?):(\d+):(\d+)\)?\s*$`)

// ParseStack extracts frames from stack text. Lines that do not look like
// frames are skipped; it never fails.
func ParseStack(text string) []Frame {
	var frames []Frame
	for _, line := range strings.Split(text, "\n") {
		m := stackLine.FindStringSubmatch(strings.TrimRight(line, "\r"))
		if m == nil {
			continue
		}
		ln, err := strconv.Atoi(m[3])
		if err != nil {
			continue
		}
		col, err := strconv.Atoi(m[4])
		if err != nil {
			continue
		}
		frames = append(frames, Frame{Function: m[1], File: m[2], Line: ln, Column: col})
	}
	return frames
}
