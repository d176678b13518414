package platform

import (
	"fmt"
	"strconv"
	"strings"
)

// EventType identifies an operator interaction.
type EventType string

const (
	EventMove    EventType = "move"
	EventClick   EventType = "click"
	EventDrag    EventType = "drag"
	EventClear   EventType = "clear"
	EventConfirm EventType = "confirm"
	EventCancel  EventType = "cancel"
	EventLayout  EventType = "layout"
)

// Event is an interaction delivered from the page. Coordinates are
// viewport-relative CSS pixels; X2 and Y2 are set for drags only.
type Event struct {
	Type EventType `json:"type"`
	X    float64   `json:"x"`
	Y    float64   `json:"y"`
	X2   float64   `json:"x2"`
	Y2   float64   `json:"y2"`
}

// OpenOptions controls how a page is opened.
type OpenOptions struct {
	URL    string
	Width  int // viewport width, 0 = browser default
	Height int // viewport height, 0 = browser default
}

// ParseFloats parses n comma-separated numbers.
func ParseFloats(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid value %q: expected %d comma-separated numbers", s, n)
	}
	vals := make([]float64, n)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", s, err)
		}
		vals[i] = v
	}
	return vals, nil
}

// ParsePoint parses an "x,y" string.
func ParsePoint(s string) (x, y float64, err error) {
	v, err := ParseFloats(s, 2)
	if err != nil {
		return 0, 0, err
	}
	return v[0], v[1], nil
}

// ParseRect parses an "x1,y1,x2,y2" corner pair.
func ParseRect(s string) ([4]float64, error) {
	v, err := ParseFloats(s, 4)
	if err != nil {
		return [4]float64{}, err
	}
	return [4]float64{v[0], v[1], v[2], v[3]}, nil
}
