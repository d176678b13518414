package model

import "math"

// Rect is a viewport-relative rectangle in CSS pixels.
type Rect struct {
	Top    float64 `yaml:"top"    json:"top"`
	Left   float64 `yaml:"left"   json:"left"`
	Width  float64 `yaml:"width"  json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.Left + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Top + r.Height }

// Empty reports whether the rectangle has no area.
func (r Rect) Empty() bool { return r.Width <= 0 || r.Height <= 0 }

// Contains reports whether the point lies inside r. The left and top
// edges are inclusive, the right and bottom edges exclusive.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.Left && x < r.Right() && y >= r.Top && y < r.Bottom()
}

// Intersects reports whether two rectangles overlap. Rectangles that only
// touch along an edge do not intersect.
func (r Rect) Intersects(o Rect) bool {
	return r.Left < o.Right() && r.Right() > o.Left && r.Top < o.Bottom() && r.Bottom() > o.Top
}

// RectFromCorners builds a rectangle from two arbitrary corner points.
func RectFromCorners(x1, y1, x2, y2 float64) Rect {
	left, right := math.Min(x1, x2), math.Max(x1, x2)
	top, bottom := math.Min(y1, y2), math.Max(y1, y2)
	return Rect{Top: top, Left: left, Width: right - left, Height: bottom - top}
}

// Bounds is a document-relative capture region in CSS pixels.
type Bounds struct {
	X      float64 `yaml:"x"      json:"x"`
	Y      float64 `yaml:"y"      json:"y"`
	Width  float64 `yaml:"width"  json:"width"`
	Height float64 `yaml:"height" json:"height"`
}

// PadBounds converts a viewport rectangle into document coordinates and
// grows it by padX of its width on each side horizontally and padY of its
// height vertically. The origin is clamped at zero.
func PadBounds(r Rect, scrollX, scrollY, padX, padY float64) Bounds {
	px := r.Width * padX
	py := r.Height * padY
	b := Bounds{
		X:      r.Left + scrollX - px,
		Y:      r.Top + scrollY - py,
		Width:  r.Width + 2*px,
		Height: r.Height + 2*py,
	}
	if b.X < 0 {
		b.Width += b.X
		b.X = 0
	}
	if b.Y < 0 {
		b.Height += b.Y
		b.Y = 0
	}
	return b
}

// Union returns the smallest bounds covering both b and o. A zero-area
// receiver is treated as empty.
func (b Bounds) Union(o Bounds) Bounds {
	if b.Width <= 0 || b.Height <= 0 {
		return o
	}
	if o.Width <= 0 || o.Height <= 0 {
		return b
	}
	x1, y1 := math.Min(b.X, o.X), math.Min(b.Y, o.Y)
	x2 := math.Max(b.X+b.Width, o.X+o.Width)
	y2 := math.Max(b.Y+b.Height, o.Y+o.Height)
	return Bounds{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}
}
