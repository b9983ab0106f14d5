// Package geom provides the rectangle and point types shared by the
// positioning engine and its hosts.
//
// All coordinates are viewport coordinates: x grows to the right, y grows
// downward and (0, 0) is the top-left corner of the visible area. Units are
// whatever the host measures in (CSS pixels in a browser, cells in a
// terminal).
package geom

import "fmt"

// Point is a location in viewport coordinates.
type Point struct {
	X float64 `json:"x" toml:"x" bson:"x"`
	Y float64 `json:"y" toml:"y" bson:"y"`
}

// Add returns p translated by q.
func (p Point) Add(q Point) Point { return Point{X: p.X + q.X, Y: p.Y + q.Y} }

// Sub returns the vector from q to p.
func (p Point) Sub(q Point) Point { return Point{X: p.X - q.X, Y: p.Y - q.Y} }

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`
}

// Area returns Width*Height.
func (s Size) Area() float64 { return s.Width * s.Height }

// Rect is an axis-aligned rectangle. Right and Bottom are stored alongside
// Width and Height so values measured by a host can be passed through
// unchanged; use NewRect to build a consistent one.
type Rect struct {
	Top    float64 `json:"top" toml:"top" bson:"top"`
	Left   float64 `json:"left" toml:"left" bson:"left"`
	Width  float64 `json:"width" toml:"width" bson:"width"`
	Height float64 `json:"height" toml:"height" bson:"height"`
	Right  float64 `json:"right" toml:"right" bson:"right"`
	Bottom float64 `json:"bottom" toml:"bottom" bson:"bottom"`
}

// NewRect returns the rectangle with the given top-left corner and size.
func NewRect(left, top, width, height float64) Rect {
	return Rect{
		Top:    top,
		Left:   left,
		Width:  width,
		Height: height,
		Right:  left + width,
		Bottom: top + height,
	}
}

// FromEdges returns the rectangle spanning the given edges. Inverted edges
// produce a zero-sized rectangle at (left, top).
func FromEdges(left, top, right, bottom float64) Rect {
	return NewRect(left, top, max(0, right-left), max(0, bottom-top))
}

// Normalize recomputes Right and Bottom from Left/Top/Width/Height. Hosts
// that only fill in the origin and size can call it before handing the
// rectangle to the engine.
func (r Rect) Normalize() Rect { return NewRect(r.Left, r.Top, r.Width, r.Height) }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Origin returns the top-left corner.
func (r Rect) Origin() Point { return Point{X: r.Left, Y: r.Top} }

// Center returns the midpoint.
func (r Rect) Center() Point {
	return Point{X: r.Left + r.Width/2, Y: r.Top + r.Height/2}
}

// Area returns Width*Height.
func (r Rect) Area() float64 { return r.Width * r.Height }

// IsZero reports whether every field is zero. Headless hosts report this
// value for elements they cannot measure.
func (r Rect) IsZero() bool { return r == Rect{} }

// IsEmpty reports whether the rectangle has no area.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Translate returns r moved by d.
func (r Rect) Translate(d Point) Rect {
	return NewRect(r.Left+d.X, r.Top+d.Y, r.Width, r.Height)
}

// MoveTo returns r with its top-left corner at p.
func (r Rect) MoveTo(p Point) Rect { return NewRect(p.X, p.Y, r.Width, r.Height) }

// Inset shrinks r by n on every edge. The result never has negative size.
func (r Rect) Inset(n float64) Rect {
	return FromEdges(r.Left+n, r.Top+n, r.Right-n, r.Bottom-n)
}

// Contains reports whether o lies entirely inside r (edges inclusive).
func (r Rect) Contains(o Rect) bool {
	return o.Left >= r.Left && o.Top >= r.Top && o.Right <= r.Right && o.Bottom <= r.Bottom
}

// Intersect returns the overlapping region of r and o, or a zero-sized
// rectangle when they do not overlap.
func (r Rect) Intersect(o Rect) Rect {
	return FromEdges(max(r.Left, o.Left), max(r.Top, o.Top), min(r.Right, o.Right), min(r.Bottom, o.Bottom))
}

// String implements fmt.Stringer.
func (r Rect) String() string {
	return fmt.Sprintf("(%g,%g %gx%g)", r.Left, r.Top, r.Width, r.Height)
}

// NarrowViewport returns the visible area of a width×height viewport with
// margin removed from every edge. The margin is clamped to half of the
// smaller dimension so the result never has negative size.
func NarrowViewport(width, height, margin float64) Rect {
	width, height = max(0, width), max(0, height)
	margin = max(0, min(margin, width/2, height/2))
	return NewRect(margin, margin, width-2*margin, height-2*margin)
}
