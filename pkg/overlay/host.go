package overlay

import "github.com/matzehuels/flexpos/pkg/geom"

// Host answers geometry queries for one overlay. The engine never touches a
// real UI; every measurement goes through this interface, so a browser
// binding, a terminal UI and a test fixture are interchangeable.
//
// All rectangles are in viewport coordinates.
type Host interface {
	// OriginRect measures the element the overlay is connected to. ok is
	// false when the origin cannot be measured right now.
	OriginRect() (r geom.Rect, ok bool)

	// OverlayRect measures the overlay at its natural size.
	OverlayRect() (r geom.Rect, ok bool)

	// ViewportRect returns the visible area with margin removed from every
	// edge. It must never have negative size.
	ViewportRect(margin float64) geom.Rect

	// ScrollPosition returns the document scroll offset.
	ScrollPosition() geom.Point

	// IsRTL reports whether the overlay is laid out right-to-left.
	IsRTL() bool
}

// ScrollableHost is implemented by hosts that know which scroll containers
// enclose the origin. It is only queried when a position change listener is
// registered.
type ScrollableHost interface {
	ScrollableRects() []geom.Rect
}

// KeyboardHost is implemented by hosts where an on-screen keyboard can cover
// the bottom of the viewport.
type KeyboardHost interface {
	KeyboardInset() float64
}

// ResizeNotifier is implemented by hosts that can report viewport resizes.
// The returned function removes the callback.
type ResizeNotifier interface {
	OnResize(fn func()) (unregister func())
}

// Geometry is one consistent snapshot of everything a recompute reads from
// the host. Solve works purely on a Geometry, which makes recomputes
// reproducible from a recorded snapshot.
type Geometry struct {
	Origin  geom.Rect `json:"origin" toml:"origin" bson:"origin"`
	Overlay geom.Rect `json:"overlay" toml:"overlay" bson:"overlay"`

	// Viewport is the narrowed viewport (margin removed); Window is the
	// full visible area.
	Viewport geom.Rect `json:"viewport" toml:"viewport" bson:"viewport"`
	Window   geom.Rect `json:"window" toml:"window" bson:"window"`

	Scroll        geom.Point `json:"scroll" toml:"scroll" bson:"scroll"`
	RTL           bool       `json:"rtl,omitempty" toml:"rtl" bson:"rtl,omitempty"`
	KeyboardInset float64    `json:"keyboard_inset,omitempty" toml:"keyboard_inset" bson:"keyboard_inset,omitempty"`
}

// Measurable reports whether the snapshot can be positioned: the origin
// must have been measured (a zero-size origin at a real location is a valid
// point origin) and the overlay must have an area.
func (g Geometry) Measurable() bool {
	return !g.Origin.IsZero() && g.Overlay.Width > 0 && g.Overlay.Height > 0
}

// Measure takes a Geometry snapshot from h. ok is false when either element
// is unmeasurable, in which case the recompute is skipped.
func Measure(h Host, margin float64) (Geometry, bool) {
	origin, ok := h.OriginRect()
	if !ok || origin.IsZero() {
		return Geometry{}, false
	}
	overlay, ok := h.OverlayRect()
	if !ok {
		return Geometry{}, false
	}
	g := Geometry{
		Origin:   origin,
		Overlay:  overlay,
		Viewport: clampRect(h.ViewportRect(margin)),
		Window:   clampRect(h.ViewportRect(0)),
		Scroll:   h.ScrollPosition(),
		RTL:      h.IsRTL(),
	}
	if kh, ok := h.(KeyboardHost); ok {
		g.KeyboardInset = max(0, kh.KeyboardInset())
	}
	return g, g.Measurable()
}

// clampRect guards against hosts reporting negative viewport sizes.
func clampRect(r geom.Rect) geom.Rect {
	if r.Width >= 0 && r.Height >= 0 {
		return r
	}
	return geom.NewRect(r.Left, r.Top, max(0, r.Width), max(0, r.Height))
}
