package overlay

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flexpos/pkg/geom"
)

// =============================================================================
// State
// =============================================================================

// State is what a positioner remembers between recomputes. It is owned by a
// single overlay and replaced wholesale by every recompute.
type State struct {
	// LastPosition is the index of the most recently applied position.
	LastPosition *int `json:"last_position,omitempty" bson:"last_position,omitempty"`

	// IsPushed records whether the last placement was pushed on-screen.
	IsPushed bool `json:"is_pushed" bson:"is_pushed"`

	// LastBoundingBoxSize is the size of the last computed bounding box.
	LastBoundingBoxSize geom.Size `json:"last_bounding_box_size" bson:"last_bounding_box_size"`

	// IsInitialRender is true until the first successful recompute and
	// again after every viewport resize.
	IsInitialRender bool `json:"is_initial_render" bson:"is_initial_render"`

	// PreviousPush is the push vector of the last pushed placement.
	PreviousPush *geom.Point `json:"previous_push,omitempty" bson:"previous_push,omitempty"`
}

// NewState returns the state of a freshly attached overlay.
func NewState() State {
	return State{IsInitialRender: true}
}

// Mode says how a placement was reached.
type Mode string

// Placement modes, in resolution order.
const (
	ModeExact     Mode = "exact"     // a position fits completely
	ModeFlexible  Mode = "flexible"  // a position fits after shrinking
	ModePushed    Mode = "pushed"    // best fallback, pushed on-screen
	ModeFallback  Mode = "fallback"  // best fallback, may overflow
	ModeReapplied Mode = "reapplied" // last position re-applied
)

// =============================================================================
// Placement
// =============================================================================

// BoundingBox is the rectangle the overlay is laid out in. In flexible mode
// the overlay is aligned inside it and may shrink to it; in exact mode it
// spans the whole window and the overlay is positioned by OverlayStyle.
type BoundingBox struct {
	geom.Rect
	AlignX    string  `json:"align_x" bson:"align_x"` // left, center or right
	AlignY    string  `json:"align_y" bson:"align_y"` // top, center or bottom
	MaxWidth  float64 `json:"max_width,omitempty" bson:"max_width,omitempty"`
	MaxHeight float64 `json:"max_height,omitempty" bson:"max_height,omitempty"`
	Exact     bool    `json:"exact" bson:"exact"`
}

// OverlayStyle is the style decision for the overlay element. When Exact is
// set exactly one of Top/Bottom and one of Left/Right is non-nil, each
// measured from the corresponding window edge. Offsets are always expressed
// as a translation.
type OverlayStyle struct {
	Exact      bool     `json:"exact" bson:"exact"`
	Top        *float64 `json:"top,omitempty" bson:"top,omitempty"`
	Bottom     *float64 `json:"bottom,omitempty" bson:"bottom,omitempty"`
	Left       *float64 `json:"left,omitempty" bson:"left,omitempty"`
	Right      *float64 `json:"right,omitempty" bson:"right,omitempty"`
	TranslateX float64  `json:"translate_x,omitempty" bson:"translate_x,omitempty"`
	TranslateY float64  `json:"translate_y,omitempty" bson:"translate_y,omitempty"`
	Transform  string   `json:"transform,omitempty" bson:"transform,omitempty"`
}

// Placement is the result of one successful recompute.
type Placement struct {
	Position        ConnectedPosition `json:"position" bson:"position"`
	PositionIndex   int               `json:"position_index" bson:"position_index"`
	Mode            Mode              `json:"mode" bson:"mode"`
	OriginPoint     geom.Point        `json:"origin_point" bson:"origin_point"`
	OverlayRect     geom.Rect         `json:"overlay_rect" bson:"overlay_rect"`
	BoundingBox     BoundingBox       `json:"bounding_box" bson:"bounding_box"`
	Style           OverlayStyle      `json:"style" bson:"style"`
	TransformOrigin string            `json:"transform_origin" bson:"transform_origin"`
	IsPushed        bool              `json:"is_pushed" bson:"is_pushed"`
	Fit             OverlayFit        `json:"fit" bson:"fit"`
	PanelClass      []string          `json:"panel_class,omitempty" bson:"panel_class,omitempty"`
	Scroll          geom.Point        `json:"scroll" bson:"scroll"`
}

// DocumentRect returns the overlay rectangle in document coordinates.
func (p Placement) DocumentRect() geom.Rect {
	return p.OverlayRect.Translate(p.Scroll)
}

// =============================================================================
// Applying a position
// =============================================================================

// applyPosition turns the chosen candidate into a Placement and updates st.
func applyPosition(cfg Config, g Geometry, st *State, c candidate, pushed bool, mode Mode) Placement {
	size := g.Overlay.Size()
	box := boundingBox(c.origin, c.pos, g, cfg, *st)
	dx, dy := cfg.offsets(c.pos)
	offset := geom.Point{X: dx, Y: dy}

	point := c.overlay
	if pushed {
		reuse := cfg.PositionLocked && mode == ModeReapplied
		push := pushOnScreen(point.Add(offset), size, pushViewport(g), st.PreviousPush, reuse)
		st.PreviousPush = &push
		point = point.Add(push)
	} else {
		st.PreviousPush = nil
	}

	pl := Placement{
		Position:        c.pos,
		PositionIndex:   c.index,
		Mode:            mode,
		OriginPoint:     c.origin,
		TransformOrigin: transformOrigin(c.pos, g.RTL),
		IsPushed:        pushed,
		Fit:             c.fit,
		PanelClass:      c.pos.PanelClass,
		Scroll:          g.Scroll,
	}

	if !cfg.FlexibleDimensions || pushed {
		pl.OverlayRect = geom.NewRect(point.X, point.Y, size.Width, size.Height).Translate(offset)
		pl.BoundingBox = BoundingBox{
			Rect:      g.Window,
			AlignX:    "left",
			AlignY:    "top",
			MaxWidth:  cfg.MaxWidth,
			MaxHeight: cfg.MaxHeight,
			Exact:     true,
		}
		pl.Style = exactStyle(c.pos, point, size, g)
	} else {
		bb := clampBox(box, c.pos, g.RTL, cfg)
		w, h := min(size.Width, bb.Width), min(size.Height, bb.Height)
		if cfg.MinWidth > 0 {
			w = max(w, cfg.MinWidth)
		}
		if cfg.MinHeight > 0 {
			h = max(h, cfg.MinHeight)
		}
		x := sideX(c.pos.OverlayX, g.RTL).along(bb.Left, bb.Right-w)
		y := sideY(c.pos.OverlayY).along(bb.Top, bb.Bottom-h)
		rect := geom.NewRect(x, y, w, h).Translate(offset)

		if shift := verticalCorrection(rect, g.Viewport, g.KeyboardInset); shift != 0 {
			d := geom.Point{Y: shift}
			rect = rect.Translate(d)
			bb = bb.Translate(d)
		}
		pl.OverlayRect = rect
		pl.BoundingBox = BoundingBox{
			Rect:      bb,
			AlignX:    sideName(sideX(c.pos.OverlayX, g.RTL), "left", "right"),
			AlignY:    sideName(sideY(c.pos.OverlayY), "top", "bottom"),
			MaxWidth:  cfg.MaxWidth,
			MaxHeight: cfg.MaxHeight,
		}
	}
	pl.Style.TranslateX, pl.Style.TranslateY = dx, dy
	pl.Style.Transform = transform(dx, dy)

	idx := c.index
	st.LastPosition = &idx
	st.IsPushed = pushed
	st.LastBoundingBoxSize = box.Size()
	st.IsInitialRender = false
	return pl
}

// boundingBox computes the rectangle the overlay may occupy when opening
// from o in the direction given by pos. It is measured against the
// narrowed viewport.
func boundingBox(o geom.Point, pos ConnectedPosition, g Geometry, cfg Config, st State) geom.Rect {
	v := g.Viewport
	clampCentered := !st.IsInitialRender && !cfg.GrowAfterOpen

	var top, height float64
	switch sideY(pos.OverlayY) {
	case sideLow:
		top, height = o.Y, v.Bottom-o.Y
	case sideHigh:
		height = o.Y - v.Top
		top = o.Y - max(0, height)
	default:
		height = 2 * min(v.Bottom-o.Y, o.Y-v.Top)
		if clampCentered && height > st.LastBoundingBoxSize.Height {
			height = st.LastBoundingBoxSize.Height
		}
		top = o.Y - max(0, height)/2
	}

	var left, width float64
	switch sideX(pos.OverlayX, g.RTL) {
	case sideLow:
		left, width = o.X, v.Right-o.X
	case sideHigh:
		width = o.X - v.Left
		left = o.X - max(0, width)
	default:
		width = 2 * min(v.Right-o.X, o.X-v.Left)
		if clampCentered && width > st.LastBoundingBoxSize.Width {
			width = st.LastBoundingBoxSize.Width
		}
		left = o.X - max(0, width)/2
	}

	return geom.NewRect(left, top, max(0, width), max(0, height))
}

// clampBox applies the configured maximum size to box, keeping the edge
// the overlay is anchored to in place.
func clampBox(box geom.Rect, pos ConnectedPosition, rtl bool, cfg Config) geom.Rect {
	w, h := box.Width, box.Height
	if cfg.MaxWidth > 0 {
		w = min(w, cfg.MaxWidth)
	}
	if cfg.MaxHeight > 0 {
		h = min(h, cfg.MaxHeight)
	}
	left := sideX(pos.OverlayX, rtl).along(box.Left, box.Right-w)
	top := sideY(pos.OverlayY).along(box.Top, box.Bottom-h)
	return geom.NewRect(left, top, w, h)
}

// pushViewport is the area a pushed overlay is kept inside: the narrowed
// viewport minus any on-screen keyboard.
func pushViewport(g Geometry) geom.Rect {
	v := g.Viewport
	return geom.FromEdges(v.Left, v.Top, v.Right, max(v.Top, v.Bottom-g.KeyboardInset))
}

// pushOnScreen returns the vector that moves an overlay with top-left start
// inside viewport. On an axis where the overlay is larger than the viewport
// its leading edge is aligned instead. With reuse set, as on a locked
// re-apply, the previous push is kept so the overlay does not jump.
func pushOnScreen(start geom.Point, size geom.Size, viewport geom.Rect, previous *geom.Point, reuse bool) geom.Point {
	if reuse && previous != nil {
		return *previous
	}
	return geom.Point{
		X: pushAxis(start.X, size.Width, viewport.Left, viewport.Right),
		Y: pushAxis(start.Y, size.Height, viewport.Top, viewport.Bottom),
	}
}

func pushAxis(start, length, lo, hi float64) float64 {
	if length > hi-lo {
		return lo - start
	}
	if overflow := lo - start; overflow > 0 {
		return overflow
	}
	if overflow := start + length - hi; overflow > 0 {
		return -overflow
	}
	return 0
}

// verticalCorrection returns the vertical shift that keeps r inside the
// viewport once the keyboard inset is taken off its bottom. When there is
// not enough room the overlay is anchored to the edge opposite the
// overflow.
func verticalCorrection(r, viewport geom.Rect, keyboardInset float64) float64 {
	top := viewport.Top
	bottom := max(top, viewport.Bottom-keyboardInset)
	switch {
	case r.Bottom > bottom:
		need := r.Bottom - bottom
		if r.Top-need >= top {
			return -need
		}
		return top - r.Top
	case r.Top < top:
		need := top - r.Top
		if r.Bottom+need <= bottom {
			return need
		}
		return bottom - r.Bottom
	}
	return 0
}

// exactStyle positions the overlay relative to the window edge nearest its
// connection point, so that content growth extends away from the origin.
func exactStyle(pos ConnectedPosition, p geom.Point, size geom.Size, g Geometry) OverlayStyle {
	s := OverlayStyle{Exact: true}
	w := g.Window

	if sideY(pos.OverlayY) == sideHigh {
		s.Bottom = ptr(w.Bottom - (p.Y + size.Height))
	} else {
		s.Top = ptr(p.Y - w.Top)
	}

	switch sx := sideX(pos.OverlayX, g.RTL); {
	case sx == sideHigh, sx == sideMid && g.RTL:
		s.Right = ptr(w.Right - (p.X + size.Width))
	default:
		s.Left = ptr(p.X - w.Left)
	}
	return s
}

func transform(dx, dy float64) string {
	var parts []string
	if dx != 0 {
		parts = append(parts, fmt.Sprintf("translateX(%gpx)", dx))
	}
	if dy != 0 {
		parts = append(parts, fmt.Sprintf("translateY(%gpx)", dy))
	}
	return strings.Join(parts, " ")
}

// transformOrigin returns the CSS transform-origin hint for pos.
func transformOrigin(pos ConnectedPosition, rtl bool) string {
	return sideName(sideX(pos.OverlayX, rtl), "left", "right") + " " + sideName(sideY(pos.OverlayY), "top", "bottom")
}

func sideName(s side, low, high string) string {
	switch s {
	case sideLow:
		return low
	case sideHigh:
		return high
	default:
		return "center"
	}
}

func ptr(v float64) *float64 { return &v }
