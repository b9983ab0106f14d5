package overlay

import (
	"fmt"
	"math"
	"slices"

	"github.com/matzehuels/flexpos/pkg/errors"
)

// =============================================================================
// Connection Points
// =============================================================================

// HorizontalPos is a horizontal connection point. Start and end follow the
// reading direction: in a right-to-left layout XStart is the right edge.
type HorizontalPos string

// Horizontal connection points.
const (
	XStart  HorizontalPos = "start"
	XCenter HorizontalPos = "center"
	XEnd    HorizontalPos = "end"
)

// VerticalPos is a vertical connection point.
type VerticalPos string

// Vertical connection points.
const (
	YTop    VerticalPos = "top"
	YCenter VerticalPos = "center"
	YBottom VerticalPos = "bottom"
)

// side is a physical location along one axis: the low edge (left/top), the
// middle, or the high edge (right/bottom).
type side int

const (
	sideLow side = iota
	sideMid
	sideHigh
)

// sideX maps a horizontal connection point onto the physical x axis. It is
// the only place reading direction is interpreted; origin points, overlay
// points, bounding boxes, styles and transform origins all go through it.
func sideX(p HorizontalPos, rtl bool) side {
	switch p {
	case XCenter:
		return sideMid
	case XEnd:
		if rtl {
			return sideLow
		}
		return sideHigh
	default:
		if rtl {
			return sideHigh
		}
		return sideLow
	}
}

// sideY maps a vertical connection point onto the physical y axis.
func sideY(p VerticalPos) side {
	switch p {
	case YCenter:
		return sideMid
	case YBottom:
		return sideHigh
	default:
		return sideLow
	}
}

// along returns the coordinate of s on the segment [lo, hi].
func (s side) along(lo, hi float64) float64 {
	switch s {
	case sideMid:
		return lo + (hi-lo)/2
	case sideHigh:
		return hi
	default:
		return lo
	}
}

// =============================================================================
// ConnectedPosition
// =============================================================================

// ConnectedPosition pairs a point on the origin with a point on the overlay.
// The overlay is placed so that the two points coincide, then translated by
// the offsets.
//
// Positions are supplied as an ordered list, most preferred first. A
// ConnectedPosition is treated as immutable once handed to a Positioner.
type ConnectedPosition struct {
	OriginX  HorizontalPos `json:"origin_x" toml:"origin_x" bson:"origin_x"`
	OriginY  VerticalPos   `json:"origin_y" toml:"origin_y" bson:"origin_y"`
	OverlayX HorizontalPos `json:"overlay_x" toml:"overlay_x" bson:"overlay_x"`
	OverlayY VerticalPos   `json:"overlay_y" toml:"overlay_y" bson:"overlay_y"`

	// Weight breaks ties between positions that only fit with flexible
	// dimensions; higher wins. Zero means 1.
	Weight float64 `json:"weight,omitempty" toml:"weight" bson:"weight,omitempty"`

	// OffsetX and OffsetY override the positioner's default offsets when
	// non-nil.
	OffsetX *float64 `json:"offset_x,omitempty" toml:"offset_x" bson:"offset_x,omitempty"`
	OffsetY *float64 `json:"offset_y,omitempty" toml:"offset_y" bson:"offset_y,omitempty"`

	// PanelClass is echoed on placements using this position so hosts can
	// style the panel per direction (e.g. an arrow pointing up or down).
	PanelClass []string `json:"panel_class,omitempty" toml:"panel_class" bson:"panel_class,omitempty"`
}

// Pos returns a ConnectedPosition connecting the given points.
func Pos(originX HorizontalPos, originY VerticalPos, overlayX HorizontalPos, overlayY VerticalPos) ConnectedPosition {
	return ConnectedPosition{OriginX: originX, OriginY: originY, OverlayX: overlayX, OverlayY: overlayY}
}

// WithWeight returns a copy of p with the given weight.
func (p ConnectedPosition) WithWeight(w float64) ConnectedPosition {
	p.Weight = w
	return p
}

// WithOffset returns a copy of p with both offsets set.
func (p ConnectedPosition) WithOffset(x, y float64) ConnectedPosition {
	p.OffsetX, p.OffsetY = &x, &y
	return p
}

// WithPanelClass returns a copy of p with the given panel classes.
func (p ConnectedPosition) WithPanelClass(classes ...string) ConnectedPosition {
	p.PanelClass = slices.Clone(classes)
	return p
}

// weight returns the effective flexible-fit weight.
func (p ConnectedPosition) weight() float64 {
	if p.Weight == 0 {
		return 1
	}
	return p.Weight
}

// Equal reports whether p and o describe the same position.
func (p ConnectedPosition) Equal(o ConnectedPosition) bool {
	return p.OriginX == o.OriginX && p.OriginY == o.OriginY &&
		p.OverlayX == o.OverlayX && p.OverlayY == o.OverlayY &&
		p.Weight == o.Weight &&
		equalOffset(p.OffsetX, o.OffsetX) && equalOffset(p.OffsetY, o.OffsetY) &&
		slices.Equal(p.PanelClass, o.PanelClass)
}

func equalOffset(a, b *float64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// String renders the position as "originX,originY -> overlayX,overlayY".
func (p ConnectedPosition) String() string {
	return fmt.Sprintf("%s,%s -> %s,%s", p.OriginX, p.OriginY, p.OverlayX, p.OverlayY)
}

// Validate checks the connection points, weight and offsets.
func (p ConnectedPosition) Validate() error {
	if err := errors.ValidateEnum("originX", string(p.OriginX), string(XStart), string(XCenter), string(XEnd)); err != nil {
		return err
	}
	if err := errors.ValidateEnum("originY", string(p.OriginY), string(YTop), string(YCenter), string(YBottom)); err != nil {
		return err
	}
	if err := errors.ValidateEnum("overlayX", string(p.OverlayX), string(XStart), string(XCenter), string(XEnd)); err != nil {
		return err
	}
	if err := errors.ValidateEnum("overlayY", string(p.OverlayY), string(YTop), string(YCenter), string(YBottom)); err != nil {
		return err
	}
	if math.IsNaN(p.Weight) || math.IsInf(p.Weight, 0) || p.Weight < 0 {
		return errors.New(errors.ErrCodeInvalidPosition, "weight must be a finite non-negative number (got %g)", p.Weight)
	}
	for name, off := range map[string]*float64{"offsetX": p.OffsetX, "offsetY": p.OffsetY} {
		if off == nil {
			continue
		}
		if err := errors.ValidateLength(name, *off, true); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidPosition, err, "position %s", p)
		}
	}
	return nil
}

// ValidatePositions validates every position in the list. An empty list is
// valid: a positioner without candidates simply never places anything.
func ValidatePositions(positions []ConnectedPosition) error {
	for i, p := range positions {
		if err := p.Validate(); err != nil {
			return errors.Wrap(errors.GetCode(err), err, "position %d", i)
		}
	}
	return nil
}

// indexOf returns the index of p in positions, or -1.
func indexOf(positions []ConnectedPosition, p ConnectedPosition) int {
	return slices.IndexFunc(positions, p.Equal)
}
