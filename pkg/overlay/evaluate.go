package overlay

import "github.com/matzehuels/flexpos/pkg/geom"

// OverlayFit describes how an overlay placed at a given point fits into the
// narrowed viewport.
type OverlayFit struct {
	VisibleArea                float64 `json:"visible_area" bson:"visible_area"`
	IsCompletelyWithinViewport bool    `json:"is_completely_within_viewport" bson:"is_completely_within_viewport"`
	FitsVertically             bool    `json:"fits_vertically" bson:"fits_vertically"`
	FitsHorizontally           bool    `json:"fits_horizontally" bson:"fits_horizontally"`
}

// candidate is one position evaluated against a geometry snapshot.
type candidate struct {
	index   int
	pos     ConnectedPosition
	origin  geom.Point // connection point on the origin
	overlay geom.Point // overlay top-left before offsets
	fit     OverlayFit
}

// originPoint returns the connection point on the origin rectangle.
func originPoint(origin geom.Rect, pos ConnectedPosition, rtl bool) geom.Point {
	return geom.Point{
		X: sideX(pos.OriginX, rtl).along(origin.Left, origin.Right),
		Y: sideY(pos.OriginY).along(origin.Top, origin.Bottom),
	}
}

// overlayPoint returns the top-left corner of an overlay of the given size
// whose connection point sits at p.
func overlayPoint(p geom.Point, size geom.Size, pos ConnectedPosition, rtl bool) geom.Point {
	return geom.Point{
		X: p.X - sideX(pos.OverlayX, rtl).along(0, size.Width),
		Y: p.Y - sideY(pos.OverlayY).along(0, size.Height),
	}
}

// evaluateFit measures how much of an overlay with top-left corner at p is
// visible inside viewport.
func evaluateFit(p geom.Point, size geom.Size, viewport geom.Rect) OverlayFit {
	leftOverflow := viewport.Left - p.X
	rightOverflow := p.X + size.Width - viewport.Right
	topOverflow := viewport.Top - p.Y
	bottomOverflow := p.Y + size.Height - viewport.Bottom

	visibleWidth := visibleLength(size.Width, leftOverflow, rightOverflow)
	visibleHeight := visibleLength(size.Height, topOverflow, bottomOverflow)
	visibleArea := visibleWidth * visibleHeight

	return OverlayFit{
		VisibleArea:                visibleArea,
		IsCompletelyWithinViewport: visibleArea == size.Width*size.Height,
		FitsVertically:             visibleHeight == size.Height,
		FitsHorizontally:           visibleWidth == size.Width,
	}
}

// visibleLength subtracts the positive overflows from length, never going
// below zero.
func visibleLength(length float64, overflows ...float64) float64 {
	for _, o := range overflows {
		length -= max(0, o)
	}
	return max(0, length)
}

// evaluate computes the candidate for positions[i]. Offsets are applied
// before the fit check.
func evaluate(cfg Config, g Geometry, i int, pos ConnectedPosition) candidate {
	o := originPoint(g.Origin, pos, g.RTL)
	p := overlayPoint(o, g.Overlay.Size(), pos, g.RTL)
	dx, dy := cfg.offsets(pos)
	return candidate{
		index:   i,
		pos:     pos,
		origin:  o,
		overlay: p,
		fit:     evaluateFit(p.Add(geom.Point{X: dx, Y: dy}), g.Overlay.Size(), g.Viewport),
	}
}

// canFitWithFlexibleDimensions reports whether the candidate fits once the
// overlay is allowed to shrink to its minimum size. An axis qualifies if it
// already fits or if the configured minimum fits into the space between the
// overlay point and the viewport's far edge.
func canFitWithFlexibleDimensions(cfg Config, c candidate, viewport geom.Rect) bool {
	if !cfg.FlexibleDimensions {
		return false
	}
	availableHeight := viewport.Bottom - c.overlay.Y
	availableWidth := viewport.Right - c.overlay.X
	verticalFit := c.fit.FitsVertically || (cfg.MinHeight > 0 && cfg.MinHeight <= availableHeight)
	horizontalFit := c.fit.FitsHorizontally || (cfg.MinWidth > 0 && cfg.MinWidth <= availableWidth)
	return verticalFit && horizontalFit
}
