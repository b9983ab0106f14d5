package overlay

import "github.com/matzehuels/flexpos/pkg/geom"

// ScrollableViewProperties reports how the origin and overlay relate to the
// scroll containers enclosing the origin.
type ScrollableViewProperties struct {
	IsOriginClipped      bool `json:"is_origin_clipped" bson:"is_origin_clipped"`
	IsOriginOutsideView  bool `json:"is_origin_outside_view" bson:"is_origin_outside_view"`
	IsOverlayClipped     bool `json:"is_overlay_clipped" bson:"is_overlay_clipped"`
	IsOverlayOutsideView bool `json:"is_overlay_outside_view" bson:"is_overlay_outside_view"`
}

// PositionChange is delivered to listeners after every successful
// recompute.
type PositionChange struct {
	Position       ConnectedPosition        `json:"position"`
	Index          int                      `json:"index"`
	ScrollableView ScrollableViewProperties `json:"scrollable_view"`
}

// ScrollVisibility computes the scroll flags for an origin and overlay
// against the given scroll container rectangles.
func ScrollVisibility(origin, overlay geom.Rect, containers []geom.Rect) ScrollableViewProperties {
	return ScrollableViewProperties{
		IsOriginClipped:      isClipped(origin, containers),
		IsOriginOutsideView:  isOutside(origin, containers),
		IsOverlayClipped:     isClipped(overlay, containers),
		IsOverlayOutsideView: isOutside(overlay, containers),
	}
}

// isClipped reports whether r crosses any edge of any container.
func isClipped(r geom.Rect, containers []geom.Rect) bool {
	for _, c := range containers {
		if r.Top < c.Top || r.Bottom > c.Bottom || r.Left < c.Left || r.Right > c.Right {
			return true
		}
	}
	return false
}

// isOutside reports whether r lies completely outside any container.
func isOutside(r geom.Rect, containers []geom.Rect) bool {
	for _, c := range containers {
		if r.Bottom < c.Top || r.Top > c.Bottom || r.Right < c.Left || r.Left > c.Right {
			return true
		}
	}
	return false
}
