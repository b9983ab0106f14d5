package render

import (
	"fmt"
	"strings"

	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

// Scene is everything a renderer draws for one placement, in viewport
// coordinates.
type Scene struct {
	Title       string
	Window      geom.Rect
	Viewport    geom.Rect
	Scrollables []geom.Rect
	Origin      geom.Rect

	// Placed is false when no placement is in effect; the overlay and its
	// box are then omitted.
	Placed    bool
	Placement overlay.Placement
}

// NewScene builds a scene from a geometry snapshot and the placement in
// effect.
func NewScene(g overlay.Geometry, pl overlay.Placement) Scene {
	return Scene{
		Window:    g.Window,
		Viewport:  g.Viewport,
		Origin:    g.Origin,
		Placed:    pl.Mode != "",
		Placement: pl,
	}
}

// FrameScene builds the scene for a scenario frame.
func FrameScene(f scenario.Frame) Scene {
	s := NewScene(f.Geometry, f.Placement)
	s.Scrollables = f.Scrollables
	s.Title = fmt.Sprintf("step %d %s", f.Step, f.Action)
	if f.Note != "" {
		s.Title += ": " + f.Note
	}
	return s
}

// box reports the flexible bounding box, if the placement has one.
func (s Scene) box() (geom.Rect, bool) {
	if !s.Placed || s.Placement.BoundingBox.Exact {
		return geom.Rect{}, false
	}
	return s.Placement.BoundingBox.Rect, true
}

// Draw projects the scene onto a cols×rows grid covering the window.
//
// Margin cells (inside the window, outside the viewport) are '.', scroll
// containers ':', the flexible bounding box '~', the origin '#' and the
// overlay '='. The overlay's first row carries its position index.
func (s Scene) Draw(cols, rows int) *Grid {
	g := NewGrid(cols, rows, geom.Size{Width: s.Window.Right, Height: s.Window.Bottom})
	g.Fill(s.Window, '.', LayerMargin)
	g.Fill(s.Viewport, ' ', LayerMargin)
	for _, r := range s.Scrollables {
		g.Outline(r, ':', LayerScrollable)
	}
	if b, ok := s.box(); ok {
		g.Outline(b, '~', LayerBox)
	}
	g.Fill(s.Origin, '#', LayerOrigin)
	if s.Placed {
		g.Fill(s.Placement.OverlayRect, '=', LayerOverlay)
		g.Label(s.Placement.OverlayRect, fmt.Sprintf("[%d]", s.Placement.PositionIndex), LayerLabel)
	}
	return g
}

// Describe returns a one-line summary of the placement.
func Describe(pl overlay.Placement) string {
	if pl.Mode == "" {
		return "not placed"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s position %d (%s) at %s", pl.Mode, pl.PositionIndex, pl.Position, pl.OverlayRect)
	if pl.IsPushed {
		b.WriteString(" pushed")
	}
	if len(pl.PanelClass) > 0 {
		fmt.Fprintf(&b, " class=%s", strings.Join(pl.PanelClass, ","))
	}
	return b.String()
}

// Text renders frames as plain text: a title and summary line per frame
// followed by its grid.
func Text(frames []scenario.Frame, cols, rows int) string {
	var b strings.Builder
	for i, f := range frames {
		if i > 0 {
			b.WriteString("\n\n")
		}
		s := FrameScene(f)
		summary := Describe(f.Placement)
		if !f.Placed && f.Placement.Mode != "" {
			summary = "unchanged, " + summary
		}
		fmt.Fprintf(&b, "%s\n%s\n", s.Title, summary)
		b.WriteString(s.Draw(cols, rows).String())
	}
	return b.String()
}
