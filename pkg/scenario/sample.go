package scenario

import (
	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
)

// Sample returns a small dropdown scenario sized for an 80×20 terminal:
// a trigger near the top of the viewport with a menu that prefers to open
// below, then above, then to the side.
func Sample() *Scenario {
	sc := New()
	sc.Name = "dropdown"
	sc.Description = "A menu that opens below its trigger and flips when it runs out of room."
	sc.Viewport = Viewport{Width: 800, Height: 400}
	sc.Origin = geom.NewRect(300, 100, 100, 20)
	sc.Overlay = geom.Size{Width: 200, Height: 160}
	sc.Positions = []overlay.ConnectedPosition{
		{OriginX: overlay.XStart, OriginY: overlay.YBottom, OverlayX: overlay.XStart, OverlayY: overlay.YTop, PanelClass: []string{"below"}},
		{OriginX: overlay.XStart, OriginY: overlay.YTop, OverlayX: overlay.XStart, OverlayY: overlay.YBottom, PanelClass: []string{"above"}},
		{OriginX: overlay.XEnd, OriginY: overlay.YTop, OverlayX: overlay.XStart, OverlayY: overlay.YTop, PanelClass: []string{"after"}},
	}
	sc.Steps = []Step{
		{Note: "open"},
		{Action: ActionApply, Note: "trigger scrolled to the bottom", Origin: ptr(geom.NewRect(300, 360, 100, 20))},
		{Action: ActionReapply, Note: "menu grows", Overlay: &geom.Size{Width: 200, Height: 200}},
		{Action: ActionResize, Note: "window narrows", Width: ptr(600.0)},
	}
	return sc
}

func ptr[T any](v T) *T { return &v }
