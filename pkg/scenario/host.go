package scenario

import (
	"slices"

	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
)

// StaticHost is an [overlay.Host] whose geometry is set directly. It backs
// scenario runs, the API and the terminal playground. It implements every
// optional host interface.
//
// StaticHost is not safe for concurrent use.
type StaticHost struct {
	Viewport Viewport
	Origin   geom.Rect
	Overlay  geom.Size

	// Hidden makes OriginRect report the origin as unmeasurable.
	Hidden bool

	resize map[int]func()
	nextID int
}

// NewStaticHost returns a host for the given viewport, origin and overlay
// size.
func NewStaticHost(vp Viewport, origin geom.Rect, overlaySize geom.Size) *StaticHost {
	return &StaticHost{
		Viewport: vp,
		Origin:   origin.Normalize(),
		Overlay:  overlaySize,
	}
}

// HostFor returns a host initialised from sc.
func HostFor(sc *Scenario) *StaticHost {
	vp := sc.Viewport
	vp.Scrollables = slices.Clone(vp.Scrollables)
	return NewStaticHost(vp, sc.Origin, sc.Overlay)
}

func (h *StaticHost) OriginRect() (geom.Rect, bool) {
	if h.Hidden {
		return geom.Rect{}, false
	}
	return h.Origin, true
}

func (h *StaticHost) OverlayRect() (geom.Rect, bool) {
	return geom.NewRect(0, 0, h.Overlay.Width, h.Overlay.Height), true
}

func (h *StaticHost) ViewportRect(margin float64) geom.Rect {
	return geom.NarrowViewport(h.Viewport.Width, h.Viewport.Height, margin)
}

func (h *StaticHost) ScrollPosition() geom.Point   { return h.Viewport.Scroll }
func (h *StaticHost) IsRTL() bool                  { return h.Viewport.RTL }
func (h *StaticHost) KeyboardInset() float64       { return h.Viewport.KeyboardInset }
func (h *StaticHost) ScrollableRects() []geom.Rect { return h.Viewport.Scrollables }

// OnResize implements [overlay.ResizeNotifier].
func (h *StaticHost) OnResize(fn func()) func() {
	if h.resize == nil {
		h.resize = map[int]func(){}
	}
	id := h.nextID
	h.nextID++
	h.resize[id] = fn
	return func() { delete(h.resize, id) }
}

// Resize changes the viewport size and notifies resize listeners in
// registration order.
func (h *StaticHost) Resize(width, height float64) {
	h.Viewport.Width, h.Viewport.Height = width, height
	ids := make([]int, 0, len(h.resize))
	for id := range h.resize {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		if fn, ok := h.resize[id]; ok {
			fn()
		}
	}
}

// Geometry returns the snapshot the engine would measure with the given
// margin, even when it is not measurable.
func (h *StaticHost) Geometry(margin float64) overlay.Geometry {
	origin, _ := h.OriginRect()
	ov, _ := h.OverlayRect()
	return overlay.Geometry{
		Origin:        origin,
		Overlay:       ov,
		Viewport:      h.ViewportRect(margin),
		Window:        h.ViewportRect(0),
		Scroll:        h.ScrollPosition(),
		RTL:           h.IsRTL(),
		KeyboardInset: max(0, h.KeyboardInset()),
	}
}

var (
	_ overlay.Host           = (*StaticHost)(nil)
	_ overlay.ScrollableHost = (*StaticHost)(nil)
	_ overlay.KeyboardHost   = (*StaticHost)(nil)
	_ overlay.ResizeNotifier = (*StaticHost)(nil)
)
