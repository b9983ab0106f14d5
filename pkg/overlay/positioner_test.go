package overlay

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/observability"
)

func TestNewValidates(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(100, 100, 50, 20), geom.Size{Width: 80, Height: 40})

	tests := []struct {
		name      string
		host      Host
		positions []ConnectedPosition
		opts      []Option
		wantCode  errors.Code
	}{
		{"nil host", nil, []ConnectedPosition{below}, nil, errors.ErrCodeInvalidInput},
		{"bad enum", h, []ConnectedPosition{Pos("left", YBottom, XStart, YTop)}, nil, errors.ErrCodeInvalidPosition},
		{"negative weight", h, []ConnectedPosition{below.WithWeight(-1)}, nil, errors.ErrCodeInvalidPosition},
		{"negative margin", h, []ConnectedPosition{below}, []Option{WithViewportMargin(-1)}, errors.ErrCodeInvalidConfig},
		{"min above max", h, []ConnectedPosition{below}, []Option{WithMinSize(200, 0), WithMaxSize(100, 0)}, errors.ErrCodeInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.host, tt.positions, tt.opts...)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("New() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestNewAppliesOptions(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(100, 100, 50, 20), geom.Size{Width: 80, Height: 40})
	p, err := New(h, []ConnectedPosition{below},
		WithViewportMargin(8),
		WithFlexibleDimensions(false),
		WithPush(false),
		WithLockedPosition(true),
		WithGrowAfterOpen(true),
		WithMinSize(10, 20),
		WithMaxSize(300, 400),
		WithDefaultOffset(1, 2),
		WithLogger(nil),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	want := Config{
		ViewportMargin: 8,
		PositionLocked: true,
		GrowAfterOpen:  true,
		MinWidth:       10,
		MinHeight:      20,
		MaxWidth:       300,
		MaxHeight:      400,
		DefaultOffsetX: 1,
		DefaultOffsetY: 2,
	}
	if got := p.Config(); got != want {
		t.Errorf("Config() = %+v, want %+v", got, want)
	}
	if !p.State().IsInitialRender {
		t.Error("new positioner should start in the initial render state")
	}
}

func TestPositionerApply(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 780, 100, 20), geom.Size{Width: 100, Height: 300})
	p, err := New(h, []ConnectedPosition{below, above})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	first, ok := p.Apply()
	if !ok || first.PositionIndex != 1 {
		t.Fatalf("Apply() = index %d, %v, want 1", first.PositionIndex, ok)
	}
	second, _ := p.Apply()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Apply() is not idempotent:\n%+v\n%+v", first, second)
	}
	if last, ok := p.LastPlacement(); !ok || !reflect.DeepEqual(last, second) {
		t.Errorf("LastPlacement() = %+v, %v", last, ok)
	}
}

func TestPositionerNoOpKeepsPreviousPlacement(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 100, 100, 20), geom.Size{Width: 100, Height: 300})
	p, _ := New(h, []ConnectedPosition{below})
	placed, _ := p.Apply()
	state := p.State()

	h.noOrigin = true
	if _, ok := p.Apply(); ok {
		t.Error("Apply() with unmeasurable origin should be a no-op")
	}
	if _, ok := p.ReapplyLastPosition(); ok {
		t.Error("ReapplyLastPosition() with unmeasurable origin should be a no-op")
	}
	if last, _ := p.LastPlacement(); !reflect.DeepEqual(last, placed) {
		t.Error("previous placement should remain in effect")
	}
	if !reflect.DeepEqual(p.State(), state) {
		t.Error("state should be untouched by a no-op")
	}
}

func TestPositionerEmptyPositions(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 100, 100, 20), geom.Size{Width: 100, Height: 300})
	p, err := New(h, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	calls := 0
	p.OnPositionChange(func(PositionChange) { calls++ })
	if _, ok := p.Apply(); ok {
		t.Error("Apply() without positions should be a no-op")
	}
	if calls != 0 {
		t.Errorf("listener called %d times, want 0", calls)
	}
}

func TestPositionerLocking(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 700, 100, 20), geom.Size{Width: 100, Height: 300})
	p, _ := New(h, []ConnectedPosition{below, above}, WithLockedPosition(true))

	if pl, _ := p.Apply(); pl.PositionIndex != 1 {
		t.Fatalf("Apply() index = %d, want 1", pl.PositionIndex)
	}

	h.origin = geom.NewRect(400, 100, 100, 20)
	if pl, _ := p.Apply(); pl.PositionIndex != 1 {
		t.Errorf("locked Apply() index = %d, want 1", pl.PositionIndex)
	}

	h.fireResize()
	if pl, _ := p.LastPlacement(); pl.PositionIndex != 0 {
		t.Errorf("index after resize = %d, want 0", pl.PositionIndex)
	}
}

func TestPositionerWithState(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 700, 100, 20), geom.Size{Width: 100, Height: 300})
	first, _ := New(h, []ConnectedPosition{below, above}, WithLockedPosition(true))
	first.Apply()
	saved := first.State()

	h.origin = geom.NewRect(400, 100, 100, 20)
	p, err := New(h, []ConnectedPosition{below, above}, WithLockedPosition(true), WithState(saved))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if p.State().IsInitialRender {
		t.Fatal("seeded state should not be an initial render")
	}
	if pl, _ := p.Apply(); pl.PositionIndex != 1 {
		t.Errorf("seeded Apply() index = %d, want 1", pl.PositionIndex)
	}

	stale := 5
	p, _ = New(h, []ConnectedPosition{below}, WithState(State{LastPosition: &stale}))
	if p.State().LastPosition != nil {
		t.Errorf("LastPosition = %d, want nil", *p.State().LastPosition)
	}
}

func TestPositionerResize(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 100, 100, 20), geom.Size{Width: 100, Height: 300})
	p, _ := New(h, []ConnectedPosition{below})
	p.Apply()

	h.height = 300
	pl, ok := p.Resize()
	if !ok {
		t.Fatal("Resize() ok = false")
	}
	if pl.OverlayRect.Bottom > 300 {
		t.Errorf("OverlayRect = %v, want it within the resized viewport", pl.OverlayRect)
	}
	if p.State().IsInitialRender {
		t.Error("IsInitialRender should be cleared by the recompute that follows a resize")
	}
}

func TestPositionerDetach(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 100, 100, 20), geom.Size{Width: 100, Height: 300})
	p, _ := New(h, []ConnectedPosition{below})
	if len(h.resize) != 1 {
		t.Fatalf("resize callbacks = %d, want 1", len(h.resize))
	}
	p.Apply()

	p.Detach()
	if p.Attached() {
		t.Error("Attached() = true after Detach()")
	}
	if len(h.resize) != 0 {
		t.Errorf("resize callbacks = %d after Detach(), want 0", len(h.resize))
	}
	if _, ok := p.Apply(); ok {
		t.Error("Apply() on a detached positioner should be a no-op")
	}
	if _, ok := p.LastPlacement(); ok {
		t.Error("LastPlacement() should be cleared by Detach()")
	}

	p.Attach()
	p.Attach()
	if len(h.resize) != 1 {
		t.Errorf("resize callbacks = %d after re-attach, want 1", len(h.resize))
	}
	if _, ok := p.Apply(); !ok {
		t.Error("Apply() after re-attach should succeed")
	}
}

func TestPositionerWithPositions(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 700, 100, 20), geom.Size{Width: 100, Height: 300})
	p, _ := New(h, []ConnectedPosition{below, above}, WithLockedPosition(true))
	p.Apply()

	// The last position moves to a new index.
	if err := p.WithPositions([]ConnectedPosition{above, below}); err != nil {
		t.Fatalf("WithPositions() error = %v", err)
	}
	if lp := p.State().LastPosition; lp == nil || *lp != 0 {
		t.Errorf("LastPosition = %v, want remapped to 0", lp)
	}

	// The last position disappears.
	if err := p.WithPositions([]ConnectedPosition{below}); err != nil {
		t.Fatalf("WithPositions() error = %v", err)
	}
	if lp := p.State().LastPosition; lp != nil {
		t.Errorf("LastPosition = %v, want nil", *lp)
	}
	h.origin = geom.NewRect(400, 100, 100, 20)
	if pl, ok := p.Apply(); !ok || pl.Mode != ModeExact {
		t.Errorf("Apply() mode = %s, want a fresh search", pl.Mode)
	}

	if err := p.WithPositions([]ConnectedPosition{Pos(XStart, "middle", XStart, YTop)}); !errors.Is(err, errors.ErrCodeInvalidPosition) {
		t.Errorf("WithPositions() error = %v, want INVALID_POSITION", err)
	}
	if got := p.Positions(); len(got) != 1 || !got[0].Equal(below) {
		t.Errorf("Positions() = %v, invalid list should not be applied", got)
	}
}

func TestPositionerLockedPushStaysOnScreen(t *testing.T) {
	viewport := geom.NewRect(0, 0, 1000, 800)
	endBelow := Pos(XEnd, YBottom, XEnd, YTop)

	tests := []struct {
		name   string
		update func(p *Positioner) (Placement, bool)
	}{
		{
			name: "resize",
			update: func(p *Positioner) (Placement, bool) {
				return p.Resize()
			},
		},
		{
			name: "positions change",
			update: func(p *Positioner) (Placement, bool) {
				if err := p.WithPositions([]ConnectedPosition{endBelow}); err != nil {
					t.Fatalf("WithPositions() error = %v", err)
				}
				return p.Apply()
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newFakeHost(1000, 800, geom.NewRect(950, 700, 40, 20), geom.Size{Width: 100, Height: 500})
			p, _ := New(h, []ConnectedPosition{below}, WithPush(true), WithLockedPosition(true))

			pl, ok := p.Apply()
			if !ok || pl.Mode != ModePushed {
				t.Fatalf("Apply() mode = %s, want %s", pl.Mode, ModePushed)
			}
			if !viewport.Contains(pl.OverlayRect) {
				t.Fatalf("Apply() OverlayRect = %v, want within %v", pl.OverlayRect, viewport)
			}

			h.origin = geom.NewRect(5, 700, 40, 20)
			pl, ok = tt.update(p)
			if !ok {
				t.Fatal("recompute ok = false")
			}
			if !viewport.Contains(pl.OverlayRect) {
				t.Errorf("OverlayRect = %v, want within %v", pl.OverlayRect, viewport)
			}
		})
	}
}

func TestPositionerReconfigure(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 100, 100, 20), geom.Size{Width: 100, Height: 300})
	p, _ := New(h, []ConnectedPosition{below})

	if err := p.Reconfigure(WithPush(false)); err != nil {
		t.Fatalf("Reconfigure() error = %v", err)
	}
	if p.Config().Push {
		t.Error("Push should be disabled")
	}
	if err := p.Reconfigure(WithMaxSize(-1, 0)); err == nil {
		t.Error("Reconfigure() with a negative max should fail")
	}
	if p.Config().MaxWidth != 0 {
		t.Errorf("MaxWidth = %v, failed reconfigure should roll back", p.Config().MaxWidth)
	}
}

func TestPositionerListeners(t *testing.T) {
	h := newFakeHost(1000, 800, geom.NewRect(400, 100, 100, 20), geom.Size{Width: 100, Height: 300})
	h.scrollables = []geom.Rect{geom.NewRect(0, 0, 1000, 400)}
	p, _ := New(h, []ConnectedPosition{below, above})

	p.Apply()
	if h.scrollableCalls != 0 {
		t.Errorf("scrollables queried %d times without listeners", h.scrollableCalls)
	}

	var order []string
	var got PositionChange
	unsubscribe := p.OnPositionChange(func(c PositionChange) {
		order = append(order, "first")
		got = c
	})
	p.OnPositionChange(func(PositionChange) { order = append(order, "second") })

	p.Apply()
	if !reflect.DeepEqual(order, []string{"first", "second"}) {
		t.Errorf("listener order = %v", order)
	}
	if got.Index != 0 || !got.Position.Equal(below) {
		t.Errorf("change = %+v, want position 0", got)
	}
	want := ScrollableViewProperties{IsOverlayClipped: true}
	if got.ScrollableView != want {
		t.Errorf("ScrollableView = %+v, want %+v", got.ScrollableView, want)
	}

	unsubscribe()
	order = nil
	p.ReapplyLastPosition()
	if !reflect.DeepEqual(order, []string{"second"}) {
		t.Errorf("listener order after unsubscribe = %v", order)
	}
}

func TestScrollVisibility(t *testing.T) {
	container := []geom.Rect{geom.NewRect(0, 0, 100, 100)}
	tests := []struct {
		name        string
		r           geom.Rect
		wantClipped bool
		wantOutside bool
	}{
		{"inside", geom.NewRect(10, 10, 20, 20), false, false},
		{"crosses bottom", geom.NewRect(10, 90, 20, 20), true, false},
		{"scrolled out above", geom.NewRect(10, -50, 20, 20), true, true},
		{"scrolled out right", geom.NewRect(150, 10, 20, 20), true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScrollVisibility(tt.r, tt.r, container)
			if got.IsOriginClipped != tt.wantClipped || got.IsOverlayClipped != tt.wantClipped {
				t.Errorf("clipped = %v, want %v", got.IsOriginClipped, tt.wantClipped)
			}
			if got.IsOriginOutsideView != tt.wantOutside || got.IsOverlayOutsideView != tt.wantOutside {
				t.Errorf("outside = %v, want %v", got.IsOriginOutsideView, tt.wantOutside)
			}
		})
	}

	if got := ScrollVisibility(geom.NewRect(-10, -10, 5, 5), geom.Rect{}, nil); got != (ScrollableViewProperties{}) {
		t.Errorf("no containers = %+v, want all false", got)
	}
}

type recordingSolveHooks struct {
	observability.NoopSolveHooks
	modes []string
	errs  []error
}

func (r *recordingSolveHooks) OnSolveComplete(_ context.Context, mode string, _ int, err error) {
	r.modes = append(r.modes, mode)
	r.errs = append(r.errs, err)
}

func TestPositionerSolveHooks(t *testing.T) {
	rec := &recordingSolveHooks{}
	observability.SetSolveHooks(rec)
	defer observability.Reset()

	h := newFakeHost(1000, 800, geom.NewRect(400, 100, 100, 20), geom.Size{Width: 100, Height: 300})
	p, _ := New(h, []ConnectedPosition{below})
	p.Apply()
	h.noOverlay = true
	p.Apply()

	if !reflect.DeepEqual(rec.modes, []string{"exact", ""}) {
		t.Errorf("modes = %v", rec.modes)
	}
	if rec.errs[0] != nil || !errors.Is(rec.errs[1], errors.ErrCodeMeasurement) {
		t.Errorf("errs = %v", rec.errs)
	}
}

func TestConnectedPositionEqual(t *testing.T) {
	if !below.WithOffset(1, 2).Equal(below.WithOffset(1, 2)) {
		t.Error("equal offsets should compare equal")
	}
	if below.WithOffset(1, 2).Equal(below) {
		t.Error("offset vs no offset should differ")
	}
	if below.WithPanelClass("down").Equal(below) {
		t.Error("panel class should be compared")
	}
	if got := below.String(); got != "start,bottom -> start,top" {
		t.Errorf("String() = %q", got)
	}
}
