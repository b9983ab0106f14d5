package overlay

import (
	"context"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/observability"
)

// Positioner places one overlay relative to its origin. It owns the
// overlay's State and turns host measurements into Placements.
//
// A Positioner is not safe for concurrent use. Each call runs one complete
// recompute before returning; callers serialize triggers (open, resize,
// re-apply) and debounce high-frequency ones themselves.
type Positioner struct {
	host      Host
	positions []ConnectedPosition
	cfg       Config
	state     State
	logger    *log.Logger

	attached         bool
	unregisterResize func()

	listeners []listener
	nextID    int

	last    Placement
	hasLast bool

	seed *State
}

type listener struct {
	id int
	fn func(PositionChange)
}

// New returns an attached Positioner for host with the given preference
// list. The configuration starts from DefaultConfig and is then modified by
// opts.
func New(host Host, positions []ConnectedPosition, opts ...Option) (*Positioner, error) {
	if host == nil {
		return nil, errors.New(errors.ErrCodeInvalidInput, "host cannot be nil")
	}
	if err := ValidatePositions(positions); err != nil {
		return nil, err
	}
	p := &Positioner{
		host:      host,
		positions: slices.Clone(positions),
		cfg:       DefaultConfig(),
		logger:    log.New(io.Discard),
	}
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		return nil, err
	}
	p.Attach()
	if p.seed != nil {
		p.state, p.seed = *p.seed, nil
		if !validIndex(p.state.LastPosition, p.positions) {
			p.state.LastPosition = nil
		}
	}
	return p, nil
}

// Attach resets the positioner to its initial state and starts listening
// for viewport resizes if the host reports them. Attaching an attached
// positioner is a no-op.
func (p *Positioner) Attach() {
	if p.attached {
		return
	}
	p.attached = true
	p.state = NewState()
	p.hasLast = false
	if rn, ok := p.host.(ResizeNotifier); ok {
		p.unregisterResize = rn.OnResize(p.handleResize)
	}
}

// Detach stops listening for resizes and forgets all state. Recomputes on
// a detached positioner are no-ops until it is attached again.
func (p *Positioner) Detach() {
	if !p.attached {
		return
	}
	p.attached = false
	if p.unregisterResize != nil {
		p.unregisterResize()
		p.unregisterResize = nil
	}
	p.state = NewState()
	p.hasLast = false
}

// Attached reports whether the positioner is attached.
func (p *Positioner) Attached() bool { return p.attached }

// Apply runs a full recompute. ok is false when nothing was placed; the
// previous placement then remains in effect.
func (p *Positioner) Apply() (Placement, bool) {
	return p.recompute(Solve)
}

// ReapplyLastPosition re-measures and re-applies the last chosen position
// without searching. It is used when the overlay's content changed size
// but its direction should stay put.
func (p *Positioner) ReapplyLastPosition() (Placement, bool) {
	return p.recompute(Reapply)
}

// Resize handles a viewport resize: the next recompute is treated as an
// initial render, so locking and box clamping start over.
func (p *Positioner) Resize() (Placement, bool) {
	if !p.attached {
		return Placement{}, false
	}
	p.state.IsInitialRender = true
	p.state.PreviousPush = nil
	return p.Apply()
}

func (p *Positioner) handleResize() { p.Resize() }

// ErrUnmeasurable is reported to solve hooks when a recompute is skipped
// because the origin or overlay could not be measured.
var ErrUnmeasurable = errors.New(errors.ErrCodeMeasurement, "origin or overlay cannot be measured")

type solveFunc func(Config, []ConnectedPosition, Geometry, State) (State, Placement, bool)

func (p *Positioner) recompute(solve solveFunc) (Placement, bool) {
	if !p.attached || len(p.positions) == 0 {
		return Placement{}, false
	}
	hooks := observability.Solve()
	ctx := hooks.OnSolveStart(context.Background(), len(p.positions))

	g, ok := Measure(p.host, p.cfg.ViewportMargin)
	if !ok {
		p.logger.Debug("recompute skipped: geometry unavailable")
		hooks.OnSolveComplete(ctx, "", -1, ErrUnmeasurable)
		return Placement{}, false
	}

	st, pl, ok := solve(p.cfg, p.positions, g, p.state)
	if !ok {
		hooks.OnSolveComplete(ctx, "", -1, ErrUnmeasurable)
		return Placement{}, false
	}
	p.state, p.last, p.hasLast = st, pl, true

	p.logger.Debug("placed overlay",
		"position", pl.Position.String(),
		"index", pl.PositionIndex,
		"mode", pl.Mode,
		"rect", pl.OverlayRect.String(),
	)
	hooks.OnSolveComplete(ctx, string(pl.Mode), pl.PositionIndex, nil)
	p.emit(pl)
	return pl, true
}

// emit notifies listeners. Scroll containers are only measured when
// someone is listening.
func (p *Positioner) emit(pl Placement) {
	if len(p.listeners) == 0 {
		return
	}
	change := PositionChange{Position: pl.Position, Index: pl.PositionIndex}
	if sh, ok := p.host.(ScrollableHost); ok {
		if origin, ok := p.host.OriginRect(); ok {
			change.ScrollableView = ScrollVisibility(origin, pl.OverlayRect, sh.ScrollableRects())
		}
	}
	for _, l := range slices.Clone(p.listeners) {
		l.fn(change)
	}
}

// OnPositionChange registers fn to be called after every successful
// recompute, in registration order. The returned function unsubscribes.
func (p *Positioner) OnPositionChange(fn func(PositionChange)) (unsubscribe func()) {
	id := p.nextID
	p.nextID++
	p.listeners = append(p.listeners, listener{id: id, fn: fn})
	return func() {
		p.listeners = slices.DeleteFunc(p.listeners, func(l listener) bool { return l.id == id })
	}
}

// WithPositions replaces the preference list. If the last applied position
// is not part of the new list it is forgotten, so a locked positioner
// searches again on the next recompute.
func (p *Positioner) WithPositions(positions []ConnectedPosition) error {
	if err := ValidatePositions(positions); err != nil {
		return err
	}
	if validIndex(p.state.LastPosition, p.positions) {
		if i := indexOf(positions, p.positions[*p.state.LastPosition]); i >= 0 {
			p.state.LastPosition = &i
		} else {
			p.state.LastPosition = nil
			p.state.PreviousPush = nil
		}
	}
	p.positions = slices.Clone(positions)
	return nil
}

// Reconfigure applies opts to the current configuration. State is kept.
func (p *Positioner) Reconfigure(opts ...Option) error {
	cfg, logger := p.cfg, p.logger
	for _, opt := range opts {
		opt(p)
	}
	if err := p.cfg.Validate(); err != nil {
		p.cfg, p.logger = cfg, logger
		return err
	}
	return nil
}

// Positions returns a copy of the preference list.
func (p *Positioner) Positions() []ConnectedPosition { return slices.Clone(p.positions) }

// Config returns the current configuration.
func (p *Positioner) Config() Config { return p.cfg }

// State returns the current state.
func (p *Positioner) State() State { return p.state }

// LastPlacement returns the most recent successful placement.
func (p *Positioner) LastPlacement() (Placement, bool) { return p.last, p.hasLast }
