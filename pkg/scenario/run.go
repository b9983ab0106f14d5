package scenario

import (
	"context"
	"io"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
)

// Frame is the outcome of one scenario step.
type Frame struct {
	Step   int    `json:"step"`
	Action string `json:"action"`
	Note   string `json:"note,omitempty"`

	// Placed is false when the step did not produce a new placement
	// (unmeasurable geometry, detach, a positions update).
	Placed    bool                    `json:"placed"`
	Placement overlay.Placement       `json:"placement"`
	Change    *overlay.PositionChange `json:"change,omitempty"`
	State     overlay.State           `json:"state"`

	// Geometry is the host snapshot after the step's overrides.
	Geometry    overlay.Geometry `json:"geometry"`
	Scrollables []geom.Rect      `json:"scrollables,omitempty"`
}

// Run attaches a positioner to a [StaticHost] built from sc and executes
// its steps in order. The returned frames hold, per step, the placement in
// effect afterwards (the previous one when the step did not place).
//
// Run checks ctx between steps.
func Run(ctx context.Context, sc *Scenario, logger *log.Logger) ([]Frame, error) {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	host := HostFor(sc)
	p, err := overlay.New(host, sc.Positions, overlay.WithConfig(sc.Config), overlay.WithLogger(logger))
	if err != nil {
		return nil, errors.Wrap(errors.GetCode(err), err, "scenario %q", sc.Name)
	}
	defer p.Detach()

	var change *overlay.PositionChange
	p.OnPositionChange(func(c overlay.PositionChange) { change = &c })

	steps := sc.ScriptedSteps()
	frames := make([]Frame, 0, len(steps))
	for i, st := range steps {
		if err := ctx.Err(); err != nil {
			return frames, err
		}
		change = nil
		applyOverrides(host, st)

		action := st.action()
		switch action {
		case ActionApply:
			p.Apply()
		case ActionReapply:
			p.ReapplyLastPosition()
		case ActionResize:
			// The positioner recomputes from the host's resize notification.
			host.Resize(host.Viewport.Width, host.Viewport.Height)
		case ActionPositions:
			if err := p.WithPositions(st.Positions); err != nil {
				return frames, errors.Wrap(errors.GetCode(err), err, "step %d", i)
			}
		case ActionDetach:
			p.Detach()
		case ActionAttach:
			p.Attach()
		default:
			return frames, errors.New(errors.ErrCodeInvalidScenario, "step %d: unknown action %q", i, action)
		}

		f := Frame{
			Step:        i,
			Action:      action,
			Note:        st.Note,
			Placed:      change != nil,
			Change:      change,
			State:       p.State(),
			Geometry:    host.Geometry(sc.Config.ViewportMargin),
			Scrollables: host.Viewport.Scrollables,
		}
		f.Placement, _ = p.LastPlacement()
		logger.Debug("scenario step", "step", i, "action", action, "placed", f.Placed)
		frames = append(frames, f)
	}
	return frames, nil
}

// applyOverrides copies a step's geometry overrides onto the host. Width
// and height are set directly; a resize step then notifies listeners.
func applyOverrides(h *StaticHost, st Step) {
	if st.Width != nil {
		h.Viewport.Width = *st.Width
	}
	if st.Height != nil {
		h.Viewport.Height = *st.Height
	}
	if st.Scroll != nil {
		h.Viewport.Scroll = *st.Scroll
	}
	if st.RTL != nil {
		h.Viewport.RTL = *st.RTL
	}
	if st.KeyboardInset != nil {
		h.Viewport.KeyboardInset = *st.KeyboardInset
	}
	if st.Origin != nil {
		h.Origin = st.Origin.Normalize()
	}
	if st.Overlay != nil {
		h.Overlay = *st.Overlay
	}
	h.Hidden = st.Hidden
}
