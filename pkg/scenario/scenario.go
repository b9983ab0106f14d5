package scenario

import (
	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
)

// Step actions.
const (
	ActionApply     = "apply"
	ActionReapply   = "reapply"
	ActionResize    = "resize"
	ActionPositions = "positions"
	ActionDetach    = "detach"
	ActionAttach    = "attach"
)

// Actions lists every valid step action.
var Actions = []string{ActionApply, ActionReapply, ActionResize, ActionPositions, ActionDetach, ActionAttach}

// Viewport describes the visible area of a scenario host.
type Viewport struct {
	Width         float64     `json:"width" toml:"width"`
	Height        float64     `json:"height" toml:"height"`
	Scroll        geom.Point  `json:"scroll" toml:"scroll"`
	RTL           bool        `json:"rtl,omitempty" toml:"rtl"`
	KeyboardInset float64     `json:"keyboard_inset,omitempty" toml:"keyboard_inset"`
	Scrollables   []geom.Rect `json:"scrollables,omitempty" toml:"scrollables"`
}

// Step is one trigger in a scripted scenario. Geometry fields are
// overrides applied to the host before the action runs; nil leaves the
// current value.
type Step struct {
	Action string `json:"action,omitempty" toml:"action"`
	Note   string `json:"note,omitempty" toml:"note"`

	Width         *float64    `json:"width,omitempty" toml:"width"`
	Height        *float64    `json:"height,omitempty" toml:"height"`
	Scroll        *geom.Point `json:"scroll,omitempty" toml:"scroll"`
	RTL           *bool       `json:"rtl,omitempty" toml:"rtl"`
	KeyboardInset *float64    `json:"keyboard_inset,omitempty" toml:"keyboard_inset"`
	Origin        *geom.Rect  `json:"origin,omitempty" toml:"origin"`
	Overlay       *geom.Size  `json:"overlay,omitempty" toml:"overlay"`

	// Hidden makes the origin unmeasurable for this step.
	Hidden bool `json:"hidden,omitempty" toml:"hidden"`

	// Positions replaces the preference list (action "positions").
	Positions []overlay.ConnectedPosition `json:"positions,omitempty" toml:"positions"`
}

// action returns the step action, defaulting to apply.
func (s Step) action() string {
	if s.Action == "" {
		return ActionApply
	}
	return s.Action
}

// Scenario is a complete positioning setup: a viewport, an origin, an
// overlay, a strategy configuration and a preference list, plus an
// optional script of triggers.
type Scenario struct {
	Name        string `json:"name,omitempty" toml:"name"`
	Description string `json:"description,omitempty" toml:"description"`

	Viewport  Viewport                    `json:"viewport" toml:"viewport"`
	Origin    geom.Rect                   `json:"origin" toml:"origin"`
	Overlay   geom.Size                   `json:"overlay" toml:"overlay"`
	Config    overlay.Config              `json:"config" toml:"config"`
	Positions []overlay.ConnectedPosition `json:"positions" toml:"positions"`
	Steps     []Step                      `json:"steps,omitempty" toml:"steps"`
}

// New returns an empty scenario with the default strategy configuration.
// Decoding into it keeps defaults for every field the input omits.
func New() *Scenario {
	return &Scenario{Config: overlay.DefaultConfig()}
}

// normalize fills in derived rectangle edges after decoding.
func (s *Scenario) normalize() {
	s.Origin = s.Origin.Normalize()
	for i := range s.Viewport.Scrollables {
		s.Viewport.Scrollables[i] = s.Viewport.Scrollables[i].Normalize()
	}
	for i := range s.Steps {
		if o := s.Steps[i].Origin; o != nil {
			n := o.Normalize()
			s.Steps[i].Origin = &n
		}
	}
}

// ScriptedSteps returns the steps to run: the declared steps, or a single
// apply when the scenario has none.
func (s *Scenario) ScriptedSteps() []Step {
	if len(s.Steps) == 0 {
		return []Step{{Action: ActionApply}}
	}
	return s.Steps
}

// Validate checks the whole scenario and reports the first problem with
// code INVALID_SCENARIO.
func (s *Scenario) Validate() error {
	fail := func(err error, format string, args ...any) error {
		return errors.Wrap(errors.ErrCodeInvalidScenario, err, format, args...)
	}

	for _, f := range []struct {
		name string
		v    float64
	}{
		{"viewport.width", s.Viewport.Width},
		{"viewport.height", s.Viewport.Height},
		{"viewport.keyboard_inset", s.Viewport.KeyboardInset},
		{"origin.width", s.Origin.Width},
		{"origin.height", s.Origin.Height},
		{"overlay.width", s.Overlay.Width},
		{"overlay.height", s.Overlay.Height},
	} {
		if err := errors.ValidateLength(f.name, f.v, false); err != nil {
			return fail(err, "scenario %q", s.Name)
		}
	}
	if err := s.Config.Validate(); err != nil {
		return fail(err, "scenario %q: config", s.Name)
	}
	if err := overlay.ValidatePositions(s.Positions); err != nil {
		return fail(err, "scenario %q: positions", s.Name)
	}

	for i, st := range s.Steps {
		if err := errors.ValidateEnum("action", st.action(), Actions...); err != nil {
			return fail(err, "scenario %q: step %d", s.Name, i)
		}
		if err := overlay.ValidatePositions(st.Positions); err != nil {
			return fail(err, "scenario %q: step %d", s.Name, i)
		}
		if st.action() == ActionPositions && len(st.Positions) == 0 {
			return errors.New(errors.ErrCodeInvalidScenario, "scenario %q: step %d: positions action without positions", s.Name, i)
		}
		for name, v := range map[string]*float64{"width": st.Width, "height": st.Height, "keyboard_inset": st.KeyboardInset} {
			if v == nil {
				continue
			}
			if err := errors.ValidateLength(name, *v, false); err != nil {
				return fail(err, "scenario %q: step %d", s.Name, i)
			}
		}
	}
	return nil
}
