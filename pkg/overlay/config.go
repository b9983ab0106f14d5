package overlay

import (
	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexpos/pkg/errors"
)

// Config holds the strategy settings of a Positioner. The zero value is
// usable but disables flexible dimensions and pushing; DefaultConfig
// returns the usual starting point.
type Config struct {
	// ViewportMargin is removed from every viewport edge before fit
	// checks. Hosts apply it when answering ViewportRect.
	ViewportMargin float64 `json:"viewport_margin" toml:"viewport_margin" bson:"viewport_margin"`

	// FlexibleDimensions lets the overlay shrink into the space available
	// around the origin when no position fits completely.
	FlexibleDimensions bool `json:"flexible_dimensions" toml:"flexible_dimensions" bson:"flexible_dimensions"`

	// Push moves the fallback position back on-screen instead of leaving
	// it overflowing.
	Push bool `json:"push" toml:"push" bson:"push"`

	// PositionLocked keeps re-applying the last chosen position once the
	// overlay has been rendered, until the next resize.
	PositionLocked bool `json:"position_locked" toml:"position_locked" bson:"position_locked"`

	// GrowAfterOpen allows a centered bounding box to grow past its
	// previous size after the first render.
	GrowAfterOpen bool `json:"grow_after_open" toml:"grow_after_open" bson:"grow_after_open"`

	// Size limits. Zero means unset.
	MinWidth  float64 `json:"min_width,omitempty" toml:"min_width" bson:"min_width,omitempty"`
	MinHeight float64 `json:"min_height,omitempty" toml:"min_height" bson:"min_height,omitempty"`
	MaxWidth  float64 `json:"max_width,omitempty" toml:"max_width" bson:"max_width,omitempty"`
	MaxHeight float64 `json:"max_height,omitempty" toml:"max_height" bson:"max_height,omitempty"`

	// DefaultOffsetX and DefaultOffsetY apply to positions that do not
	// carry their own offsets.
	DefaultOffsetX float64 `json:"default_offset_x,omitempty" toml:"default_offset_x" bson:"default_offset_x,omitempty"`
	DefaultOffsetY float64 `json:"default_offset_y,omitempty" toml:"default_offset_y" bson:"default_offset_y,omitempty"`
}

// DefaultConfig returns the default strategy: flexible dimensions and
// pushing enabled, no margin, not locked.
func DefaultConfig() Config {
	return Config{
		FlexibleDimensions: true,
		Push:               true,
	}
}

// Validate checks that every length is finite, sizes and the margin are
// non-negative, and minimums do not exceed maximums.
func (c Config) Validate() error {
	unsigned := []struct {
		name string
		v    float64
	}{
		{"viewportMargin", c.ViewportMargin},
		{"minWidth", c.MinWidth},
		{"minHeight", c.MinHeight},
		{"maxWidth", c.MaxWidth},
		{"maxHeight", c.MaxHeight},
	}
	for _, f := range unsigned {
		if err := errors.ValidateLength(f.name, f.v, false); err != nil {
			return err
		}
	}
	if err := errors.ValidateLength("defaultOffsetX", c.DefaultOffsetX, true); err != nil {
		return err
	}
	if err := errors.ValidateLength("defaultOffsetY", c.DefaultOffsetY, true); err != nil {
		return err
	}
	if err := errors.ValidateSizeRange("Width", c.MinWidth, c.MaxWidth); err != nil {
		return err
	}
	return errors.ValidateSizeRange("Height", c.MinHeight, c.MaxHeight)
}

// offsets returns the translation applied to pos: its own offsets where
// set, the configured defaults otherwise.
func (c Config) offsets(pos ConnectedPosition) (x, y float64) {
	x, y = c.DefaultOffsetX, c.DefaultOffsetY
	if pos.OffsetX != nil {
		x = *pos.OffsetX
	}
	if pos.OffsetY != nil {
		y = *pos.OffsetY
	}
	return x, y
}

// =============================================================================
// Options
// =============================================================================

// Option configures a Positioner.
type Option func(*Positioner)

// WithConfig replaces the whole strategy configuration.
func WithConfig(c Config) Option {
	return func(p *Positioner) { p.cfg = c }
}

// WithViewportMargin sets the margin kept between the overlay and the
// viewport edges.
func WithViewportMargin(m float64) Option {
	return func(p *Positioner) { p.cfg.ViewportMargin = m }
}

// WithFlexibleDimensions enables or disables shrinking into available space.
func WithFlexibleDimensions(on bool) Option {
	return func(p *Positioner) { p.cfg.FlexibleDimensions = on }
}

// WithPush enables or disables pushing the fallback on-screen.
func WithPush(on bool) Option {
	return func(p *Positioner) { p.cfg.Push = on }
}

// WithLockedPosition enables or disables position locking.
func WithLockedPosition(on bool) Option {
	return func(p *Positioner) { p.cfg.PositionLocked = on }
}

// WithGrowAfterOpen enables or disables bounding box growth after the first
// render.
func WithGrowAfterOpen(on bool) Option {
	return func(p *Positioner) { p.cfg.GrowAfterOpen = on }
}

// WithMinSize sets the minimum overlay size. Zero leaves a dimension unset.
func WithMinSize(width, height float64) Option {
	return func(p *Positioner) { p.cfg.MinWidth, p.cfg.MinHeight = width, height }
}

// WithMaxSize sets the maximum overlay size. Zero leaves a dimension unset.
func WithMaxSize(width, height float64) Option {
	return func(p *Positioner) { p.cfg.MaxWidth, p.cfg.MaxHeight = width, height }
}

// WithDefaultOffset sets the offsets used by positions without their own.
func WithDefaultOffset(x, y float64) Option {
	return func(p *Positioner) { p.cfg.DefaultOffsetX, p.cfg.DefaultOffsetY = x, y }
}

// WithLogger sets the logger used for debug tracing of recomputes. The
// default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(p *Positioner) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithState starts a new Positioner from a previously saved State instead
// of a fresh one. A last position that is out of range for the preference
// list is dropped. It has no effect when passed to Reconfigure.
func WithState(st State) Option {
	return func(p *Positioner) {
		if p.hasLast || p.attached {
			return
		}
		p.seed = &st
	}
}
