// Package pipeline runs scenarios through the positioning engine and
// renders the results, with caching.
//
// This package is shared by the CLI and the API server so both produce the
// same artifacts for the same scenario.
//
// # Stages
//
//  1. Solve: replay the scenario's steps against a static host, producing
//     one [scenario.Frame] per step
//  2. Render: turn the frames into artifacts (JSON, text, DOT, SVG, PNG, PDF)
//
// Both stages are cached by content hash: a scenario that hashes the same
// (after decoding, so TOML and JSON inputs are interchangeable) reuses its
// frames, and frames that hash the same reuse their artifacts.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, sc, pipeline.Options{
//	    Formats: []string{"text", "svg"},
//	})
//	if err != nil {
//	    return err
//	}
//	os.Stdout.Write(result.Artifacts["text"])
package pipeline

import (
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexpos/pkg/cache"
	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultCols is the text grid width.
	DefaultCols = 80

	// DefaultRows is the text grid height.
	DefaultRows = 24

	// DefaultScale is the PNG scale factor.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatText = "text"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// Formats lists the supported output formats.
var Formats = []string{FormatJSON, FormatText, FormatDOT, FormatSVG, FormatPNG, FormatPDF}

// ValidateFormats checks that every format is supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := errors.ValidateFormat(f, Formats...); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options configures a pipeline run. It is JSON-serializable so the API can
// accept it in request bodies.
type Options struct {
	Formats []string `json:"formats,omitempty"`

	// Cols and Rows size the text grid.
	Cols int `json:"cols,omitempty"`
	Rows int `json:"rows,omitempty"`

	// Frame selects the frame drawn by the diagram formats (dot, svg, png,
	// pdf). Negative values count from the end; -1 is the last frame.
	Frame int `json:"frame,omitempty"`

	// Scale is the PNG resolution multiplier.
	Scale float64 `json:"scale,omitempty"`

	// Refresh bypasses cached frames and artifacts.
	Refresh bool `json:"refresh,omitempty"`

	Logger *log.Logger `json:"-"`
}

// SetRenderDefaults fills zero-valued fields.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatText}
	}
	if o.Cols <= 0 {
		o.Cols = DefaultCols
	}
	if o.Rows <= 0 {
		o.Rows = DefaultRows
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies defaults and validates the formats.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	return ValidateFormats(o.Formats)
}

// ArtifactKeyOpts returns the cache key options for one format. Only the
// options that affect that format's bytes are included.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format}
	switch format {
	case FormatText:
		k.Cols, k.Rows = o.Cols, o.Rows
	case FormatDOT, FormatSVG, FormatPDF:
		k.Frame = o.Frame
	case FormatPNG:
		k.Frame, k.Scale = o.Frame, o.Scale
	}
	return k
}

// =============================================================================
// Results
// =============================================================================

// Result contains the outputs of a pipeline run.
type Result struct {
	Scenario string

	// Frames holds one entry per scenario step.
	Frames []scenario.Frame

	// FramesHash is the content hash of Frames.
	FramesHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Steps      int
	Placed     int
	SolveTime  time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	SolveHit  bool // frames came from cache
	RenderHit bool // every artifact came from cache
}
