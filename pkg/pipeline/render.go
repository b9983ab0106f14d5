package pipeline

import (
	"context"
	"encoding/json"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/render"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

// Output is the JSON artifact: the scenario name and its frames.
type Output struct {
	Scenario string           `json:"scenario"`
	Frames   []scenario.Frame `json:"frames"`
}

// RenderFrames renders frames in every requested format. Options must
// already be validated.
func RenderFrames(ctx context.Context, name string, frames []scenario.Frame, opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))

	var svg []byte
	renderSVG := func() ([]byte, error) {
		if svg != nil {
			return svg, nil
		}
		scene, err := selectScene(frames, opts.Frame)
		if err != nil {
			return nil, err
		}
		out, err := render.RenderSVG(ctx, render.ToDOT(scene))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRender, err, "render svg")
		}
		svg = out
		return svg, nil
	}

	for _, format := range opts.Formats {
		var (
			data []byte
			err  error
		)
		switch format {
		case FormatJSON:
			data, err = json.MarshalIndent(Output{Scenario: name, Frames: frames}, "", "  ")
		case FormatText:
			data = []byte(render.Text(frames, opts.Cols, opts.Rows) + "\n")
		case FormatDOT:
			var scene render.Scene
			if scene, err = selectScene(frames, opts.Frame); err == nil {
				data = []byte(render.ToDOT(scene))
			}
		case FormatSVG:
			data, err = renderSVG()
		case FormatPNG:
			if data, err = renderSVG(); err == nil {
				data, err = render.ToPNG(ctx, data, opts.Scale)
			}
		case FormatPDF:
			if data, err = renderSVG(); err == nil {
				data, err = render.ToPDF(ctx, data)
			}
		default:
			err = errors.ValidateFormat(format, Formats...)
		}
		if err != nil {
			code := errors.GetCode(err)
			if code == "" {
				code = errors.ErrCodeRender
			}
			return nil, errors.Wrap(code, err, "render %s", format)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// selectScene returns the scene for frame i; negative i counts from the end.
func selectScene(frames []scenario.Frame, i int) (render.Scene, error) {
	idx := i
	if idx < 0 {
		idx += len(frames)
	}
	if idx < 0 || idx >= len(frames) {
		return render.Scene{}, errors.New(errors.ErrCodeInvalidInput, "frame %d out of range (%d frames)", i, len(frames))
	}
	return render.FrameScene(frames[idx]), nil
}
