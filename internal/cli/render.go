package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/pipeline"
)

type renderOpts struct {
	formats string
	output  string
	cache   cacheOpts
	render  pipeline.Options
}

// renderCommand creates the render command for drawing previously solved
// frames.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [frames.json]",
		Short: "Render solved frames to text or diagrams",
		Long: `Render solved frames to text or diagrams.

The render command takes a frames file (produced by 'solve -f json') and
draws it without solving again. Use it to produce diagrams of a different
frame or at a different size.

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): text (default), dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: next to the input)")
	cmd.Flags().IntVar(&opts.render.Cols, "cols", pipeline.DefaultCols, "text grid width in characters")
	cmd.Flags().IntVar(&opts.render.Rows, "rows", pipeline.DefaultRows, "text grid height in lines")
	cmd.Flags().IntVar(&opts.render.Frame, "frame", -1, "frame drawn by dot/svg/png/pdf (negative counts from the end)")
	cmd.Flags().Float64Var(&opts.render.Scale, "scale", pipeline.DefaultScale, "png resolution multiplier")
	opts.cache.register(cmd)

	return cmd
}

// readFrames loads a frames file written by solve -f json.
func readFrames(path string) (*pipeline.Output, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "frames file %s not found", path)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var out pipeline.Output
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse frames file %s", path)
	}
	if len(out.Frames) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "frames file %s has no frames", path)
	}
	return &out, nil
}

func (c *CLI) runRender(ctx context.Context, input string, opts renderOpts) error {
	ropts := opts.render
	ropts.Formats = parseFormats(opts.formats)
	ropts.Refresh = opts.cache.refresh
	ropts.Logger = c.Logger
	if err := ropts.ValidateForRender(); err != nil {
		return err
	}

	out, err := readFrames(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Rendering %d frames...", len(out.Frames)))
	spinner.Start()

	artifacts, cacheHit, err := runner.RenderWithCacheInfo(ctx, out.Scenario, out.Frames, ropts)
	if err != nil {
		spinner.StopWithError("Render failed")
		return fmt.Errorf("render: %w", err)
	}
	spinner.Stop()

	output := opts.output
	if output == "" && !textOnly(ropts.Formats) {
		output = strings.TrimSuffix(input, "."+extension(pipeline.FormatJSON))
	}
	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: artifacts,
		formats:   ropts.Formats,
		input:     input,
		output:    output,
	})
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return nil
	}

	printSuccess("Render complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(len(out.Frames), countPlacedFrames(out), cacheHit)
	return nil
}

func countPlacedFrames(out *pipeline.Output) int {
	n := 0
	for _, f := range out.Frames {
		if f.Placed {
			n++
		}
	}
	return n
}
