package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/pipeline"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

type solveOpts struct {
	formats string
	output  string
	table   bool
	cache   cacheOpts
	render  pipeline.Options
}

// solveCommand creates the solve command: scenario in, placements out.
func (c *CLI) solveCommand() *cobra.Command {
	var opts solveOpts

	cmd := &cobra.Command{
		Use:   "solve [scenario.toml]",
		Short: "Solve a scenario and write its placements",
		Long: `Solve a scenario and write its placements.

The solve command attaches a positioner to the viewport, anchor and overlay
described by the scenario, runs each scripted step (apply, reapply, resize,
positions, detach, attach) and records the placement after every step.

Output formats:
  text  ASCII drawing of each frame (default; printed when -o is omitted)
  json  frames as JSON, input for 'flexpos render'
  dot   Graphviz source of one frame (--frame)
  svg   diagram of one frame
  png   raster diagram (needs rsvg-convert)
  pdf   vector diagram (needs rsvg-convert)

Results are cached locally for faster subsequent runs.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runSolve(cmd.Context(), args[0], opts)
		},
	}

	cmd.Flags().StringVarP(&opts.formats, "format", "f", "", "output format(s): text (default), json, dot, svg, png, pdf (comma-separated)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output base path (default: next to the scenario)")
	cmd.Flags().BoolVar(&opts.table, "table", false, "print a table of the frames")
	cmd.Flags().IntVar(&opts.render.Cols, "cols", pipeline.DefaultCols, "text grid width in characters")
	cmd.Flags().IntVar(&opts.render.Rows, "rows", pipeline.DefaultRows, "text grid height in lines")
	cmd.Flags().IntVar(&opts.render.Frame, "frame", -1, "frame drawn by dot/svg/png/pdf (negative counts from the end)")
	cmd.Flags().Float64Var(&opts.render.Scale, "scale", pipeline.DefaultScale, "png resolution multiplier")
	opts.cache.register(cmd)

	return cmd
}

// loadScenario validates the path and loads the scenario it names.
func loadScenario(path string) (*scenario.Scenario, error) {
	if err := errors.ValidateScenarioPath(path); err != nil {
		return nil, err
	}
	sc, err := scenario.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load scenario %s: %w", path, err)
	}
	return sc, nil
}

func (c *CLI) runSolve(ctx context.Context, input string, opts solveOpts) error {
	ropts := opts.render
	ropts.Formats = parseFormats(opts.formats)
	ropts.Refresh = opts.cache.refresh
	ropts.Logger = c.Logger
	if err := ropts.ValidateForRender(); err != nil {
		return err
	}

	sc, err := loadScenario(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.cache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	prog := newProgress(c.Logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Solving %s...", scenarioName(sc, input)))
	spinner.Start()

	result, err := runner.Execute(ctx, sc, ropts)
	if err != nil {
		spinner.StopWithError("Solve failed")
		return fmt.Errorf("solve: %w", err)
	}
	spinner.Stop()

	if ctx.Err() != nil {
		return ctx.Err()
	}

	paths, err := writeArtifacts(artifactWriteParams{
		artifacts: result.Artifacts,
		formats:   ropts.Formats,
		input:     input,
		output:    opts.output,
	})
	if err != nil {
		return err
	}
	prog.done("Solved " + scenarioName(sc, input))

	if opts.table {
		fmt.Println(frameTable(result.Frames))
	}
	if len(paths) == 0 {
		return nil
	}

	printSuccess("Solve complete")
	for _, p := range paths {
		printFile(p)
	}
	printStats(result.Stats.Steps, result.Stats.Placed, result.CacheInfo.SolveHit && result.CacheInfo.RenderHit)
	printNewline()
	for _, p := range paths {
		if strings.HasSuffix(p, "."+extension(pipeline.FormatJSON)) {
			printNextStep("Render", "flexpos render -f svg "+p)
			return nil
		}
	}
	printNextStep("Explore", "flexpos play "+input)
	return nil
}

func scenarioName(sc *scenario.Scenario, input string) string {
	if sc.Name != "" {
		return sc.Name
	}
	return input
}
