package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/flexpos/pkg/cache"
	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/observability"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API use it so caching logic lives in one place.
//
// The Runner is stateless except for the cache and logger. Multiple
// goroutines can safely use the same Runner with different scenarios.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  cache.Instrument(c),
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute solves sc and renders every requested format.
func (r *Runner) Execute(ctx context.Context, sc *scenario.Scenario, opts Options) (*Result, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	result := &Result{Scenario: sc.Name}

	solveStart := time.Now()
	frames, solveHit, err := r.SolveWithCacheInfo(ctx, sc, opts)
	if err != nil {
		return nil, err
	}
	result.Frames = frames
	result.Stats.SolveTime = time.Since(solveStart)
	result.Stats.Steps = len(frames)
	result.Stats.Placed = countPlaced(frames)
	result.CacheInfo.SolveHit = solveHit

	r.Logger.Info("solved scenario",
		"scenario", sc.Name,
		"steps", result.Stats.Steps,
		"placed", result.Stats.Placed,
		"cached", solveHit,
		"duration", result.Stats.SolveTime)

	renderStart := time.Now()
	artifacts, hash, renderHit, err := r.renderWithCacheInfo(ctx, sc.Name, frames, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.FramesHash = hash
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", renderHit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// SolveWithCacheInfo runs the scenario and reports whether the frames came
// from the cache.
func (r *Runner) SolveWithCacheInfo(ctx context.Context, sc *scenario.Scenario, opts Options) ([]scenario.Frame, bool, error) {
	if err := sc.Validate(); err != nil {
		return nil, false, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = r.Logger
	}

	scHash, err := cache.HashJSON(sc)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "hash scenario")
	}
	key := r.Keyer.FramesKey(scHash)

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var frames []scenario.Frame
			if err := json.Unmarshal(data, &frames); err == nil {
				logger.Debug("frames cache hit", "scenario", sc.Name)
				return frames, true, nil
			}
		} else if err != nil {
			logger.Warn("cache read failed", "error", err)
		}
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnScenarioStart(ctx, sc.Name, len(sc.ScriptedSteps()))
	frames, err := scenario.Run(ctx, sc, logger)
	hooks.OnScenarioComplete(ctx, sc.Name, len(frames), time.Since(start), err)
	if err != nil {
		return nil, false, err
	}

	if data, err := json.Marshal(frames); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.FramesTTL); err != nil {
			logger.Warn("cache write failed", "error", err)
		}
	}
	return frames, false, nil
}

// Solve is SolveWithCacheInfo without the cache hit info.
func (r *Runner) Solve(ctx context.Context, sc *scenario.Scenario, opts Options) ([]scenario.Frame, error) {
	frames, _, err := r.SolveWithCacheInfo(ctx, sc, opts)
	return frames, err
}

// RenderWithCacheInfo renders frames in every requested format and reports
// whether all of them came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, name string, frames []scenario.Frame, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	artifacts, _, hit, err := r.renderWithCacheInfo(ctx, name, frames, opts)
	return artifacts, hit, err
}

// Render is RenderWithCacheInfo without the cache hit info.
func (r *Runner) Render(ctx context.Context, name string, frames []scenario.Frame, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, name, frames, opts)
	return artifacts, err
}

func (r *Runner) renderWithCacheInfo(ctx context.Context, name string, frames []scenario.Frame, opts Options) (map[string][]byte, string, bool, error) {
	framesHash, err := cache.HashJSON(Output{Scenario: name, Frames: frames})
	if err != nil {
		return nil, "", false, errors.Wrap(errors.ErrCodeInternal, err, "hash frames")
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(framesHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, framesHash, true, nil
		}
	}

	start := time.Now()
	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, opts.Formats)
	rendered, err := RenderFrames(ctx, name, frames, opts)
	hooks.OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	if err != nil {
		return nil, "", false, err
	}

	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(framesHash, opts.ArtifactKeyOpts(format))
		_ = r.Cache.Set(ctx, key, data, cache.ArtifactTTL)
	}
	return rendered, framesHash, false, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func countPlaced(frames []scenario.Frame) int {
	n := 0
	for _, f := range frames {
		if f.Placed {
			n++
		}
	}
	return n
}
