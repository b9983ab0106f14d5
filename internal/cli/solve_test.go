package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/flexpos/pkg/pipeline"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

func TestSolveAndRender(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "dropdown.toml")
	if err := scenario.Save(scenario.Sample(), input); err != nil {
		t.Fatal(err)
	}
	c := New(io.Discard, LogInfo)
	noCache := cacheOpts{noCache: true}

	out := filepath.Join(dir, "out")
	err := c.runSolve(t.Context(), input, solveOpts{
		formats: "json,text",
		output:  out,
		cache:   noCache,
		render:  pipeline.Options{Frame: -1},
	})
	if err != nil {
		t.Fatalf("runSolve() error = %v", err)
	}

	frames, err := readFrames(out + ".frames.json")
	if err != nil {
		t.Fatalf("readFrames() error = %v", err)
	}
	if frames.Scenario != "dropdown" || len(frames.Frames) != len(scenario.Sample().Steps) {
		t.Errorf("frames = %q with %d frames", frames.Scenario, len(frames.Frames))
	}
	text, err := os.ReadFile(out + ".txt")
	if err != nil {
		t.Fatalf("text output missing: %v", err)
	}
	if !strings.Contains(string(text), "below") {
		t.Errorf("text output should mention the chosen position:\n%s", text)
	}

	err = c.runRender(t.Context(), out+".frames.json", renderOpts{
		formats: "dot",
		cache:   noCache,
		render:  pipeline.Options{Frame: 0},
	})
	if err != nil {
		t.Fatalf("runRender() error = %v", err)
	}
	if data, err := os.ReadFile(out + ".dot"); err != nil || !strings.Contains(string(data), "digraph") {
		t.Errorf("dot output = %q, %v", data, err)
	}
}

func TestSolveErrors(t *testing.T) {
	c := New(io.Discard, LogInfo)
	tests := []struct {
		name  string
		input string
		opts  solveOpts
	}{
		{"bad extension", "scenario.yaml", solveOpts{}},
		{"missing file", filepath.Join(t.TempDir(), "none.toml"), solveOpts{}},
		{"bad format", "scenario.toml", solveOpts{formats: "gif"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.opts.cache.noCache = true
			if err := c.runSolve(t.Context(), tt.input, tt.opts); err == nil {
				t.Error("runSolve() should fail")
			}
		})
	}
}

func TestInit(t *testing.T) {
	c := New(io.Discard, LogInfo)
	path := filepath.Join(t.TempDir(), "menu.json")

	if err := c.runInit(path, false); err != nil {
		t.Fatalf("runInit() error = %v", err)
	}
	sc, err := scenario.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(sc.Positions) != 3 {
		t.Errorf("Positions = %d, want 3", len(sc.Positions))
	}
	if err := c.runInit(path, false); err == nil {
		t.Error("runInit() should refuse to overwrite")
	}
	if err := c.runInit(path, true); err != nil {
		t.Errorf("runInit(force) error = %v", err)
	}
}
