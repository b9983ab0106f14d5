package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/flexpos/pkg/cache"
	"github.com/matzehuels/flexpos/pkg/errors"
	"github.com/matzehuels/flexpos/pkg/observability"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

const dropdownTOML = `
name = "dropdown"

[viewport]
width = 1000
height = 800

[origin]
left = 400
top = 780
width = 100
height = 20

[overlay]
width = 100
height = 300

[[positions]]
origin_x = "start"
origin_y = "bottom"
overlay_x = "start"
overlay_y = "top"

[[positions]]
origin_x = "start"
origin_y = "top"
overlay_x = "start"
overlay_y = "bottom"

[[steps]]
note = "open"

[[steps]]
action = "resize"
height = 300
`

func loadDropdown(t *testing.T) *scenario.Scenario {
	t.Helper()
	sc, err := scenario.Parse([]byte(dropdownTOML), scenario.FormatTOML)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return sc
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		formats []string
		wantErr bool
	}{
		{[]string{"json", "text", "dot", "svg", "png", "pdf"}, false},
		{nil, false},
		{[]string{"svg", "gif"}, true},
		{[]string{"SVG"}, true}, // case-sensitive
		{[]string{""}, true},
	}

	for _, tt := range tests {
		err := ValidateFormats(tt.formats)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormats(%v) code = %s", tt.formats, errors.GetCode(err))
		}
	}
}

func TestSetRenderDefaults(t *testing.T) {
	var opts Options
	opts.SetRenderDefaults()
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatText {
		t.Errorf("Formats = %v, want [text]", opts.Formats)
	}
	if opts.Cols != DefaultCols || opts.Rows != DefaultRows || opts.Scale != DefaultScale {
		t.Errorf("defaults = %d x %d scale %g", opts.Cols, opts.Rows, opts.Scale)
	}
	if opts.Logger == nil {
		t.Error("Logger should default to a discarding logger")
	}

	opts = Options{Cols: 40, Frame: -1}
	opts.SetRenderDefaults()
	if opts.Cols != 40 || opts.Frame != -1 {
		t.Errorf("explicit values overwritten: %+v", opts)
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	a := Options{Cols: 80, Rows: 24, Frame: 0, Scale: 1}
	b := Options{Cols: 80, Rows: 24, Frame: 1, Scale: 2}

	if a.ArtifactKeyOpts(FormatText) != b.ArtifactKeyOpts(FormatText) {
		t.Error("text key should ignore frame and scale")
	}
	if a.ArtifactKeyOpts(FormatSVG) == b.ArtifactKeyOpts(FormatSVG) {
		t.Error("svg key should depend on the frame")
	}
	c := Options{Cols: 10}
	if a.ArtifactKeyOpts(FormatJSON) != c.ArtifactKeyOpts(FormatJSON) {
		t.Error("json key should not depend on render options")
	}
}

func TestExecute(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	r := NewRunner(fc, nil, nil)
	defer r.Close()

	opts := Options{Formats: []string{FormatJSON, FormatText, FormatDOT}, Cols: 20, Rows: 8}
	res, err := r.Execute(ctx, loadDropdown(t), opts)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if res.CacheInfo.SolveHit || res.CacheInfo.RenderHit {
		t.Errorf("first run CacheInfo = %+v, want misses", res.CacheInfo)
	}
	if res.Stats.Steps != 2 || res.Stats.Placed != 2 {
		t.Errorf("Stats = %+v", res.Stats)
	}
	if len(res.FramesHash) != 64 {
		t.Errorf("FramesHash = %q", res.FramesHash)
	}

	var out Output
	if err := json.Unmarshal(res.Artifacts[FormatJSON], &out); err != nil {
		t.Fatalf("json artifact: %v", err)
	}
	if out.Scenario != "dropdown" || len(out.Frames) != 2 {
		t.Errorf("json artifact = %s / %d frames", out.Scenario, len(out.Frames))
	}
	if text := string(res.Artifacts[FormatText]); !strings.Contains(text, "step 1 resize") {
		t.Errorf("text artifact:\n%s", text)
	}
	if dot := string(res.Artifacts[FormatDOT]); !strings.Contains(dot, "graph placement") {
		t.Errorf("dot artifact:\n%s", dot)
	}

	again, err := r.Execute(ctx, loadDropdown(t), opts)
	if err != nil {
		t.Fatalf("Execute() again error = %v", err)
	}
	if !again.CacheInfo.SolveHit || !again.CacheInfo.RenderHit {
		t.Errorf("second run CacheInfo = %+v, want hits", again.CacheInfo)
	}
	if string(again.Artifacts[FormatText]) != string(res.Artifacts[FormatText]) {
		t.Error("cached text artifact differs")
	}

	opts.Refresh = true
	fresh, err := r.Execute(ctx, loadDropdown(t), opts)
	if err != nil {
		t.Fatalf("Execute() refresh error = %v", err)
	}
	if fresh.CacheInfo.SolveHit || fresh.CacheInfo.RenderHit {
		t.Errorf("refresh CacheInfo = %+v, want misses", fresh.CacheInfo)
	}
}

func TestExecuteErrors(t *testing.T) {
	ctx := context.Background()
	r := NewRunner(nil, nil, nil)

	tests := []struct {
		name     string
		modify   func(*scenario.Scenario)
		opts     Options
		wantCode errors.Code
	}{
		{"bad format", func(*scenario.Scenario) {}, Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad scenario", func(s *scenario.Scenario) { s.Viewport.Width = -1 }, Options{}, errors.ErrCodeInvalidScenario},
		{"frame out of range", func(*scenario.Scenario) {}, Options{Formats: []string{FormatDOT}, Frame: 5}, errors.ErrCodeInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sc := loadDropdown(t)
			tt.modify(sc)
			_, err := r.Execute(ctx, sc, tt.opts)
			if !errors.Is(err, tt.wantCode) {
				t.Errorf("Execute() error = %v, want %s", err, tt.wantCode)
			}
		})
	}
}

func TestSelectScene(t *testing.T) {
	frames := []scenario.Frame{{Step: 0, Action: "apply"}, {Step: 1, Action: "resize"}}
	tests := []struct {
		i       int
		want    string
		wantErr bool
	}{
		{0, "step 0 apply", false},
		{-1, "step 1 resize", false},
		{-2, "step 0 apply", false},
		{2, "", true},
		{-3, "", true},
	}
	for _, tt := range tests {
		s, err := selectScene(frames, tt.i)
		if (err != nil) != tt.wantErr {
			t.Errorf("selectScene(%d) error = %v", tt.i, err)
			continue
		}
		if err == nil && s.Title != tt.want {
			t.Errorf("selectScene(%d).Title = %q, want %q", tt.i, s.Title, tt.want)
		}
	}
}

type recordingHooks struct {
	observability.NoopPipelineHooks
	events []string
}

func (h *recordingHooks) OnScenarioStart(_ context.Context, name string, steps int) {
	h.events = append(h.events, "start:"+name)
}

func (h *recordingHooks) OnScenarioComplete(_ context.Context, name string, frames int, _ time.Duration, err error) {
	h.events = append(h.events, "complete:"+name)
}

func (h *recordingHooks) OnRenderStart(_ context.Context, formats []string) {
	h.events = append(h.events, "render:"+strings.Join(formats, ","))
}

func TestPipelineHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetPipelineHooks(hooks)
	defer observability.Reset()

	r := NewRunner(nil, nil, nil)
	if _, err := r.Execute(context.Background(), loadDropdown(t), Options{Formats: []string{FormatJSON}}); err != nil {
		t.Fatal(err)
	}
	want := "start:dropdown complete:dropdown render:json"
	if got := strings.Join(hooks.events, " "); got != want {
		t.Errorf("events = %q, want %q", got, want)
	}
}
