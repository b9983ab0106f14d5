package render

import (
	"context"
	"strings"
	"testing"

	"github.com/matzehuels/flexpos/pkg/geom"
	"github.com/matzehuels/flexpos/pkg/overlay"
	"github.com/matzehuels/flexpos/pkg/scenario"
)

func testScene() Scene {
	return Scene{
		Window:   geom.NewRect(0, 0, 10, 5),
		Viewport: geom.NarrowViewport(10, 5, 1),
		Origin:   geom.NewRect(2, 1, 2, 1),
		Placed:   true,
		Placement: overlay.Placement{
			Position:    overlay.Pos(overlay.XStart, overlay.YBottom, overlay.XStart, overlay.YTop),
			Mode:        overlay.ModeExact,
			OverlayRect: geom.NewRect(2, 2, 6, 2),
			BoundingBox: overlay.BoundingBox{Rect: geom.NewRect(0, 0, 10, 5), Exact: true},
		},
	}
}

func TestGridFill(t *testing.T) {
	tests := []struct {
		name string
		rect geom.Rect
		want string
	}{
		{"inside", geom.NewRect(1, 1, 2, 1), "\n ##\n"},
		{"clipped", geom.NewRect(-2, 2, 4, 5), "\n\n##"},
		{"point", geom.NewRect(3, 0, 0, 0), "   #\n\n"},
		{"outside", geom.NewRect(20, 20, 1, 1), "\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGrid(4, 3, geom.Size{Width: 4, Height: 3})
			g.Fill(tt.rect, '#', LayerOrigin)
			if got := g.String(); got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGridScale(t *testing.T) {
	g := NewGrid(10, 4, geom.Size{Width: 1000, Height: 800})
	g.Fill(geom.NewRect(400, 600, 100, 200), '=', LayerOverlay)
	want := "\n\n\n    ="
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGridLayers(t *testing.T) {
	g := NewGrid(3, 1, geom.Size{})
	g.Fill(geom.NewRect(0, 0, 3, 1), '=', LayerOverlay)
	g.Fill(geom.NewRect(1, 0, 1, 1), '#', LayerOrigin)
	if got := g.String(); got != "===" {
		t.Errorf("lower layer drew over higher: %q", got)
	}
	if c := g.At(1, 0); c.Layer != LayerOverlay {
		t.Errorf("At(1,0).Layer = %d, want %d", c.Layer, LayerOverlay)
	}
	if c := g.At(5, 5); c.Rune != ' ' {
		t.Errorf("At(out of range) = %q", c.Rune)
	}
}

func TestGridOutlineAndLabel(t *testing.T) {
	g := NewGrid(5, 3, geom.Size{})
	g.Outline(geom.NewRect(0, 0, 5, 3), '~', LayerBox)
	g.Label(geom.NewRect(1, 1, 2, 1), "abc", LayerLabel)
	want := "~~~~~\n~ab ~\n~~~~~"
	if got := g.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestGridRenderPlainStyles(t *testing.T) {
	g := NewGrid(4, 2, geom.Size{})
	g.Fill(geom.NewRect(0, 0, 2, 1), '#', LayerOrigin)
	// Zero-value styles render text unchanged.
	if got, want := g.Render(Styles{}), "##  \n    "; got != want {
		t.Errorf("Render() = %q, want %q", got, want)
	}
}

func TestSceneDraw(t *testing.T) {
	got := testScene().Draw(10, 5).String()
	want := strings.Join([]string{
		"..........",
		". ##     .",
		". [0]=== .",
		". ====== .",
		"..........",
	}, "\n")
	if got != want {
		t.Errorf("Draw() =\n%s\nwant\n%s", got, want)
	}
}

func TestSceneFlexibleBox(t *testing.T) {
	s := testScene()
	s.Placement.Mode = overlay.ModeFlexible
	s.Placement.BoundingBox = overlay.BoundingBox{Rect: geom.NewRect(1, 2, 8, 3)}
	s.Placement.OverlayRect = geom.NewRect(2, 2, 2, 1)

	got := s.Draw(10, 5).String()
	if !strings.Contains(got, "~") {
		t.Errorf("flexible placement should outline its box:\n%s", got)
	}
	if !strings.Contains(ToDOT(s), `"box"`) {
		t.Error("ToDOT() should include the flexible box")
	}
}

func TestSceneNotPlaced(t *testing.T) {
	s := NewScene(overlay.Geometry{
		Window:   geom.NewRect(0, 0, 10, 5),
		Viewport: geom.NewRect(0, 0, 10, 5),
		Origin:   geom.NewRect(0, 0, 1, 1),
	}, overlay.Placement{})
	if s.Placed {
		t.Fatal("zero placement should not be drawn")
	}
	if got := s.Draw(10, 5).String(); strings.Contains(got, "=") {
		t.Errorf("Draw() drew an overlay:\n%s", got)
	}
	if got := Describe(s.Placement); got != "not placed" {
		t.Errorf("Describe() = %q", got)
	}
}

func TestDescribe(t *testing.T) {
	pl := testScene().Placement
	pl.PositionIndex = 1
	pl.IsPushed = true
	pl.PanelClass = []string{"above", "wide"}
	want := "exact position 1 (start,bottom -> start,top) at (2,2 6x2) pushed class=above,wide"
	if got := Describe(pl); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}

func TestText(t *testing.T) {
	s := testScene()
	frames := []scenario.Frame{
		{Step: 0, Action: "apply", Note: "open", Placed: true, Placement: s.Placement,
			Geometry: overlay.Geometry{Window: s.Window, Viewport: s.Viewport, Origin: s.Origin}},
		{Step: 1, Action: "apply", Placement: s.Placement,
			Geometry: overlay.Geometry{Window: s.Window, Viewport: s.Viewport, Origin: s.Origin}},
	}
	got := Text(frames, 10, 5)
	for _, want := range []string{
		"step 0 apply: open\nexact position 0",
		"step 1 apply\nunchanged, exact position 0",
		". [0]=== .",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Text() missing %q:\n%s", want, got)
		}
	}
}

func TestToDOT(t *testing.T) {
	s := testScene()
	s.Title = "step 0"
	s.Window = geom.NewRect(0, 0, 144, 144)
	s.Origin = geom.NewRect(0, 0, 72, 72)

	dot := ToDOT(s)
	for _, want := range []string{
		"graph placement {",
		"layout=neato;",
		`label="step 0";`,
		`"origin" [pos="0.500,1.500!", width=1.000, height=1.000,`,
		`"origin" -- "overlay"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() missing %q:\n%s", want, dot)
		}
	}
	if strings.Contains(dot, `"box"`) {
		t.Error("exact placement should not draw a bounding box")
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(testScene()))
	if err != nil {
		t.Fatalf("RenderSVG() error = %v", err)
	}
	if !strings.Contains(string(svg), `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 `) {
		t.Errorf("RenderSVG() did not normalize the svg tag:\n%.200s", svg)
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"graphviz tag",
			`<svg width="100pt" height="50pt" viewBox="0.00 0.00 100.00 50.00" xmlns="http://www.w3.org/2000/svg"><g/></svg>`,
			`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 100.00 50.00" width="100" height="50"><g/></svg>`,
		},
		{"no viewBox", `<svg><g/></svg>`, `<svg><g/></svg>`},
		{"zero size", `<svg viewBox="0 0 0 10"></svg>`, `<svg viewBox="0 0 0 10"></svg>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(normalizeViewBox([]byte(tt.in))); got != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", got, tt.want)
			}
		})
	}
}
