package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/flexpos/pkg/geom"
)

// pointsPerInch converts viewport units to Graphviz inches; one unit is
// drawn as one point.
const pointsPerInch = 72.0

// ToDOT converts a scene to a Graphviz graph with every rectangle pinned
// at its viewport position. The result is meant for the neato engine,
// which honours pinned positions; see [RenderSVG].
//
// Graphviz's y axis points up, so rectangles are mirrored around the
// window's bottom edge.
func ToDOT(s Scene) string {
	var buf bytes.Buffer
	buf.WriteString("graph placement {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=box, fixedsize=true, fontsize=10, fontname=\"Helvetica\", label=\"\"];\n")
	if s.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n", s.Title)
	}
	buf.WriteString("\n")

	flip := s.Window.Bottom
	writeNode(&buf, "window", s.Window, flip, `style=dashed, color=gray50`)
	writeNode(&buf, "viewport", s.Viewport, flip, `style=dotted, color=gray30`)
	for i, r := range s.Scrollables {
		writeNode(&buf, fmt.Sprintf("scrollable%d", i), r, flip, `style=dotted, color=gray60`)
	}
	if b, ok := s.box(); ok {
		writeNode(&buf, "box", b, flip, `style=dashed, color=goldenrod`)
	}
	writeNode(&buf, "origin", s.Origin, flip, `style=filled, fillcolor=lightblue, color=steelblue, label="origin"`)
	if s.Placed {
		pl := s.Placement
		label := fmt.Sprintf("[%d] %s\n%s", pl.PositionIndex, pl.Mode, pl.Position)
		writeNode(&buf, "overlay", pl.OverlayRect, flip,
			fmt.Sprintf(`style=filled, fillcolor="#b2dfdb", color=teal, label=%q`, label))
		buf.WriteString("\n")
		buf.WriteString("  \"origin\" -- \"overlay\" [style=dotted, color=gray40];\n")
	}

	buf.WriteString("}\n")
	return buf.String()
}

func writeNode(buf *bytes.Buffer, id string, r geom.Rect, flip float64, attrs string) {
	c := r.Center()
	fmt.Fprintf(buf, "  %q [pos=\"%s,%s!\", width=%s, height=%s, %s];\n",
		id,
		inches(c.X), inches(flip-c.Y),
		inches(max(r.Width, 1)), inches(max(r.Height, 1)),
		attrs)
}

func inches(v float64) string {
	return strconv.FormatFloat(v/pointsPerInch, 'f', 3, 64)
}

// RenderSVG renders a DOT graph produced by [ToDOT] to SVG using the
// neato engine. Returns the SVG bytes ready for display or further
// conversion with [ToPDF] or [ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's <svg> tag with one whose viewBox
// starts at the origin and whose width/height match it, so the image
// scales cleanly when embedded.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
