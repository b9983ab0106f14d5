// Package render draws overlay placements.
//
// # Overview
//
// A [Scene] collects what is drawn for one placement: the window, the
// narrowed viewport, scroll containers, the origin, the flexible bounding
// box and the overlay. Scenes come from a geometry snapshot and a
// placement ([NewScene]) or from a scenario frame ([FrameScene]).
//
// # Text
//
// [Scene.Draw] projects a scene onto a character [Grid]. The playground
// styles the grid with lipgloss via [Grid.Render]; `flexpos solve -f text`
// prints it plain via [Text]:
//
//	step 0 apply: open
//	exact position 0 (start,bottom -> start,top) at (2,2 6x2)
//	..........
//	. ##     .
//	. [0]=== .
//	. ====== .
//	..........
//
// # Diagrams
//
// [ToDOT] emits a Graphviz graph in which every rectangle is a box pinned
// at its viewport position. [RenderSVG] lays it out with neato through
// go-graphviz (no Graphviz installation needed). [ToPDF] and [ToPNG]
// convert the SVG with the external rsvg-convert tool.
//
//	dot := render.ToDOT(render.FrameScene(frame))
//	svg, err := render.RenderSVG(ctx, dot)
//	png, err := render.ToPNG(ctx, svg, 2.0)
package render
