package scenario_test

import (
	"context"
	"fmt"

	"github.com/matzehuels/flexpos/pkg/scenario"
)

func ExampleRun() {
	sc, err := scenario.Parse([]byte(`
[viewport]
width = 1000
height = 800

[origin]
left = 100
top = 100
width = 80
height = 30

[overlay]
width = 200
height = 150

[[positions]]
origin_x = "start"
origin_y = "bottom"
overlay_x = "start"
overlay_y = "top"

[[steps]]
note = "open"

[[steps]]
note = "anchor scrolled to the bottom"
origin = { left = 100, top = 760, width = 80, height = 30 }
`), scenario.FormatTOML)
	if err != nil {
		fmt.Println(err)
		return
	}

	frames, _ := scenario.Run(context.Background(), sc, nil)
	for _, f := range frames {
		fmt.Println(f.Note, f.Placement.Mode, f.Placement.OverlayRect)
	}
	// Output:
	// open exact (100,130 200x150)
	// anchor scrolled to the bottom pushed (100,650 200x150)
}
