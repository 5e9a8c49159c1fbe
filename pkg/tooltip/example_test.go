package tooltip_test

import (
	"fmt"

	"github.com/matzehuels/seatmap/pkg/tooltip"
)

func ExamplePlace() {
	viewport := tooltip.Size{W: 800, H: 600}
	size := tooltip.Size{W: 200, H: 100}

	// Near the right edge the tooltip flips to the left of the cursor.
	p := tooltip.Place(tooltip.Point{X: 750, Y: 50}, size, viewport, tooltip.DefaultOffset)
	fmt.Printf("left=%.0f top=%.0f\n", p.Left, p.Top)
	// Output:
	// left=540 top=60
}
