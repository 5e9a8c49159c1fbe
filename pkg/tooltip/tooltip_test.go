package tooltip

import "testing"

func TestPlace(t *testing.T) {
	viewport := Size{W: 800, H: 600}
	size := Size{W: 200, H: 100}

	tests := []struct {
		name   string
		cursor Point
		want   Position
	}{
		{"room on both axes", Point{100, 100}, Position{110, 110}},
		{"flip left near right edge", Point{750, 50}, Position{540, 60}},
		{"flip up near bottom edge", Point{100, 580}, Position{110, 470}},
		{"flip both in corner", Point{790, 590}, Position{580, 480}},
		{"exact fit is not a flip", Point{590, 490}, Position{600, 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Place(tt.cursor, size, viewport, DefaultOffset); got != tt.want {
				t.Errorf("Place(%v) = %+v, want %+v", tt.cursor, got, tt.want)
			}
		})
	}
}

func TestPlaceClampsWhenFlipOverflows(t *testing.T) {
	// Tooltip wider than the space on either side of the cursor.
	got := Place(Point{150, 20}, Size{W: 300, H: 50}, Size{W: 400, H: 600}, DefaultOffset)
	if got.Left != 10 {
		t.Errorf("Left = %v, want clamped to margin 10", got.Left)
	}
	if got.Top != 30 {
		t.Errorf("Top = %v, want 30", got.Top)
	}
}

func TestPlaceStaysInViewport(t *testing.T) {
	viewport := Size{W: 800, H: 600}
	size := Size{W: 200, H: 100}
	for x := 0.0; x <= viewport.W; x += 25 {
		for y := 0.0; y <= viewport.H; y += 25 {
			p := Place(Point{x, y}, size, viewport, DefaultOffset)
			if p.Left < 0 || p.Top < 0 {
				t.Fatalf("Place(%v,%v) = %+v, negative origin", x, y, p)
			}
			if p.Left+size.W > viewport.W || p.Top+size.H > viewport.H {
				t.Fatalf("Place(%v,%v) = %+v, overflows viewport", x, y, p)
			}
		}
	}
}
