package geom

import "testing"

func TestNewRect(t *testing.T) {
	r := NewRect(10, 20, 30, 40)
	if r.Right != 40 || r.Bottom != 60 {
		t.Errorf("NewRect edges = (%v, %v), want (40, 60)", r.Right, r.Bottom)
	}
	if got := r.Center(); got != (Point{X: 25, Y: 40}) {
		t.Errorf("Center() = %v, want {25 40}", got)
	}
}

func TestFromEdges(t *testing.T) {
	tests := []struct {
		name                     string
		left, top, right, bottom float64
		want                     Rect
	}{
		{
			name: "regular",
			left: 0, top: 0, right: 10, bottom: 5,
			want: NewRect(0, 0, 10, 5),
		},
		{
			name: "inverted collapses",
			left: 10, top: 10, right: 5, bottom: 5,
			want: NewRect(10, 10, 0, 0),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FromEdges(tt.left, tt.top, tt.right, tt.bottom); got != tt.want {
				t.Errorf("FromEdges() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRectNormalize(t *testing.T) {
	r := Rect{Left: 5, Top: 6, Width: 7, Height: 8}.Normalize()
	if r.Right != 12 || r.Bottom != 14 {
		t.Errorf("Normalize() = %+v", r)
	}
}

func TestRectIsZero(t *testing.T) {
	if !(Rect{}).IsZero() {
		t.Error("zero Rect should report IsZero")
	}
	if NewRect(1, 0, 0, 0).IsZero() {
		t.Error("point rect at x=1 should not report IsZero")
	}
	if !NewRect(1, 0, 0, 0).IsEmpty() {
		t.Error("point rect should report IsEmpty")
	}
}

func TestRectContains(t *testing.T) {
	outer := NewRect(0, 0, 100, 100)
	tests := []struct {
		name  string
		inner Rect
		want  bool
	}{
		{"inside", NewRect(10, 10, 20, 20), true},
		{"same", outer, true},
		{"overflows right", NewRect(90, 10, 20, 20), false},
		{"overflows top", NewRect(10, -1, 20, 20), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := outer.Contains(tt.inner); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.inner, got, tt.want)
			}
		})
	}
}

func TestRectIntersect(t *testing.T) {
	a := NewRect(0, 0, 50, 50)
	b := NewRect(25, 25, 50, 50)
	if got, want := a.Intersect(b), NewRect(25, 25, 25, 25); got != want {
		t.Errorf("Intersect() = %v, want %v", got, want)
	}
	if got := a.Intersect(NewRect(60, 60, 5, 5)); !got.IsEmpty() {
		t.Errorf("disjoint Intersect() = %v, want empty", got)
	}
}

func TestRectInset(t *testing.T) {
	if got, want := NewRect(0, 0, 100, 50).Inset(10), NewRect(10, 10, 80, 30); got != want {
		t.Errorf("Inset(10) = %v, want %v", got, want)
	}
	if got := NewRect(0, 0, 10, 10).Inset(20); got.Width != 0 || got.Height != 0 {
		t.Errorf("Inset beyond size = %v, want zero size", got)
	}
}

func TestNarrowViewport(t *testing.T) {
	tests := []struct {
		name          string
		width, height float64
		margin        float64
		want          Rect
	}{
		{"no margin", 1000, 800, 0, NewRect(0, 0, 1000, 800)},
		{"margin", 1000, 800, 8, NewRect(8, 8, 984, 784)},
		{"margin clamped to half", 100, 40, 50, NewRect(20, 20, 60, 0)},
		{"negative margin ignored", 100, 100, -5, NewRect(0, 0, 100, 100)},
		{"headless", 0, 0, 8, Rect{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NarrowViewport(tt.width, tt.height, tt.margin)
			if got != tt.want {
				t.Errorf("NarrowViewport() = %+v, want %+v", got, tt.want)
			}
			if got.Width < 0 || got.Height < 0 {
				t.Errorf("NarrowViewport() produced negative size %+v", got)
			}
		})
	}
}

func TestPointArithmetic(t *testing.T) {
	p := Point{X: 3, Y: 4}
	q := Point{X: 1, Y: 2}
	if got := p.Add(q); got != (Point{X: 4, Y: 6}) {
		t.Errorf("Add() = %v", got)
	}
	if got := p.Sub(q); got != (Point{X: 2, Y: 2}) {
		t.Errorf("Sub() = %v", got)
	}
}
