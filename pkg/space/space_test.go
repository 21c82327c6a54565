package space

import (
	"image"
	"testing"
)

func TestSpanNormalizesDragDirection(t *testing.T) {
	tests := []struct {
		name    string
		anchor  Point[Display]
		current Point[Display]
		want    Box[Display]
	}{
		{"down-right", Pt[Display](10, 20), Pt[Display](60, 80), Box[Display]{X: 10, Y: 20, Width: 50, Height: 60}},
		{"up-left", Pt[Display](60, 80), Pt[Display](10, 20), Box[Display]{X: 10, Y: 20, Width: 50, Height: 60}},
		{"up-right", Pt[Display](10, 80), Pt[Display](60, 20), Box[Display]{X: 10, Y: 20, Width: 50, Height: 60}},
		{"zero", Pt[Display](5, 5), Pt[Display](5, 5), Box[Display]{X: 5, Y: 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Span(tt.anchor, tt.current); got != tt.want {
				t.Errorf("Span() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestClip(t *testing.T) {
	box := Box[Display]{X: -10, Y: 90, Width: 50, Height: 30}
	got := box.Clip(100, 100)
	want := Box[Display]{X: 0, Y: 90, Width: 40, Height: 10}
	if got != want {
		t.Errorf("Clip() = %+v, want %+v", got, want)
	}

	outside := Box[Display]{X: 200, Y: 200, Width: 10, Height: 10}.Clip(100, 100)
	if outside.Width != 0 || outside.Height != 0 {
		t.Errorf("Clip() of a box outside the bounds = %+v, want zero extent", outside)
	}
}

func TestPixels(t *testing.T) {
	got := Box[Display]{X: 10.4, Y: 0.6, Width: 99.5, Height: 40}.Pixels()
	want := image.Rect(10, 1, 110, 41)
	if got != want {
		t.Errorf("Pixels() = %v, want %v", got, want)
	}
}

func TestToDisplayAndClamp(t *testing.T) {
	p := ToDisplay(Pt[Screen](150, 260), Pt[Screen](100, 200))
	if p.X != 50 || p.Y != 60 {
		t.Fatalf("ToDisplay() = %+v, want {50 60}", p)
	}
	clamped := Clamp(Pt[Display](-5, 500), 300, 400)
	if clamped.X != 0 || clamped.Y != 400 {
		t.Errorf("Clamp() = %+v, want {0 400}", clamped)
	}
}

func TestBitmapDimensions(t *testing.T) {
	var empty Bitmap[Page]
	if !empty.Empty() || empty.Width() != 0 || empty.Height() != 0 {
		t.Errorf("zero Bitmap should be empty with zero dimensions")
	}
	b := NewBitmap[Page](image.NewRGBA(image.Rect(0, 0, 30, 20)))
	if b.Empty() || b.Width() != 30 || b.Height() != 20 {
		t.Errorf("Bitmap dimensions = %dx%d, want 30x20", b.Width(), b.Height())
	}
}
