// Package space tags points, boxes and bitmaps with the coordinate space they were measured in,
// so a box drawn on the display surface cannot be used to crop a page-resolution bitmap by accident.
package space

import (
	"image"
	"math"
)

// Screen is the client coordinate space of the pointer device.
type Screen struct{}

// Display is the pixel space of the scaled on-screen surface. Selection boxes live here.
type Display struct{}

// Page is the pixel space of a rendered page at rasterization scale.
type Page struct{}

type Point[S any] struct {
	X float64
	Y float64
}

func Pt[S any](x float64, y float64) Point[S] {
	return Point[S]{X: x, Y: y}
}

// Box is an axis-aligned rectangle with a top-left origin. E.g., {X: 10, Y: 20, Width: 100, Height: 40}
type Box[S any] struct {
	X      float64
	Y      float64
	Width  float64
	Height float64
}

// Span returns the canonical box between two corners regardless of drag direction.
func Span[S any](anchor Point[S], current Point[S]) Box[S] {
	return Box[S]{
		X:      math.Min(anchor.X, current.X),
		Y:      math.Min(anchor.Y, current.Y),
		Width:  math.Abs(current.X - anchor.X),
		Height: math.Abs(current.Y - anchor.Y),
	}
}

func (b Box[S]) Right() float64 {
	return b.X + b.Width
}

func (b Box[S]) Bottom() float64 {
	return b.Y + b.Height
}

// Pixels rounds the box to whole pixels. E.g., {X: 10.4, Y: 0.6, Width: 99.5, Height: 40} -> (10,1)-(110,41)
func (b Box[S]) Pixels() image.Rectangle {
	x := int(math.Round(b.X))
	y := int(math.Round(b.Y))
	return image.Rect(x, y, x+int(math.Round(b.Width)), y+int(math.Round(b.Height)))
}

// Clip intersects the box with [0, width] x [0, height].
func (b Box[S]) Clip(width float64, height float64) Box[S] {
	left := math.Max(0, b.X)
	top := math.Max(0, b.Y)
	right := math.Min(width, b.Right())
	bottom := math.Min(height, b.Bottom())
	if right <= left || bottom <= top {
		return Box[S]{X: left, Y: top}
	}
	return Box[S]{X: left, Y: top, Width: right - left, Height: bottom - top}
}

// ToDisplay converts a pointer position into surface-local coordinates by subtracting the
// surface's on-screen origin.
func ToDisplay(p Point[Screen], origin Point[Screen]) Point[Display] {
	return Point[Display]{X: p.X - origin.X, Y: p.Y - origin.Y}
}

// Clamp keeps a surface point within [0, width] x [0, height].
func Clamp(p Point[Display], width float64, height float64) Point[Display] {
	return Point[Display]{
		X: math.Max(0, math.Min(width, p.X)),
		Y: math.Max(0, math.Min(height, p.Y)),
	}
}

// Bitmap is an RGBA image whose pixels are addressed in space S.
type Bitmap[S any] struct {
	img *image.RGBA
}

func NewBitmap[S any](img *image.RGBA) Bitmap[S] {
	return Bitmap[S]{img: img}
}

func (b Bitmap[S]) Image() *image.RGBA {
	return b.img
}

func (b Bitmap[S]) Empty() bool {
	return b.img == nil || b.img.Bounds().Empty()
}

func (b Bitmap[S]) Width() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dx()
}

func (b Bitmap[S]) Height() int {
	if b.img == nil {
		return 0
	}
	return b.img.Bounds().Dy()
}
