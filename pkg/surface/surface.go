package surface

import (
	"fmt"
	"image"
	"math"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	xdraw "golang.org/x/image/draw"

	"github.com/qiraa-project/qiraa/pkg/font"
	"github.com/qiraa-project/qiraa/pkg/raster"
	"github.com/qiraa-project/qiraa/pkg/space"
)

// Horizontal space kept free around the surface inside its container.
const Margin = 64

const (
	outlineWidth    = 2.0
	committedAlpha  = 0.2
	transientAlpha  = 0.1
	labelWidth      = 24.0
	labelHeight     = 20.0
	labelFontSize   = 12.0
	transientDashOn = 4.0
)

// Indigo-600.
var accent = mustHex("#4f46e5")

// Geometry is the on-screen size of a rendered page fitted to its container width.
type Geometry struct {
	Width  int
	Height int
	// Display pixels per page pixel. E.g., 0.5 when a 1600px page is shown 800px wide.
	Scale float64
}

func (g Geometry) Empty() bool {
	return g.Width <= 0 || g.Height <= 0
}

// ComputeGeometry fits the page to containerWidth minus Margin, preserving its aspect ratio.
// Degenerate inputs yield a zero-area surface.
func ComputeGeometry(page *raster.RenderedPage, containerWidth int) Geometry {
	if page == nil {
		return Geometry{}
	}
	return compute(page.Width(), page.Height(), containerWidth)
}

func compute(pageWidth int, pageHeight int, containerWidth int) Geometry {
	width := containerWidth - Margin
	if width <= 0 || pageWidth <= 0 || pageHeight <= 0 {
		return Geometry{}
	}
	scale := float64(width) / float64(pageWidth)
	height := int(math.Round(float64(pageHeight) * scale))
	if height <= 0 {
		return Geometry{}
	}
	return Geometry{Width: width, Height: height, Scale: scale}
}

// Surface owns the page scaled to display space. Boxes drawn over it and regions cropped
// from it share that one coordinate space.
type Surface struct {
	geometry Geometry
	base     space.Bitmap[space.Display]
	fonts    font.FontProvider
}

func New(page *raster.RenderedPage, containerWidth int, fonts font.FontProvider) *Surface {
	geometry := ComputeGeometry(page, containerWidth)
	base := image.NewRGBA(image.Rect(0, 0, geometry.Width, geometry.Height))
	if !geometry.Empty() {
		src := page.Bitmap.Image()
		xdraw.CatmullRom.Scale(base, base.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	}
	if fonts == nil {
		fonts = font.Default()
	}
	return &Surface{
		geometry: geometry,
		base:     space.NewBitmap[space.Display](base),
		fonts:    fonts,
	}
}

func (s *Surface) Geometry() Geometry {
	return s.geometry
}

// Bitmap is the overlay-free display bitmap. The compositor samples this, never a drawn frame.
func (s *Surface) Bitmap() space.Bitmap[space.Display] {
	return s.base
}

// Draw redraws the base page and then the overlays into a fresh frame. Committed boxes carry
// 1-based ordinals in insertion order; the transient box is lighter and dashed.
// Calling Draw repeatedly with the same arguments yields identical frames.
func (s *Surface) Draw(committed []space.Box[space.Display], transient *space.Box[space.Display]) *image.RGBA {
	if s.geometry.Empty() {
		return image.NewRGBA(image.Rectangle{})
	}

	drawingContext := gg.NewContext(s.geometry.Width, s.geometry.Height)
	drawingContext.DrawImage(s.base.Image(), 0, 0)

	face := s.fonts.Face(font.WeightBold, labelFontSize)
	defer face.Close()
	drawingContext.SetFontFace(face)

	for i, box := range committed {
		drawBox(drawingContext, box, false)
		drawOrdinal(drawingContext, box, i+1)
	}
	if transient != nil {
		drawBox(drawingContext, *transient, true)
	}

	return toRGBA(drawingContext.Image())
}

func drawBox(drawingContext *gg.Context, box space.Box[space.Display], isTransient bool) {
	alpha := committedAlpha
	if isTransient {
		alpha = transientAlpha
	}
	drawingContext.SetRGBA(accent.R, accent.G, accent.B, alpha)
	drawingContext.DrawRectangle(box.X, box.Y, box.Width, box.Height)
	drawingContext.Fill()

	drawingContext.SetRGB(accent.R, accent.G, accent.B)
	drawingContext.SetLineWidth(outlineWidth)
	if isTransient {
		drawingContext.SetDash(transientDashOn, transientDashOn)
	} else {
		drawingContext.SetDash()
	}
	drawingContext.DrawRectangle(box.X, box.Y, box.Width, box.Height)
	drawingContext.Stroke()
	drawingContext.SetDash()
}

// The tag sits just above the box, or just inside it when the box touches the top edge.
func drawOrdinal(drawingContext *gg.Context, box space.Box[space.Display], ordinal int) {
	top := box.Y - labelHeight
	if top < 0 {
		top = box.Y
	}
	drawingContext.SetRGB(accent.R, accent.G, accent.B)
	drawingContext.DrawRectangle(box.X, top, labelWidth, labelHeight)
	drawingContext.Fill()

	drawingContext.SetRGB(1, 1, 1)
	drawingContext.DrawString(fmt.Sprintf("%d", ordinal), box.X+8 /* =x */, top+labelHeight-6 /* =y */)
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	bounds := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(rgba, rgba.Bounds(), img, bounds.Min, xdraw.Src)
	return rgba
}

func mustHex(hex string) colorful.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		panic(fmt.Sprintf("invalid palette color %s: %v", hex, err))
	}
	return c
}
