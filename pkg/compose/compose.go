package compose

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"slices"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/qiraa-project/qiraa/pkg/space"
	"github.com/qiraa-project/qiraa/pkg/utils"
)

// Vertical gap between stacked regions.
const Padding = 10

// Background fills padding rows and the unused width beside narrower regions.
var Background = colorful.Color{R: 1, G: 1, B: 1}

var (
	ErrEmptySelection = errors.New("empty selection")
	ErrNoSurface      = errors.New("no display surface")
)

// Composite is the stitched image handed to the recognition gateway.
type Composite struct {
	Image *image.RGBA
	PNG   []byte
	// Regions in the order they were stacked, top to bottom.
	Regions []space.Box[space.Display]
}

func (c *Composite) MIMEType() string {
	return "image/png"
}

// DataURI returns the PNG as "data:image/png;base64,...".
func (c *Composite) DataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(c.PNG)
}

// ReadingOrder returns a copy of boxes sorted by ascending top edge. Boxes with equal tops
// keep their insertion order.
func ReadingOrder(boxes []space.Box[space.Display]) []space.Box[space.Display] {
	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a space.Box[space.Display], b space.Box[space.Display]) int {
		switch {
		case a.Y < b.Y:
			return -1
		case a.Y > b.Y:
			return 1
		}
		return 0
	})
	return sorted
}

// Layout returns the composite size for boxes: the widest box by the summed heights plus
// Padding between consecutive boxes.
// E.g., widths [100, 150, 80], heights [40, 60, 30] -> 150 x 150
func Layout(boxes []space.Box[space.Display]) (int, int) {
	if len(boxes) == 0 {
		return 0, 0
	}
	rects := utils.Map(boxes, func(box space.Box[space.Display]) image.Rectangle {
		return box.Pixels()
	})
	width := utils.Reduce(rects, func(width int, rect image.Rectangle) int {
		return max(width, rect.Dx())
	}, 0)
	height := utils.Reduce(rects, func(height int, rect image.Rectangle) int {
		return height + rect.Dy()
	}, 0)
	return width, height + (len(boxes)-1)*Padding
}

// Compose stacks the regions of src in reading order, left-aligned, on an opaque background.
// src must be the display bitmap the boxes were drawn against.
func Compose(src space.Bitmap[space.Display], boxes []space.Box[space.Display]) (*Composite, error) {
	if len(boxes) == 0 {
		return nil, ErrEmptySelection
	}
	if src.Empty() {
		return nil, ErrNoSurface
	}

	sorted := ReadingOrder(boxes)
	width, height := Layout(sorted)

	r, g, b := Background.RGB255()
	composite := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(composite, composite.Bounds(), image.NewUniform(color.RGBA{R: r, G: g, B: b, A: 255}), image.Point{}, draw.Src)

	currentY := 0
	for _, box := range sorted {
		source := box.Pixels()
		// Pixels outside the display bitmap are clipped and keep the background; translucent
		// pixels are flattened onto it so the composite stays opaque.
		destination := image.Rect(0, currentY, source.Dx(), currentY+source.Dy())
		draw.Draw(composite, destination, src.Image(), source.Min, draw.Over)
		currentY += source.Dy() + Padding
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, composite); err != nil {
		return nil, fmt.Errorf("failed to encode composite: %w", err)
	}

	return &Composite{
		Image:   composite,
		PNG:     buf.Bytes(),
		Regions: sorted,
	}, nil
}
