// Package raster turns a paginated document or a single raster image into page bitmaps.
//
// PDF pages are rasterized with MuPDF at 72 x scale DPI. Images are decoded once at load
// time and always expose exactly one page at native resolution.
package raster

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"mime"
	"net/http"
	"strings"

	"github.com/gen2brain/go-fitz"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/qiraa-project/qiraa/pkg/space"
)

// RenderScale favors downstream recognition fidelity over display size.
const RenderScale = 2.0

// PDF user space is defined at 72 units per inch.
const baseDPI = 72.0

var (
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrCorruptDocument   = errors.New("corrupt document")
	ErrPageOutOfRange    = errors.New("page index out of range")
	ErrRenderFailure     = errors.New("render failure")
)

type Kind string

const (
	KindPDF   Kind = "pdf"
	KindImage Kind = "image"
)

// PDFDocument is the subset of *fitz.Document used for rasterization.
// This interface is used for replacing MuPDF in tests.
type PDFDocument interface {
	NumPage() int
	ImageDPI(pageNumber int, dpi float64) (*image.RGBA, error)
	Close() error
}

// Document is an opaque handle to a loaded file.
type Document struct {
	kind      Kind
	mimeType  string
	pageCount int
	pdf       PDFDocument
	img       *image.RGBA
}

func (d *Document) Kind() Kind {
	return d.kind
}

func (d *Document) MIMEType() string {
	return d.mimeType
}

// PageCount is at least 1 for PDFs and exactly 1 for images.
func (d *Document) PageCount() int {
	return d.pageCount
}

func (d *Document) Close() error {
	if d.pdf != nil {
		return d.pdf.Close()
	}
	return nil
}

// RenderedPage is a page bitmap in page space plus the index and scale it was produced at.
type RenderedPage struct {
	Bitmap space.Bitmap[space.Page]
	// 1-based.
	Index int
	Scale float64
}

func (p *RenderedPage) Width() int {
	return p.Bitmap.Width()
}

func (p *RenderedPage) Height() int {
	return p.Bitmap.Height()
}

type Rasterizer struct {
	openPDF func(data []byte) (PDFDocument, error)
}

func New() *Rasterizer {
	return NewWithPDFOpener(func(data []byte) (PDFDocument, error) {
		return fitz.NewFromMemory(data)
	})
}

// NewWithPDFOpener builds a Rasterizer that opens PDFs with open instead of MuPDF.
func NewWithPDFOpener(open func(data []byte) (PDFDocument, error)) *Rasterizer {
	return &Rasterizer{openPDF: open}
}

// Load parses raw file bytes according to the declared MIME type. An empty or generic
// type is sniffed from the content. E.g., "application/pdf", "image/png; charset=binary"
func (r *Rasterizer) Load(data []byte, mimeType string) (*Document, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty file", ErrCorruptDocument)
	}
	mediaType := normalizedMediaType(mimeType, data)

	switch {
	case mediaType == "application/pdf":
		return r.loadPDF(data)
	case strings.HasPrefix(mediaType, "image/"):
		return loadImage(data, mediaType)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
}

func (r *Rasterizer) loadPDF(data []byte) (*Document, error) {
	doc, err := r.openPDF(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	pageCount := doc.NumPage()
	if pageCount < 1 {
		doc.Close()
		return nil, fmt.Errorf("%w: document has no pages", ErrCorruptDocument)
	}
	return &Document{
		kind:      KindPDF,
		mimeType:  "application/pdf",
		pageCount: pageCount,
		pdf:       doc,
	}, nil
}

func loadImage(data []byte, mediaType string) (*Document, error) {
	decoded, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, mediaType)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDocument, err)
	}
	return &Document{
		kind:      KindImage,
		mimeType:  mediaType,
		pageCount: 1,
		img:       toRGBA(decoded),
	}, nil
}

// Render produces the bitmap for a 1-based page index. Identical arguments yield
// pixel-identical output; nothing is cached between calls.
func (r *Rasterizer) Render(ctx context.Context, doc *Document, pageIndex int, scale float64) (*RenderedPage, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRenderFailure, err)
	}
	if doc == nil {
		return nil, fmt.Errorf("%w: no document", ErrRenderFailure)
	}
	if pageIndex < 1 || pageIndex > doc.pageCount {
		return nil, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, pageIndex, doc.pageCount)
	}

	// Images are already raster, so the rasterization scale does not apply.
	if doc.kind == KindImage {
		return &RenderedPage{
			Bitmap: space.NewBitmap[space.Page](toRGBA(doc.img)),
			Index:  1,
			Scale:  1,
		}, nil
	}

	if scale <= 0 {
		return nil, fmt.Errorf("%w: invalid scale %v", ErrRenderFailure, scale)
	}
	img, err := doc.pdf.ImageDPI(pageIndex-1, baseDPI*scale)
	if err != nil {
		return nil, fmt.Errorf("%w: page %d: %v", ErrRenderFailure, pageIndex, err)
	}
	if img == nil || img.Bounds().Empty() {
		return nil, fmt.Errorf("%w: page %d rendered empty", ErrRenderFailure, pageIndex)
	}
	return &RenderedPage{
		Bitmap: space.NewBitmap[space.Page](toRGBA(img)),
		Index:  pageIndex,
		Scale:  scale,
	}, nil
}

func normalizedMediaType(declared string, data []byte) string {
	mediaType, _, err := mime.ParseMediaType(declared)
	if err != nil || mediaType == "" || mediaType == "application/octet-stream" {
		mediaType, _, _ = mime.ParseMediaType(http.DetectContentType(data))
	}
	return strings.ToLower(mediaType)
}

// Copies into a fresh zero-origin RGBA so callers never share pixel buffers.
func toRGBA(src image.Image) *image.RGBA {
	bounds := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), src, bounds.Min, draw.Src)
	return dst
}
