package font

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/golang/freetype/truetype"
	xfont "golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
)

type FontProvider interface {
	// Returns a face of the given weight at size pixels (72 DPI).
	Face(weight Weight, size float64) xfont.Face
}

type Weight string

const (
	WeightRegular Weight = "Regular"
	WeightBold    Weight = "Bold"
)

type fontProvider struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// New loads Label-Regular.ttf and Label-Bold.ttf from basePath.
// An empty basePath uses the Go fonts bundled with golang.org/x/image.
func New(basePath string) (FontProvider, error) {
	if basePath == "" {
		return Default(), nil
	}

	regular, err := parseFontFile(filepath.Join(basePath, "Label-"+string(WeightRegular)+".ttf"))
	if err != nil {
		return nil, fmt.Errorf("failed to load regular label font: %w", err)
	}
	bold, err := parseFontFile(filepath.Join(basePath, "Label-"+string(WeightBold)+".ttf"))
	if err != nil {
		return nil, fmt.Errorf("failed to load bold label font: %w", err)
	}
	return &fontProvider{regular: regular, bold: bold}, nil
}

// Default never fails: the embedded Go fonts are known-good TrueType data.
func Default() FontProvider {
	regular, err := truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded Go regular font: %v", err))
	}
	bold, err := truetype.Parse(gobold.TTF)
	if err != nil {
		panic(fmt.Sprintf("failed to parse embedded Go bold font: %v", err))
	}
	return &fontProvider{regular: regular, bold: bold}
}

func (fp *fontProvider) Face(weight Weight, size float64) xfont.Face {
	f := fp.regular
	if weight == WeightBold {
		f = fp.bold
	}
	return truetype.NewFace(f, &truetype.Options{
		Size: size,
		DPI:  72,
	})
}

func parseFontFile(path string) (*truetype.Font, error) {
	fontBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return truetype.Parse(fontBytes)
}
