package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/qiraa-project/qiraa/pkg/recognition"
)

// Client is the subset of gosseract.Client the detector uses.
// Ref: https://pkg.go.dev/github.com/otiai10/gosseract/v2
type Client interface {
	SetImageFromBytes(data []byte) error
	SetLanguage(langs ...string) error
	SetPageSegMode(mode gosseract.PageSegMode) error
	Text() (string, error)
	Close() error
}

// Detector reads text locally with Tesseract. A Tesseract client is not safe for concurrent
// use, so every call gets its own.
type Detector struct {
	newClient func() Client
	// Tesseract language codes, e.g. "ara".
	languages []string
}

func NewDetector(languages []string) *Detector {
	return NewDetectorWithClient(func() Client { return gosseract.NewClient() }, languages)
}

func NewDetectorWithClient(newClient func() Client, languages []string) *Detector {
	return &Detector{newClient: newClient, languages: languages}
}

func (d *Detector) DetectText(ctx context.Context, image recognition.Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	client := d.newClient()
	defer client.Close()

	if len(d.languages) > 0 {
		if err := client.SetLanguage(d.languages...); err != nil {
			return "", fmt.Errorf("failed to set languages: %w", err)
		}
	}
	// Composites stack several regions, so let Tesseract find the blocks itself.
	if err := client.SetPageSegMode(gosseract.PSM_AUTO); err != nil {
		return "", fmt.Errorf("failed to set page segmentation mode: %w", err)
	}
	if err := client.SetImageFromBytes(image.Data); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("failed to recognize text: %w", err)
	}
	return text, nil
}
