package recognition

import (
	"context"
	"fmt"
	"strings"
)

// TextDetector extracts plain text from an image (e.g. Cloud Vision or Document AI).
type TextDetector interface {
	DetectText(ctx context.Context, image Image) (string, error)
}

// TextAnalyzer produces a Result from OCR text with a text-only language model.
type TextAnalyzer interface {
	AnalyzeText(ctx context.Context, text string) (*Result, error)
}

type twoStage struct {
	detector TextDetector
	analyzer TextAnalyzer
}

// TwoStage runs a dedicated OCR detector first and hands its text to analyzer.
func TwoStage(detector TextDetector, analyzer TextAnalyzer) Gateway {
	return &twoStage{detector: detector, analyzer: analyzer}
}

func (t *twoStage) Analyze(ctx context.Context, image Image) (*Result, error) {
	text, err := t.detector.DetectText(ctx, image)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to detect text: %w", ErrGatewayFailure, err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: no text detected", ErrGatewayFailure)
	}

	result, err := t.analyzer.AnalyzeText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to analyze text: %w", ErrGatewayFailure, err)
	}
	if result.RawText == "" {
		result.RawText = text
	}
	result.Normalize()
	return result, nil
}
