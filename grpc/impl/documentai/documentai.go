package documentai

import (
	"context"
	"fmt"

	"cloud.google.com/go/documentai/apiv1/documentaipb"
	"github.com/googleapis/gax-go/v2"

	"github.com/qiraa-project/qiraa/pkg/recognition"
)

// Client is an interface for the DocumentProcessorClient.
// Ref: https://pkg.go.dev/cloud.google.com/go/documentai
// This interface is used for mocking the documentai.DocumentProcessorClient in tests.
type Client interface {
	ProcessDocument(ctx context.Context, req *documentaipb.ProcessRequest, opts ...gax.CallOption) (*documentaipb.ProcessResponse, error)
}

type Spec struct {
	// E.g., qiraa-prod
	ProjectID string
	// E.g., us
	Location string
	// E.g., 98dae69a95e1906
	ProcessorID string
}

func (s Spec) ProcessorName() string {
	return fmt.Sprintf("projects/%s/locations/%s/processors/%s", s.ProjectID, s.Location, s.ProcessorID)
}

// Detector reads text with a Document AI OCR processor.
type Detector struct {
	client Client
	spec   Spec
	// E.g., "ar"
	languageHints []string
}

func NewDetector(client Client, spec Spec, languageHints []string) *Detector {
	return &Detector{client: client, spec: spec, languageHints: languageHints}
}

func (d *Detector) DetectText(ctx context.Context, image recognition.Image) (string, error) {
	request := &documentaipb.ProcessRequest{
		Name: d.spec.ProcessorName(),
		Source: &documentaipb.ProcessRequest_RawDocument{
			RawDocument: &documentaipb.RawDocument{
				Content:  image.Data,
				MimeType: image.MIMEType,
			},
		},
		ProcessOptions: &documentaipb.ProcessOptions{
			OcrConfig: &documentaipb.OcrConfig{
				Hints: &documentaipb.OcrConfig_Hints{
					LanguageHints: d.languageHints,
				},
			},
		},
	}
	response, err := d.client.ProcessDocument(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to process document: %w", err)
	}
	return response.GetDocument().GetText(), nil
}
