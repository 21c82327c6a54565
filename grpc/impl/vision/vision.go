package vision

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/vision/v2/apiv1/visionpb"
	gax "github.com/googleapis/gax-go/v2"

	"github.com/qiraa-project/qiraa/pkg/recognition"
)

// Client is an interface for the vision.ImageAnnotatorClient
// Ref: https://pkg.go.dev/cloud.google.com/go/vision/v2/apiv1
// This interface is used for mocking the vision.ImageAnnotatorClient in unit tests.
type Client interface {
	BatchAnnotateImages(ctx context.Context, req *visionpb.BatchAnnotateImagesRequest, opts ...gax.CallOption) (*visionpb.BatchAnnotateImagesResponse, error)
}

// Detector reads dense document text with Cloud Vision.
type Detector struct {
	client Client
	// BCP-47 codes, e.g. "ar".
	languageHints []string
}

func NewDetector(client Client, languageHints []string) *Detector {
	return &Detector{client: client, languageHints: languageHints}
}

func (d *Detector) DetectText(ctx context.Context, image recognition.Image) (string, error) {
	request := &visionpb.BatchAnnotateImagesRequest{
		Requests: []*visionpb.AnnotateImageRequest{
			{
				Image:    &visionpb.Image{Content: image.Data},
				Features: []*visionpb.Feature{{Type: visionpb.Feature_DOCUMENT_TEXT_DETECTION}},
				ImageContext: &visionpb.ImageContext{
					LanguageHints: d.languageHints,
				},
			},
		},
	}
	response, err := d.client.BatchAnnotateImages(ctx, request)
	if err != nil {
		return "", fmt.Errorf("failed to annotate image: %w", err)
	}
	if len(response.GetResponses()) == 0 {
		return "", errors.New("no annotation in response")
	}
	annotation := response.GetResponses()[0]
	if annotation.GetError() != nil {
		return "", fmt.Errorf("failed to annotate image: %s", annotation.GetError().GetMessage())
	}
	return annotation.GetFullTextAnnotation().GetText(), nil
}
