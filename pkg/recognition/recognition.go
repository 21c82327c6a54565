package recognition

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
)

var ErrGatewayFailure = errors.New("recognition gateway failure")

// Image is an encoded bitmap handed to a Gateway.
type Image struct {
	Data     []byte
	MIMEType string
}

// DataURI returns the image as "data:<mime>;base64,...".
func (i Image) DataURI() string {
	return "data:" + i.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// WordPair glosses a single source word with its meaning in context.
type WordPair struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// UnmarshalJSON also accepts the "arabic"/"french" keys older clients and prompts produce.
func (w *WordPair) UnmarshalJSON(data []byte) error {
	var raw struct {
		Source string `json:"source"`
		Target string `json:"target"`
		Arabic string `json:"arabic"`
		French string `json:"french"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	w.Source = raw.Source
	if w.Source == "" {
		w.Source = raw.Arabic
	}
	w.Target = raw.Target
	if w.Target == "" {
		w.Target = raw.French
	}
	return nil
}

// Result is the structured linguistic analysis of a composite.
type Result struct {
	RawText        string     `json:"originalText"`
	VocalizedText  string     `json:"vocalizedText"`
	TranslatedText string     `json:"translatedText"`
	Words          []WordPair `json:"words"`
}

// Normalize fills the fields a model is allowed to omit.
func (r *Result) Normalize() {
	if r.VocalizedText == "" {
		r.VocalizedText = r.RawText
	}
	if r.Words == nil {
		r.Words = []WordPair{}
	}
}

// Gateway turns a composite image into a Result. Implementations wrap their errors with
// ErrGatewayFailure.
type Gateway interface {
	Analyze(ctx context.Context, image Image) (*Result, error)
}

// GatewayFunc adapts a plain function to Gateway.
type GatewayFunc func(ctx context.Context, image Image) (*Result, error)

func (f GatewayFunc) Analyze(ctx context.Context, image Image) (*Result, error) {
	return f(ctx, image)
}

// Languages names the language read from the page and the language translated into.
type Languages struct {
	Source string
	Target string
}

var DefaultLanguages = Languages{Source: "Arabic", Target: "French"}

// Temperature used for every model call; slightly above zero for more natural translations.
const Temperature = 0.3
