package recognition

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestParseResult(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   Result
	}{
		{
			name:   "plain",
			answer: `{"originalText":"كتاب","vocalizedText":"كِتَابٌ","translatedText":"un livre","words":[{"source":"كِتَابٌ","target":"livre"}]}`,
			want: Result{
				RawText:        "كتاب",
				VocalizedText:  "كِتَابٌ",
				TranslatedText: "un livre",
				Words:          []WordPair{{Source: "كِتَابٌ", Target: "livre"}},
			},
		},
		{
			name:   "fenced with legacy word keys",
			answer: "```json\n{\"originalText\":\"باب\",\"translatedText\":\"une porte\",\"words\":[{\"arabic\":\"بَابٌ\",\"french\":\"porte\"}]}\n```",
			want: Result{
				RawText:        "باب",
				VocalizedText:  "باب",
				TranslatedText: "une porte",
				Words:          []WordPair{{Source: "بَابٌ", Target: "porte"}},
			},
		},
		{
			name:   "missing words",
			answer: `Here you go: {"originalText":"قلم","vocalizedText":"","translatedText":"un stylo"}`,
			want: Result{
				RawText:        "قلم",
				VocalizedText:  "قلم",
				TranslatedText: "un stylo",
				Words:          []WordPair{},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseResult(tt.answer)
			if err != nil {
				t.Fatalf("ParseResult() error = %v", err)
			}
			if got.RawText != tt.want.RawText || got.VocalizedText != tt.want.VocalizedText || got.TranslatedText != tt.want.TranslatedText {
				t.Errorf("ParseResult() = %+v, want %+v", got, tt.want)
			}
			if got.Words == nil || len(got.Words) != len(tt.want.Words) {
				t.Fatalf("Words = %v, want %v", got.Words, tt.want.Words)
			}
			for i := range tt.want.Words {
				if got.Words[i] != tt.want.Words[i] {
					t.Errorf("Words[%d] = %+v, want %+v", i, got.Words[i], tt.want.Words[i])
				}
			}
		})
	}
}

func TestParseResultFailures(t *testing.T) {
	for _, answer := range []string{"", "no json here", `{"originalText": 3}`, `{"originalText":"","translatedText":""}`} {
		if _, err := ParseResult(answer); !errors.Is(err, ErrGatewayFailure) {
			t.Errorf("ParseResult(%q) error = %v, want ErrGatewayFailure", answer, err)
		}
	}
}

func TestPromptNamesLanguages(t *testing.T) {
	prompt := Prompt(Languages{Source: "Persian", Target: "English"})
	if !strings.Contains(prompt, "Persian") || !strings.Contains(prompt, "English") || !strings.Contains(prompt, `"vocalizedText"`) {
		t.Errorf("Prompt() = %q", prompt)
	}
	if strings.Contains(prompt, "%!") {
		t.Errorf("Prompt() has formatting errors: %q", prompt)
	}
	textPrompt := TextPrompt(DefaultLanguages, "السلام عليكم")
	if !strings.Contains(textPrompt, "السلام عليكم") || strings.Contains(textPrompt, "%!") {
		t.Errorf("TextPrompt() = %q", textPrompt)
	}
}

func TestImageDataURI(t *testing.T) {
	image := Image{Data: []byte("abc"), MIMEType: "image/png"}
	if got := image.DataURI(); got != "data:image/png;base64,YWJj" {
		t.Errorf("DataURI() = %q", got)
	}
}

func TestWithRetry(t *testing.T) {
	calls := 0
	flaky := GatewayFunc(func(ctx context.Context, image Image) (*Result, error) {
		calls++
		if calls < 3 {
			return nil, ErrGatewayFailure
		}
		return &Result{RawText: "ok"}, nil
	})

	result, err := WithRetry(flaky, 0, 4).Analyze(context.Background(), Image{})
	if err != nil || result.RawText != "ok" {
		t.Fatalf("Analyze() = %v, %v", result, err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryGivesUp(t *testing.T) {
	calls := 0
	failing := GatewayFunc(func(ctx context.Context, image Image) (*Result, error) {
		calls++
		return nil, ErrGatewayFailure
	})

	_, err := WithRetry(failing, 0, 2).Analyze(context.Background(), Image{})
	if !errors.Is(err, ErrGatewayFailure) {
		t.Errorf("Analyze() error = %v, want ErrGatewayFailure", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestWithRetryStopsOnCancel(t *testing.T) {
	calls := 0
	canceled := GatewayFunc(func(ctx context.Context, image Image) (*Result, error) {
		calls++
		return nil, context.Canceled
	})

	_, err := WithRetry(canceled, 0, 4).Analyze(context.Background(), Image{})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Analyze() error = %v, want context.Canceled", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

type fakeDetector struct {
	text string
	err  error
}

func (f fakeDetector) DetectText(ctx context.Context, image Image) (string, error) {
	return f.text, f.err
}

type fakeAnalyzer struct {
	got    string
	calls  int
	result *Result
	err    error
}

func (f *fakeAnalyzer) AnalyzeText(ctx context.Context, text string) (*Result, error) {
	f.got = text
	f.calls++
	return f.result, f.err
}

func TestTwoStage(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &Result{TranslatedText: "bonjour"}}
	result, err := TwoStage(fakeDetector{text: "  مرحبا \n"}, analyzer).Analyze(context.Background(), Image{})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if analyzer.got != "مرحبا" {
		t.Errorf("analyzer received %q", analyzer.got)
	}
	if result.RawText != "مرحبا" || result.VocalizedText != "مرحبا" || result.Words == nil {
		t.Errorf("Analyze() = %+v, want OCR text as fallback", result)
	}
}

func TestTwoStageFailures(t *testing.T) {
	analyzer := &fakeAnalyzer{result: &Result{}}
	for _, detector := range []fakeDetector{{err: errors.New("quota")}, {text: "   "}} {
		_, err := TwoStage(detector, analyzer).Analyze(context.Background(), Image{})
		if !errors.Is(err, ErrGatewayFailure) {
			t.Errorf("Analyze() error = %v, want ErrGatewayFailure", err)
		}
	}
}

func TestTwoStageKeepsCancellation(t *testing.T) {
	tests := []struct {
		name     string
		detector fakeDetector
		analyzer *fakeAnalyzer
	}{
		{"detect", fakeDetector{err: context.Canceled}, &fakeAnalyzer{}},
		{"analyze", fakeDetector{text: "مرحبا"}, &fakeAnalyzer{err: context.Canceled}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			_, err := TwoStage(test.detector, test.analyzer).Analyze(context.Background(), Image{})
			if !errors.Is(err, ErrGatewayFailure) || !errors.Is(err, context.Canceled) {
				t.Errorf("Analyze() error = %v, want ErrGatewayFailure and context.Canceled", err)
			}
		})
	}
}

func TestWithRetryStopsOnCanceledAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{err: context.DeadlineExceeded}
	_, err := WithRetry(TwoStage(fakeDetector{text: "مرحبا"}, analyzer), 0, 4).Analyze(context.Background(), Image{})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Analyze() error = %v, want context.DeadlineExceeded", err)
	}
	if analyzer.calls != 1 {
		t.Errorf("analyzer calls = %d, want 1", analyzer.calls)
	}
}
