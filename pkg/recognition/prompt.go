package recognition

import (
	"encoding/json"
	"fmt"
	"strings"
)

const responseShape = `{"originalText": string, "vocalizedText": string, "translatedText": string, "words": [{"source": string, "target": string}]}`

// Prompt asks a multimodal model to read the attached image and answer with a Result as JSON.
func Prompt(languages Languages) string {
	return fmt.Sprintf(`You are an expert %[1]s linguist and translator.

1. OCR: Analyze the provided image and extract the %[1]s text. Fix any OCR imperfections based on context.
2. Vocalization: Add full diacritics to the %[1]s text to make it grammatically correct and readable.
3. Global translation: Translate the full sentence or phrase into natural, fluent %[2]s.
4. Word-by-word: Break the sentence down into individual words or terms and give the %[2]s meaning of each word within this context.

Return the result strictly as a single JSON object of the form:
%[3]s`, languages.Source, languages.Target, responseShape)
}

// TextPrompt is Prompt for a model that only sees text already extracted by OCR.
func TextPrompt(languages Languages, text string) string {
	return fmt.Sprintf(`You are an expert %[1]s linguist and translator.

The following %[1]s text was extracted from a scanned page by OCR:
"""
%[3]s
"""

1. Cleanup: Fix any OCR imperfections based on context and return it as originalText.
2. Vocalization: Add full diacritics to the text to make it grammatically correct and readable.
3. Global translation: Translate the full text into natural, fluent %[2]s.
4. Word-by-word: Break the text down into individual words or terms and give the %[2]s meaning of each word within this context.

Return the result strictly as a single JSON object of the form:
%[4]s`, languages.Source, languages.Target, text, responseShape)
}

// ParseResult decodes a model answer into a normalized Result. Markdown code fences and text
// around the JSON object are ignored.
func ParseResult(answer string) (*Result, error) {
	start := strings.Index(answer, "{")
	end := strings.LastIndex(answer, "}")
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrGatewayFailure)
	}

	var result Result
	if err := json.Unmarshal([]byte(answer[start:end+1]), &result); err != nil {
		return nil, fmt.Errorf("%w: failed to unmarshal response: %v", ErrGatewayFailure, err)
	}
	if strings.TrimSpace(result.RawText) == "" && strings.TrimSpace(result.TranslatedText) == "" {
		return nil, fmt.Errorf("%w: empty analysis", ErrGatewayFailure)
	}
	result.Normalize()
	return &result, nil
}
