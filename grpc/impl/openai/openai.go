package openai

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"

	qiraaOpenai "github.com/qiraa-project/qiraa/pkg/openai"
	"github.com/qiraa-project/qiraa/pkg/recognition"
)

const DefaultModel = "gpt-4o"

const systemPrompt = "You are a meticulous linguist. Answer with a single JSON object and nothing else."

// MaxTokens bounds the answer; a dense page region with a word-by-word gloss stays well below it.
const MaxTokens = 4096

// Gateway sends the composite to a multimodal chat model. The client may be the OpenAI
// adapter or the Gemini bridge.
type Gateway struct {
	client    qiraaOpenai.Client
	model     string
	languages recognition.Languages
	// Gemini rejects the OpenAI JSON response format, so it is only set for OpenAI models.
	jsonResponseFormat bool
}

func NewGateway(client qiraaOpenai.Client, model string, languages recognition.Languages, jsonResponseFormat bool) *Gateway {
	return &Gateway{
		client:             client,
		model:              model,
		languages:          languages,
		jsonResponseFormat: jsonResponseFormat,
	}
}

func (g *Gateway) Analyze(ctx context.Context, image recognition.Image) (*recognition.Result, error) {
	return g.complete(ctx, qiraaOpenai.ImageMessage(image.DataURI(), recognition.Prompt(g.languages)))
}

// AnalyzeText lets the gateway act as the language stage behind a dedicated OCR detector.
func (g *Gateway) AnalyzeText(ctx context.Context, text string) (*recognition.Result, error) {
	return g.complete(ctx, qiraaOpenai.TextMessage(openai.ChatMessageRoleUser, recognition.TextPrompt(g.languages, text)))
}

func (g *Gateway) complete(ctx context.Context, message openai.ChatCompletionMessage) (*recognition.Result, error) {
	request := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			qiraaOpenai.TextMessage(openai.ChatMessageRoleSystem, systemPrompt),
			message,
		},
		Temperature: recognition.Temperature,
		MaxTokens:   MaxTokens,
	}
	if g.jsonResponseFormat {
		request.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	response, err := g.client.CreateChatCompletion(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion failed: %w", recognition.ErrGatewayFailure, err)
	}
	content, err := qiraaOpenai.GetCompletionContent(response)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", recognition.ErrGatewayFailure, err)
	}
	return recognition.ParseResult(content)
}
