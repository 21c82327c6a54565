package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// Client is the chat completion surface shared by the OpenAI adapter and the Gemini bridge
// in grpc/impl/genai, so one gateway implementation can drive either model family.
type Client interface {
	CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// adapter wraps the OpenAI client
type adapter struct {
	client *openai.Client
}

// NewAdapter creates a new OpenAI client adapter
func NewAdapter(client *openai.Client) Client {
	return &adapter{client: client}
}

func (a *adapter) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return a.client.CreateChatCompletion(ctx, request)
}

// GetCompletionContent extracts the trimmed content from the first choice
func GetCompletionContent(response openai.ChatCompletionResponse) (string, error) {
	if len(response.Choices) == 0 {
		return "", errors.New("no choices in response")
	}
	content := strings.TrimSpace(response.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("empty content in response")
	}
	return content, nil
}

// ImageMessage is a user message carrying an image data URI followed by text.
func ImageMessage(dataURI string, text string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    dataURI,
					Detail: openai.ImageURLDetailHigh,
				},
			},
			{
				Type: openai.ChatMessagePartTypeText,
				Text: text,
			},
		},
	}
}

func TextMessage(role string, text string) openai.ChatCompletionMessage {
	return openai.ChatCompletionMessage{Role: role, Content: text}
}
