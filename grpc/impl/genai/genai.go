package genai

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/sashabaranov/go-openai"

	qiraaOpenai "github.com/qiraa-project/qiraa/pkg/openai"
)

// client bridges OpenAI style chat requests onto Gemini, so the chat gateway in
// grpc/impl/openai runs unchanged on either provider.
type client struct {
	genaiClient *genai.Client
}

func New(genaiClient *genai.Client) qiraaOpenai.Client {
	return &client{genaiClient: genaiClient}
}

type GenaiModel string

const (
	GenaiModelFlash    GenaiModel = "gemini-1.5-flash"
	GenaiModelPro      GenaiModel = "gemini-1.5-pro"
	GenaiModelFlash2_0 GenaiModel = "gemini-2.0-flash"
)

func (c *client) CreateChatCompletion(ctx context.Context, request openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	if err := validateModel(request.Model); err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	if len(request.Messages) == 0 {
		return openai.ChatCompletionResponse{}, errors.New("no messages in request")
	}

	genaiModel := c.genaiClient.GenerativeModel(request.Model)
	genaiModel.SetTemperature(request.Temperature)
	if request.MaxTokens > 0 {
		genaiModel.SetMaxOutputTokens(int32(request.MaxTokens))
	}

	history, err := toGenaiHistory(request.Messages[:len(request.Messages)-1])
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	chatSession := genaiModel.StartChat()
	chatSession.History = history

	parts, err := toGenaiParts(request.Messages[len(request.Messages)-1])
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	resp, err := chatSession.SendMessage(ctx, parts...)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}
	text, err := responseText(resp)
	if err != nil {
		return openai.ChatCompletionResponse{}, err
	}

	return openai.ChatCompletionResponse{
		Model: request.Model,
		Choices: []openai.ChatCompletionChoice{
			{
				Message: openai.ChatCompletionMessage{
					Role:    openai.ChatMessageRoleAssistant,
					Content: text,
				},
			},
		},
	}, nil
}

// System messages become user turns prefixed with "System: ".
func toGenaiHistory(messages []openai.ChatCompletionMessage) ([]*genai.Content, error) {
	history := []*genai.Content{}
	for _, message := range messages {
		if message.Role == openai.ChatMessageRoleSystem {
			history = append(history, &genai.Content{
				Parts: []genai.Part{genai.Text("System: " + message.Content)},
				Role:  "user",
			})
			continue
		}
		parts, err := toGenaiParts(message)
		if err != nil {
			return nil, err
		}
		history = append(history, &genai.Content{
			Parts: parts,
			Role:  toGenaiRole(message.Role),
		})
	}
	return history, nil
}

func toGenaiParts(message openai.ChatCompletionMessage) ([]genai.Part, error) {
	var parts []genai.Part
	if message.MultiContent != nil {
		for _, content := range message.MultiContent {
			if content.Type == openai.ChatMessagePartTypeImageURL {
				if content.ImageURL == nil {
					return nil, errors.New("image part without URL")
				}
				decodedImage, mimeType, err := decodeImageURL(content.ImageURL.URL)
				if err != nil {
					return nil, err
				}
				parts = append(parts, genai.Blob{
					MIMEType: mimeType,
					Data:     decodedImage,
				})
			} else {
				parts = append(parts, genai.Text(content.Text))
			}
		}
	} else if message.Content != "" {
		parts = append(parts, genai.Text(message.Content))
	}
	if len(parts) == 0 {
		return nil, errors.New("empty message")
	}
	return parts, nil
}

func toGenaiRole(role string) string {
	switch role {
	case openai.ChatMessageRoleAssistant:
		return "model"
	default:
		return "user"
	}
}

// Concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", errors.New("no response from model")
	}
	var builder strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			builder.WriteString(string(text))
		}
	}
	if builder.Len() == 0 {
		return "", errors.New("no text in model response")
	}
	return builder.String(), nil
}

// E.g., "data:image/png;base64,iVBORw0..." -> (bytes, "image/png")
func decodeImageURL(dataURI string) ([]byte, string, error) {
	if !strings.HasPrefix(dataURI, "data:") {
		return nil, "", errors.New("invalid data URI format")
	}

	parts := strings.SplitN(dataURI, ",", 2)
	if len(parts) != 2 || !strings.HasSuffix(parts[0], ";base64") {
		return nil, "", errors.New("invalid data URI format")
	}

	mimeType := strings.TrimSuffix(strings.TrimPrefix(parts[0], "data:"), ";base64")

	decodedData, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, "", err
	}

	return decodedData, mimeType, nil
}

func validateModel(model string) error {
	switch GenaiModel(model) {
	case GenaiModelFlash, GenaiModelPro, GenaiModelFlash2_0:
		return nil
	default:
		return errors.New("invalid model")
	}
}
