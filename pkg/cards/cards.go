// Package cards turns an analysis into a flashcard and persists it.
package cards

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/qiraa-project/qiraa/pkg/recognition"
)

var ErrEmptyCard = errors.New("card has no text")

type Card struct {
	ID             string                 `json:"id"`
	OriginalText   string                 `json:"originalText"`
	VocalizedText  string                 `json:"vocalizedText,omitempty"`
	TranslatedText string                 `json:"translatedText"`
	Words          []recognition.WordPair `json:"words,omitempty"`
	// Free-form note, e.g. the book and page the text came from.
	Context string `json:"context,omitempty"`
	// Unix milliseconds.
	CreatedAt int64 `json:"createdAt"`
}

func New(result *recognition.Result, note string, now time.Time) (*Card, error) {
	if result == nil || (result.RawText == "" && result.TranslatedText == "") {
		return nil, ErrEmptyCard
	}
	return &Card{
		ID:             uuid.NewString(),
		OriginalText:   result.RawText,
		VocalizedText:  result.VocalizedText,
		TranslatedText: result.TranslatedText,
		Words:          append([]recognition.WordPair(nil), result.Words...),
		Context:        note,
		CreatedAt:      now.UnixMilli(),
	}, nil
}

// Writer stores an object in a bucket. grpc/impl/storage implements it on Cloud Storage.
type Writer interface {
	SaveBytes(ctx context.Context, bucketName string, objectName string, data []byte) error
}

type Store struct {
	writer Writer
	bucket string
}

func NewStore(writer Writer, bucket string) *Store {
	return &Store{writer: writer, bucket: bucket}
}

// Save writes cards/<id>.json and, when image is not empty, cards/<id>.png.
func (s *Store) Save(ctx context.Context, card *Card, image []byte) error {
	data, err := json.Marshal(card)
	if err != nil {
		return fmt.Errorf("failed to marshal card: %w", err)
	}
	if len(image) > 0 {
		if err := s.writer.SaveBytes(ctx, s.bucket, ImageObjectName(card.ID), image); err != nil {
			return fmt.Errorf("failed to save card image: %w", err)
		}
	}
	if err := s.writer.SaveBytes(ctx, s.bucket, ObjectName(card.ID), data); err != nil {
		return fmt.Errorf("failed to save card: %w", err)
	}
	return nil
}

func ObjectName(id string) string {
	return "cards/" + id + ".json"
}

func ImageObjectName(id string) string {
	return "cards/" + id + ".png"
}
