package impl

import (
	"context"
	"log"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/qiraa-project/qiraa/grpc"
	"github.com/qiraa-project/qiraa/pkg/cards"
)

// SaveCard turns the session's latest analysis into a flashcard. The card is persisted when
// a cards bucket is configured and returned either way.
func (s *server) SaveCard(ctx context.Context, request *pb.SaveCardRequest) (*pb.SaveCardResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	analysis, ok := readerSession.LastAnalysis()
	if !ok {
		return nil, status.Error(codes.FailedPrecondition, "no analysis to save")
	}
	if request.GetAnalysisId() != "" && request.GetAnalysisId() != analysis.ID {
		return nil, status.Errorf(codes.NotFound, "analysis %s is no longer current", request.GetAnalysisId())
	}

	card, err := cards.New(analysis.Result, request.Context, time.Now())
	if err != nil {
		log.Printf("Failed to create card: %v", err)
		return nil, toStatus(err)
	}

	if store := s.cardStore(); store != nil {
		if err := store.Save(ctx, card, analysis.Composite.PNG); err != nil {
			log.Printf("Failed to save card: %v", err)
			return nil, status.Error(codes.Internal, codes.Internal.String())
		}
	}

	return &pb.SaveCardResponse{
		Card: &pb.Card{
			Id:             card.ID,
			OriginalText:   card.OriginalText,
			VocalizedText:  card.VocalizedText,
			TranslatedText: card.TranslatedText,
			Words:          toWordPairs(card.Words),
			Context:        card.Context,
			CreatedAt:      card.CreatedAt,
		},
	}, nil
}
