package impl

import (
	"context"
	"fmt"
	"log"

	pb "github.com/qiraa-project/qiraa/grpc"
	"github.com/qiraa-project/qiraa/pkg/session"
)

// Analyze stitches the committed boxes in reading order and sends the composite for
// recognition. A failed call keeps the selection so the user can retry.
func (s *server) Analyze(ctx context.Context, request *pb.SessionRequest) (*pb.AnalyzeResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	analysis, err := readerSession.Analyze(ctx)
	if err != nil {
		log.Printf("Failed to analyze selection: %v", err)
		return nil, toStatus(err)
	}

	s.archiveComposite(ctx, analysis)

	return &pb.AnalyzeResponse{
		AnalysisId:     analysis.ID,
		UriComposite:   analysis.Composite.DataURI(),
		OriginalText:   analysis.Result.RawText,
		VocalizedText:  analysis.Result.VocalizedText,
		TranslatedText: analysis.Result.TranslatedText,
		Words:          toWordPairs(analysis.Result.Words),
		State:          toSessionState(request.GetSessionId(), readerSession.State()),
	}, nil
}

// Archiving is best effort; a storage failure never fails the analysis.
func (s *server) archiveComposite(ctx context.Context, analysis *session.Analysis) {
	if s.storage.Client == nil || s.storage.CompositeArchiveBucket == "" {
		return
	}
	if err := s.storage.Client.SaveBytes(ctx, s.storage.CompositeArchiveBucket, compositeObjectName(analysis), analysis.Composite.PNG); err != nil {
		log.Printf("Failed to archive composite: %v", err)
	}
}

// E.g., composite-1700000000-6f1c...png
func compositeObjectName(analysis *session.Analysis) string {
	return fmt.Sprintf("composite-%d-%s.png", analysis.CreatedAt.Unix(), analysis.ID)
}
