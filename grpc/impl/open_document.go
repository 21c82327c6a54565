package impl

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/qiraa-project/qiraa/grpc"
	"github.com/qiraa-project/qiraa/pkg/session"
)

// OpenDocument loads a PDF or image into an existing session, or into a new one when no
// session id is given. A failed load leaves an existing session untouched.
func (s *server) OpenDocument(ctx context.Context, request *pb.OpenDocumentRequest) (*pb.StateResponse, error) {
	if len(request.GetDocument()) == 0 {
		return nil, status.Error(codes.InvalidArgument, "document is required")
	}

	id := request.GetSessionId()
	var readerSession *session.Session
	if id == "" {
		id, readerSession = s.newSession(int(request.GetContainerWidth()))
	} else {
		var err error
		readerSession, err = s.session(id)
		if err != nil {
			return nil, err
		}
	}

	// The width is applied only once the new document has rendered.
	if err := readerSession.Open(ctx, request.GetDocument(), request.GetMimeType(), int(request.GetContainerWidth())); err != nil {
		log.Printf("Failed to open document: %v", err)
		return nil, toStatus(err)
	}

	if request.GetSessionId() == "" {
		s.addSession(id, readerSession)
	}
	return &pb.StateResponse{State: toSessionState(id, readerSession.State())}, nil
}

func (s *server) CloseSession(ctx context.Context, request *pb.SessionRequest) (*pb.CloseSessionResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	s.removeSession(request.GetSessionId())

	if err := readerSession.Close(); err != nil {
		log.Printf("Failed to close document: %v", err)
	}
	return &pb.CloseSessionResponse{}, nil
}
