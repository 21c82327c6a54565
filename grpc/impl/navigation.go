package impl

import (
	"context"
	"log"

	pb "github.com/qiraa-project/qiraa/grpc"
)

// ChangePage moves by a relative number of pages. Moves past the first or last page are
// ignored and simply return the current state.
func (s *server) ChangePage(ctx context.Context, request *pb.ChangePageRequest) (*pb.StateResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	if err := readerSession.ChangePage(ctx, int(request.GetDelta())); err != nil {
		log.Printf("Failed to change page: %v", err)
		return nil, toStatus(err)
	}
	return &pb.StateResponse{State: toSessionState(request.GetSessionId(), readerSession.State())}, nil
}

func (s *server) GoToPage(ctx context.Context, request *pb.GoToPageRequest) (*pb.StateResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	if err := readerSession.GoToPage(ctx, int(request.GetPage())); err != nil {
		log.Printf("Failed to go to page %d: %v", request.GetPage(), err)
		return nil, toStatus(err)
	}
	return &pb.StateResponse{State: toSessionState(request.GetSessionId(), readerSession.State())}, nil
}

func (s *server) Resize(ctx context.Context, request *pb.ResizeRequest) (*pb.StateResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	readerSession.Resize(int(request.GetContainerWidth()))
	return &pb.StateResponse{State: toSessionState(request.GetSessionId(), readerSession.State())}, nil
}
