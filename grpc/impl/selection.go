package impl

import (
	"context"
	"log"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	pb "github.com/qiraa-project/qiraa/grpc"
	"github.com/qiraa-project/qiraa/pkg/selection"
	"github.com/qiraa-project/qiraa/pkg/space"
	"github.com/qiraa-project/qiraa/pkg/utils"
)

var eventKinds = []selection.EventKind{
	selection.PointerDown,
	selection.PointerMove,
	selection.PointerUp,
	selection.PointerLeave,
}

func (s *server) SetMode(ctx context.Context, request *pb.SetModeRequest) (*pb.StateResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	if err := readerSession.SetMode(selection.Mode(request.GetMode())); err != nil {
		log.Printf("Failed to set mode: %v", err)
		return nil, toStatus(err)
	}
	return &pb.StateResponse{State: toSessionState(request.GetSessionId(), readerSession.State())}, nil
}

func (s *server) Pointer(ctx context.Context, request *pb.PointerRequest) (*pb.PointerResponse, error) {
	kind := selection.EventKind(request.GetKind())
	if !utils.Contains(eventKinds, kind) {
		return nil, status.Errorf(codes.InvalidArgument, "unknown pointer event %q", request.GetKind())
	}
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	effect, err := readerSession.Pointer(
		kind,
		space.Pt[space.Screen](request.ClientX, request.ClientY),
		space.Pt[space.Screen](request.OriginX, request.OriginY),
	)
	if err != nil {
		log.Printf("Failed to handle pointer event: %v", err)
		return nil, toStatus(err)
	}
	return &pb.PointerResponse{
		Effect: string(effect),
		State:  toSessionState(request.GetSessionId(), readerSession.State()),
	}, nil
}

func (s *server) Undo(ctx context.Context, request *pb.SessionRequest) (*pb.StateResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	readerSession.Undo()
	return &pb.StateResponse{State: toSessionState(request.GetSessionId(), readerSession.State())}, nil
}

func (s *server) Clear(ctx context.Context, request *pb.SessionRequest) (*pb.StateResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	readerSession.Clear()
	return &pb.StateResponse{State: toSessionState(request.GetSessionId(), readerSession.State())}, nil
}

// RenderFrame returns the current page with its committed and in-progress boxes drawn.
func (s *server) RenderFrame(ctx context.Context, request *pb.SessionRequest) (*pb.RenderFrameResponse, error) {
	readerSession, err := s.session(request.GetSessionId())
	if err != nil {
		return nil, err
	}

	frame, err := readerSession.Frame()
	if err != nil {
		log.Printf("Failed to draw frame: %v", err)
		return nil, toStatus(err)
	}

	response := &pb.RenderFrameResponse{State: toSessionState(request.GetSessionId(), readerSession.State())}
	// A zero-width container has nothing to show.
	if frame.Bounds().Empty() {
		return response, nil
	}
	response.UriImage, err = toDataURI(frame)
	if err != nil {
		log.Printf("Failed to encode frame: %v", err)
		return nil, status.Error(codes.Internal, codes.Internal.String())
	}
	return response, nil
}
