package impl

import (
	"context"
	"errors"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/qiraa-project/qiraa/pkg/cards"
	"github.com/qiraa-project/qiraa/pkg/compose"
	"github.com/qiraa-project/qiraa/pkg/raster"
	"github.com/qiraa-project/qiraa/pkg/recognition"
	"github.com/qiraa-project/qiraa/pkg/session"
)

var errorCodes = []struct {
	err  error
	code codes.Code
}{
	{raster.ErrUnsupportedFormat, codes.InvalidArgument},
	{raster.ErrCorruptDocument, codes.InvalidArgument},
	{raster.ErrPageOutOfRange, codes.OutOfRange},
	{raster.ErrRenderFailure, codes.Internal},
	{compose.ErrEmptySelection, codes.FailedPrecondition},
	{compose.ErrNoSurface, codes.FailedPrecondition},
	{session.ErrNoDocument, codes.FailedPrecondition},
	{session.ErrInvalidMode, codes.InvalidArgument},
	{session.ErrBusy, codes.Unavailable},
	{session.ErrStaleAnalysis, codes.Aborted},
	{session.ErrClosed, codes.FailedPrecondition},
	{cards.ErrEmptyCard, codes.FailedPrecondition},
	{context.Canceled, codes.Canceled},
	{context.DeadlineExceeded, codes.DeadlineExceeded},
	{recognition.ErrGatewayFailure, codes.Unavailable},
}

// toStatus converts a domain error into a gRPC status. Errors that already carry a status
// are passed through.
func toStatus(err error) error {
	if _, ok := status.FromError(err); ok {
		return err
	}
	for _, entry := range errorCodes {
		if errors.Is(err, entry.err) {
			return status.Error(entry.code, err.Error())
		}
	}
	return status.Error(codes.Internal, codes.Internal.String())
}
