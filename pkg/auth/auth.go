package auth

import (
	"errors"
	"fmt"
	"strings"

	"google.golang.org/grpc/metadata"
)

var (
	ErrMissingToken    = errors.New("missing authorization token")
	ErrMalformedHeader = errors.New("authorization header must be 'Bearer <token>'")
)

// BearerToken returns the Firebase ID token a reader client sends in its "authorization"
// metadata. gRPC-web forwards the browser's Authorization header under the same key.
func BearerToken(md metadata.MD) (string, error) {
	values := md.Get("authorization")
	switch len(values) {
	case 0:
		return "", ErrMissingToken
	case 1:
		return ExtractBearerToken(values[0])
	default:
		return "", fmt.Errorf("%w: got %d authorization values", ErrMalformedHeader, len(values))
	}
}

// ExtractBearerToken returns the token of a "Bearer <token>" header. The scheme is case
// insensitive.
func ExtractBearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return "", ErrMissingToken
	}
	if !strings.EqualFold(fields[0], "bearer") {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrMalformedHeader, fields[0])
	}
	if len(fields) != 2 {
		return "", ErrMalformedHeader
	}
	return fields[1], nil
}
