package auth

import (
	"context"
)

// Auth verifies a Firebase ID token and returns it when the signed-in user may use the reader.
type Auth interface {
	Verify(ctx context.Context, token string) (string, error)
}
