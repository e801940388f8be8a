package context

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/metadata"
)

// RequestIDKey is the metadata key carrying the request id in both
// directions.
const RequestIDKey string = "x-request-id"

// Manager represents a gRPC context manager for request id operations.
// It keeps the request id in incoming metadata so handlers and interceptors
// further down the chain can read it.
type Manager struct{}

// NewManager creates a new gRPC context manager instance.
func NewManager() *Manager {
	return &Manager{}
}

// SetRequestIDToContext stores the request id in the incoming metadata of ctx,
// replacing any id the client sent.
func (m *Manager) SetRequestIDToContext(ctx context.Context, requestID uuid.UUID) context.Context {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		md = metadata.New(map[string]string{RequestIDKey: requestID.String()})
	} else {
		md = md.Copy()
		md.Set(RequestIDKey, requestID.String())
	}

	return metadata.NewIncomingContext(ctx, md)
}

// GetRequestIDFromContext returns the request id from incoming metadata.
// Values that are not UUIDs are ignored.
func (m *Manager) GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return uuid.Nil, false
	}

	return parseFirst(md.Get(RequestIDKey))
}

// GetRequestIDFromResponseMetadata returns the request id the server sent
// back in the response header.
func (m *Manager) GetRequestIDFromResponseMetadata(md metadata.MD) (uuid.UUID, bool) {
	return parseFirst(md.Get(RequestIDKey))
}

func parseFirst(values []string) (uuid.UUID, bool) {
	if len(values) == 0 {
		return uuid.Nil, false
	}

	requestID, err := uuid.Parse(values[0])
	if err != nil {
		return uuid.Nil, false
	}

	return requestID, true
}
