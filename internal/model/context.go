package model

import (
	"context"

	"github.com/google/uuid"
)

// ContextManager stores and reads the per-request id.
type ContextManager interface {
	SetRequestIDToContext(ctx context.Context, requestID uuid.UUID) context.Context
	GetRequestIDFromContext(ctx context.Context) (uuid.UUID, bool)
}
