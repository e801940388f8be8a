package middleware

import (
	"context"
	"time"

	grpcctx "github.com/dtroode/userkeeper-server/internal/api/grpc/context"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// Logging is a unary interceptor that tags requests with an id and logs
// them with their results.
type Logging struct {
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewLogging creates a new Logging middleware.
func NewLogging(contextManager model.ContextManager, logger *logger.Logger) *Logging {
	return &Logging{contextManager: contextManager, logger: logger}
}

// HandleGRPC logs method name, request id, duration and status for each
// unary request. A valid client-supplied request id is kept, otherwise a new
// one is generated. The id is echoed back in the response header.
func (l *Logging) HandleGRPC(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
	start := time.Now()

	requestID, ok := l.contextManager.GetRequestIDFromContext(ctx)
	if !ok {
		requestID = uuid.New()
	}
	ctx = l.contextManager.SetRequestIDToContext(ctx, requestID)
	// fails outside a real server transport, e.g. in direct calls
	_ = grpc.SetHeader(ctx, metadata.Pairs(grpcctx.RequestIDKey, requestID.String()))

	l.logger.Info("gRPC request started",
		"method", info.FullMethod,
		"request_id", requestID.String(),
		"start_time", start.Format(time.RFC3339))

	resp, err := handler(ctx, req)

	duration := time.Since(start)

	statusCode := codes.OK
	if err != nil {
		if st, ok := status.FromError(err); ok {
			statusCode = st.Code()
		} else {
			statusCode = codes.Internal
		}
	}

	l.logger.Info("gRPC request completed",
		"method", info.FullMethod,
		"request_id", requestID.String(),
		"duration_ms", duration.Milliseconds(),
		"status", statusCode.String())

	if err != nil {
		l.logger.Error("gRPC request failed",
			"method", info.FullMethod,
			"request_id", requestID.String(),
			"error", err.Error(),
			"status", statusCode.String())
	}

	return resp, err
}
