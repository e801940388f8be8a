package router

import (
	"context"

	"github.com/dtroode/userkeeper-server/internal/api/grpc/handler"
	"github.com/dtroode/userkeeper-server/internal/api/grpc/middleware"
	"github.com/dtroode/userkeeper-server/internal/api/grpc/userapi"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
)

// Router represents a gRPC router for user operations.
// It manages gRPC service registration and middleware configuration.
type Router struct {
	userService    handler.UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates new gRPC Router instance.
//
// Parameters:
//   - userService: The user management service
//   - contextManager: Stores the request id for downstream handlers
//   - logger: The logger for request logging
//
// Returns a pointer to the newly created Router instance.
func New(
	userService handler.UserService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// Register registers all gRPC services and middleware.
// It sets up the gRPC server with tracing, request logging and panic
// recovery, and the standard health service.
//
// Returns the configured gRPC server instance.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(
				recovery.WithRecoveryHandlerContext(r.recoverPanic),
			),
		),
	)
	r.registerUserRoutes(s)
	r.registerHealth(s)

	return s
}

func (r *Router) recoverPanic(_ context.Context, p any) error {
	r.logger.Error("gRPC handler panicked",
		"panic", p)
	return status.Error(codes.Internal, "internal server error")
}

func (r *Router) registerUserRoutes(server *grpc.Server) {
	userHandler := handler.NewUser(r.userService, r.logger)
	userapi.RegisterUsersServer(server, userHandler)
}

func (r *Router) registerHealth(server *grpc.Server) {
	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(userapi.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)
}
