package handler

import (
	"context"

	"github.com/dtroode/userkeeper-server/internal/api/grpc/userapi"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// UserService defines business operations for user management.
type UserService interface {
	Create(ctx context.Context, fields model.UserFields) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (model.User, error)
	Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error)
	Remove(ctx context.Context, id int64) (model.User, error)
}

// User handles gRPC endpoints for users.
type User struct {
	userapi.UnimplementedUsersServer
	userService UserService
	logger      *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, logger *logger.Logger) *User {
	return &User{
		userService: userService,
		logger:      logger,
	}
}

// CreateUser creates a user from {email, name, attributes}.
func (h *User) CreateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	fields, err := fieldsFromStruct(req)
	if err != nil {
		h.logger.Debug("User handler: invalid create request",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Debug("User handler: processing create user request",
		"email", fields.Email)

	user, err := h.userService.Create(ctx, fields)
	if err != nil {
		h.logger.Error("User handler: create user failed",
			"email", fields.Email,
			"error", err.Error())
		return nil, handleError(err)
	}

	return h.respond(user)
}

// ListUsers returns every user.
func (h *User) ListUsers(ctx context.Context, _ *emptypb.Empty) (*structpb.ListValue, error) {
	users, err := h.userService.List(ctx)
	if err != nil {
		h.logger.Error("User handler: list users failed",
			"error", err.Error())
		return nil, handleError(err)
	}

	list, err := usersToList(users)
	if err != nil {
		h.logger.Error("User handler: failed to encode users",
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Debug("User handler: list users completed",
		"count", len(users))

	return list, nil
}

// GetUser returns the user with the given id.
func (h *User) GetUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	user, err := h.userService.Get(ctx, req.GetValue())
	if err != nil {
		h.logger.Error("User handler: get user failed",
			"user_id", req.GetValue(),
			"error", err.Error())
		return nil, handleError(err)
	}

	return h.respond(user)
}

// UpdateUser applies {id, patch} and returns the updated user.
func (h *User) UpdateUser(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	id, patch, err := updateFromStruct(req)
	if err != nil {
		h.logger.Debug("User handler: invalid update request",
			"error", err.Error())
		return nil, handleError(err)
	}

	user, err := h.userService.Update(ctx, id, patch)
	if err != nil {
		h.logger.Error("User handler: update user failed",
			"user_id", id,
			"error", err.Error())
		return nil, handleError(err)
	}

	return h.respond(user)
}

// RemoveUser deletes the user and returns its last state.
func (h *User) RemoveUser(ctx context.Context, req *wrapperspb.Int64Value) (*structpb.Struct, error) {
	user, err := h.userService.Remove(ctx, req.GetValue())
	if err != nil {
		h.logger.Error("User handler: remove user failed",
			"user_id", req.GetValue(),
			"error", err.Error())
		return nil, handleError(err)
	}

	h.logger.Info("User handler: user removed",
		"user_id", user.ID)

	return h.respond(user)
}

func (h *User) respond(user model.User) (*structpb.Struct, error) {
	out, err := userToStruct(user)
	if err != nil {
		h.logger.Error("User handler: failed to encode user",
			"user_id", user.ID,
			"error", err.Error())
		return nil, handleError(err)
	}
	return out, nil
}
