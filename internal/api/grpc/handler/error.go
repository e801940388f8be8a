package handler

import (
	"errors"

	"github.com/dtroode/userkeeper-server/internal/apierrors"
	"github.com/dtroode/userkeeper-server/internal/model"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func handleError(err error) error {
	var apiErr *apierrors.APIError
	if errors.As(err, &apiErr) {
		return status.Error(apiErr.GRPCCode, apiErr.Message)
	}

	switch {
	case errors.Is(err, model.ErrNotFound):
		return status.Error(codes.NotFound, "record not found")
	default:
		return status.Error(codes.Internal, "internal server error")
	}
}
