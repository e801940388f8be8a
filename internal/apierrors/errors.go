// Package apierrors defines the errors the user service exposes to transports.
//
// Every APIError unwraps to one of the kind sentinels, so callers can branch
// with errors.Is(err, apierrors.ErrNotFound) without knowing the message.
package apierrors

import (
	"errors"
	"fmt"
	"net/http"

	"google.golang.org/grpc/codes"
)

// Kind sentinels.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrInvalidArgument = errors.New("invalid argument")
)

// APIError is a failure that is safe to show to API clients.
type APIError struct {
	kind       error
	GRPCCode   codes.Code
	HTTPStatus int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// Unwrap returns the kind sentinel of the error.
func (e *APIError) Unwrap() error {
	return e.kind
}

func newNotFound(msg string) *APIError {
	return &APIError{kind: ErrNotFound, GRPCCode: codes.NotFound, HTTPStatus: http.StatusNotFound, Message: msg}
}

func newConflict(msg string) *APIError {
	return &APIError{kind: ErrConflict, GRPCCode: codes.AlreadyExists, HTTPStatus: http.StatusConflict, Message: msg}
}

func newInvalidArgument(msg string) *APIError {
	return &APIError{kind: ErrInvalidArgument, GRPCCode: codes.InvalidArgument, HTTPStatus: http.StatusBadRequest, Message: msg}
}

// NewErrUserNotFound is returned when no user has the given id.
func NewErrUserNotFound(id int64) *APIError {
	return newNotFound(fmt.Sprintf("User with id %d not found", id))
}

// NewErrEmailInUse is returned when another user already has the email.
func NewErrEmailInUse() *APIError {
	return newConflict("Email already in use")
}

// NewErrUserReferenced is returned when a user cannot be removed because
// other records still point at it.
func NewErrUserReferenced() *APIError {
	e := newConflict("Cannot delete user, it is being referenced by another record")
	e.GRPCCode = codes.FailedPrecondition
	return e
}

// NewErrEmailRequired is returned when a user is created without an email.
func NewErrEmailRequired() *APIError {
	return newInvalidArgument("email is required")
}

// NewErrInvalidUserID is returned when a transport receives a malformed id.
func NewErrInvalidUserID(raw string) *APIError {
	return newInvalidArgument(fmt.Sprintf("invalid user id %q", raw))
}

// NewErrInvalidPayload is returned when a request body cannot be decoded.
func NewErrInvalidPayload(reason string) *APIError {
	return newInvalidArgument(fmt.Sprintf("invalid payload: %s", reason))
}
