package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dtroode/userkeeper-server/internal/apierrors"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
)

const maxBodyBytes = 1 << 20

// UserService defines business operations for user management.
type UserService interface {
	Create(ctx context.Context, fields model.UserFields) (model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id int64) (model.User, error)
	Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error)
	Remove(ctx context.Context, id int64) (model.User, error)
}

type createUserRequest struct {
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

// A null value decodes to a nil pointer and leaves the field unchanged.
type updateUserRequest struct {
	Email      *string        `json:"email"`
	Name       *string        `json:"name"`
	Attributes map[string]any `json:"attributes"`
}

// User handles HTTP endpoints for users.
type User struct {
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

// Create handles POST /users.
func (h *User) Create(w http.ResponseWriter, r *http.Request) {
	var req createUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.Create(r.Context(), model.UserFields{
		Email:      req.Email,
		Name:       req.Name,
		Attributes: req.Attributes,
	})
	if err != nil {
		h.logger.Error("User HTTP handler: create user failed",
			"email", req.Email,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// List handles GET /users.
func (h *User) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		h.logger.Error("User HTTP handler: list users failed",
			"error", err.Error())
		writeError(w, err)
		return
	}
	if users == nil {
		users = []model.User{}
	}

	writeJSON(w, http.StatusOK, users)
}

// Get handles GET /users/{id}.
func (h *User) Get(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		h.logger.Debug("User HTTP handler: get user failed",
			"user_id", id,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Update handles PATCH /users/{id}.
func (h *User) Update(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var req updateUserRequest
	if err := decodeBody(w, r, &req); err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.Update(r.Context(), id, model.UserPatch{
		Email:      req.Email,
		Name:       req.Name,
		Attributes: req.Attributes,
	})
	if err != nil {
		h.logger.Error("User HTTP handler: update user failed",
			"user_id", id,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// Remove handles DELETE /users/{id}.
func (h *User) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := userID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.userService.Remove(r.Context(), id)
	if err != nil {
		h.logger.Error("User HTTP handler: remove user failed",
			"user_id", id,
			"error", err.Error())
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func userID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apierrors.NewErrInvalidUserID(raw)
	}
	return id, nil
}

// decodeBody reads exactly one JSON object into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apierrors.NewErrInvalidPayload("empty body")
		}
		return apierrors.NewErrInvalidPayload(err.Error())
	}
	if dec.More() {
		return apierrors.NewErrInvalidPayload("unexpected data after JSON object")
	}
	return nil
}
