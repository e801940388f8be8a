package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dtroode/userkeeper-server/internal/apierrors"
	"github.com/dtroode/userkeeper-server/internal/logger"
	"github.com/dtroode/userkeeper-server/internal/model"
)

// User guards user mutations with existence and uniqueness checks and
// translates store failures into API errors.
//
// Checks and mutations are separate store calls and are not atomic. The
// store's unique index on email is what actually prevents duplicates; the
// pre-checks only produce a friendly error early.
type User struct {
	userStore model.UserStore
	archive   model.Storage
	logger    *logger.Logger
}

// NewUser creates a User service. archive may be nil, in which case removed
// users are not archived.
func NewUser(
	userStore model.UserStore,
	archive model.Storage,
	logger *logger.Logger,
) *User {
	return &User{
		userStore: userStore,
		archive:   archive,
		logger:    logger,
	}
}

// Create inserts a new user unless the email is already in use.
func (s *User) Create(ctx context.Context, fields model.UserFields) (model.User, error) {
	fields.Email = strings.TrimSpace(fields.Email)
	if fields.Email == "" {
		return model.User{}, apierrors.NewErrEmailRequired()
	}

	s.logger.Debug("User service: creating user",
		"email", fields.Email)

	_, err := s.userStore.FindByEmail(ctx, fields.Email)
	if err == nil {
		s.logger.Info("User service: email already in use",
			"email", fields.Email)
		return model.User{}, apierrors.NewErrEmailInUse()
	}
	if !errors.Is(err, model.ErrNotFound) {
		s.logger.Error("User service: failed to get user by email",
			"email", fields.Email,
			"error", err.Error())
		return model.User{}, err
	}

	user, err := s.userStore.Insert(ctx, fields)
	if errors.Is(err, model.ErrDuplicate) {
		s.logger.Info("User service: email taken concurrently",
			"email", fields.Email)
		return model.User{}, apierrors.NewErrEmailInUse()
	}
	if err != nil {
		s.logger.Error("User service: failed to insert user",
			"email", fields.Email,
			"error", err.Error())
		return model.User{}, err
	}

	s.logger.Info("User service: user created",
		"user_id", user.ID)

	return user, nil
}

// List returns every user in store order.
func (s *User) List(ctx context.Context) ([]model.User, error) {
	users, err := s.userStore.List(ctx)
	if err != nil {
		s.logger.Error("User service: failed to list users",
			"error", err.Error())
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}

	return users, nil
}

// Get returns the user with the given id.
func (s *User) Get(ctx context.Context, id int64) (model.User, error) {
	return s.findExisting(ctx, id)
}

// Update merges patch into an existing user.
func (s *User) Update(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	if _, err := s.findExisting(ctx, id); err != nil {
		return model.User{}, err
	}

	if patch.Email != nil {
		email := strings.TrimSpace(*patch.Email)
		if email == "" {
			return model.User{}, apierrors.NewErrEmailRequired()
		}
		patch.Email = &email
	}

	user, err := s.userStore.UpdateByID(ctx, id, patch)
	switch {
	case errors.Is(err, model.ErrNotFound):
		return model.User{}, apierrors.NewErrUserNotFound(id)
	case errors.Is(err, model.ErrDuplicate):
		s.logger.Info("User service: email already in use",
			"user_id", id)
		return model.User{}, apierrors.NewErrEmailInUse()
	case err != nil:
		s.logger.Error("User service: failed to update user",
			"user_id", id,
			"error", err.Error())
		return model.User{}, err
	}

	s.logger.Info("User service: user updated",
		"user_id", id)

	return user, nil
}

// Remove deletes an existing user and returns its last stored state.
func (s *User) Remove(ctx context.Context, id int64) (model.User, error) {
	if _, err := s.findExisting(ctx, id); err != nil {
		return model.User{}, err
	}

	user, err := s.userStore.DeleteByID(ctx, id)
	switch {
	case errors.Is(err, model.ErrReferenced):
		s.logger.Info("User service: user is still referenced",
			"user_id", id)
		return model.User{}, apierrors.NewErrUserReferenced()
	case errors.Is(err, model.ErrNotFound):
		return model.User{}, apierrors.NewErrUserNotFound(id)
	case err != nil:
		s.logger.Error("User service: failed to delete user",
			"user_id", id,
			"error", err.Error())
		return model.User{}, err
	}

	s.logger.Info("User service: user removed",
		"user_id", id)

	s.archiveRemoved(ctx, user)

	return user, nil
}

func (s *User) findExisting(ctx context.Context, id int64) (model.User, error) {
	user, err := s.userStore.FindByID(ctx, id)
	if errors.Is(err, model.ErrNotFound) {
		return model.User{}, apierrors.NewErrUserNotFound(id)
	}
	if err != nil {
		s.logger.Error("User service: failed to get user by id",
			"user_id", id,
			"error", err.Error())
		return model.User{}, err
	}

	return user, nil
}

// ArchiveKey returns the object key under which a removed user snapshot is stored.
func ArchiveKey(id int64, removedAt time.Time) string {
	return fmt.Sprintf("users/%d/%d.json", id, removedAt.UnixNano())
}

// archiveRemoved uploads the snapshot of a removed user. The delete is already
// committed, so failures are only logged.
func (s *User) archiveRemoved(ctx context.Context, user model.User) {
	if s.archive == nil {
		return
	}

	payload, err := json.Marshal(user)
	if err != nil {
		s.logger.Error("User service: failed to encode removed user",
			"user_id", user.ID,
			"error", err.Error())
		return
	}

	key := ArchiveKey(user.ID, time.Now())
	if err := s.archive.Upload(ctx, key, bytes.NewReader(payload)); err != nil {
		s.logger.Error("User service: failed to archive removed user",
			"user_id", user.ID,
			"key", key,
			"error", err.Error())
		return
	}

	s.logger.Debug("User service: removed user archived",
		"user_id", user.ID,
		"key", key)
}
