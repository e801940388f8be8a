package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dtroode/userkeeper-server/internal/model"
)

var _ model.UserStore = (*Store)(nil)

const userColumns = `id, email, name, attributes, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

// FindByEmail returns the user with the given email.
func (s *Store) FindByEmail(ctx context.Context, email string) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	user, err := scanUser(row)
	if err != nil {
		return model.User{}, translateError(err)
	}
	return user, nil
}

// FindByID returns the user with the given id.
func (s *Store) FindByID(ctx context.Context, id int64) (model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		return model.User{}, translateError(err)
	}
	return user, nil
}

// List returns all users ordered by id.
func (s *Store) List(ctx context.Context) ([]model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY id ASC`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// Insert creates a user from the full field set.
func (s *Store) Insert(ctx context.Context, fields model.UserFields) (model.User, error) {
	attributes, err := encodeAttributes(fields.Attributes)
	if err != nil {
		return model.User{}, err
	}
	now := toMillis(time.Now())

	row := s.db.QueryRowContext(ctx,
		`INSERT INTO users (email, name, attributes, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 RETURNING `+userColumns,
		fields.Email, fields.Name, attributes, now, now,
	)
	user, err := scanUser(row)
	if err != nil {
		return model.User{}, translateError(err)
	}
	return user, nil
}

// UpdateByID merges patch into the stored user.
func (s *Store) UpdateByID(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	var attributes any
	if patch.Attributes != nil {
		encoded, err := encodeAttributes(patch.Attributes)
		if err != nil {
			return model.User{}, err
		}
		attributes = encoded
	}

	row := s.db.QueryRowContext(ctx,
		`UPDATE users
		 SET email = COALESCE(?, email),
		     name = COALESCE(?, name),
		     attributes = COALESCE(?, attributes),
		     updated_at = ?
		 WHERE id = ?
		 RETURNING `+userColumns,
		nullable(patch.Email), nullable(patch.Name), attributes, toMillis(time.Now()), id,
	)
	user, err := scanUser(row)
	if err != nil {
		return model.User{}, translateError(err)
	}
	return user, nil
}

// DeleteByID removes the user and returns its last stored state.
func (s *Store) DeleteByID(ctx context.Context, id int64) (model.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	user, err := scanUser(tx.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err != nil {
		return model.User{}, translateError(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id); err != nil {
		return model.User{}, translateError(err)
	}

	if err := tx.Commit(); err != nil {
		return model.User{}, translateError(err)
	}
	return user, nil
}

func translateError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return model.ErrNotFound
	case isForeignKeyViolation(err):
		return model.ErrReferenced
	case isUniqueViolation(err):
		return model.ErrDuplicate
	default:
		return err
	}
}

func scanUser(row rowScanner) (model.User, error) {
	var (
		user                 model.User
		attributes           string
		createdAt, updatedAt int64
	)
	if err := row.Scan(&user.ID, &user.Email, &user.Name, &attributes, &createdAt, &updatedAt); err != nil {
		return model.User{}, err
	}

	user.Attributes = map[string]any{}
	if attributes != "" {
		if err := json.Unmarshal([]byte(attributes), &user.Attributes); err != nil {
			return model.User{}, fmt.Errorf("decode user attributes: %w", err)
		}
	}
	user.CreatedAt = fromMillis(createdAt)
	user.UpdatedAt = fromMillis(updatedAt)
	return user, nil
}

func encodeAttributes(attributes map[string]any) (string, error) {
	if attributes == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(attributes)
	if err != nil {
		return "", fmt.Errorf("encode user attributes: %w", err)
	}
	return string(encoded), nil
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
