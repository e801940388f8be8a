package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/dtroode/userkeeper-server/internal/model"
)

var _ model.UserStore = (*UserRepository)(nil)

const userColumns = `id, email, name, attributes, created_at, updated_at`

type UserRepository struct {
	db *Connection
}

func NewUserRepository(db *Connection) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, email))
	if err != nil {
		return model.User{}, translateError(err)
	}

	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return model.User{}, translateError(err)
	}

	return user, nil
}

func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *UserRepository) Insert(ctx context.Context, fields model.UserFields) (model.User, error) {
	attributes, err := encodeAttributes(fields.Attributes)
	if err != nil {
		return model.User{}, err
	}

	query := `INSERT INTO users (email, name, attributes)
			  VALUES ($1, $2, $3::jsonb)
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, fields.Email, fields.Name, attributes))
	if err != nil {
		return model.User{}, translateError(err)
	}

	return user, nil
}

func (r *UserRepository) UpdateByID(ctx context.Context, id int64, patch model.UserPatch) (model.User, error) {
	var attributes any
	if patch.Attributes != nil {
		encoded, err := encodeAttributes(patch.Attributes)
		if err != nil {
			return model.User{}, err
		}
		attributes = encoded
	}

	query := `UPDATE users
			  SET email = COALESCE($2, email),
			      name = COALESCE($3, name),
			      attributes = COALESCE($4::jsonb, attributes),
			      updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id, nullable(patch.Email), nullable(patch.Name), attributes))
	if err != nil {
		return model.User{}, translateError(err)
	}

	return user, nil
}

func (r *UserRepository) DeleteByID(ctx context.Context, id int64) (model.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns

	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return model.User{}, translateError(err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (model.User, error) {
	var (
		user       model.User
		attributes []byte
	)
	err := row.Scan(&user.ID, &user.Email, &user.Name, &attributes, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return model.User{}, err
	}

	user.Attributes, err = decodeAttributes(attributes)
	if err != nil {
		return model.User{}, err
	}

	return user, nil
}

func encodeAttributes(attributes map[string]any) (string, error) {
	if attributes == nil {
		return "{}", nil
	}
	encoded, err := json.Marshal(attributes)
	if err != nil {
		return "", fmt.Errorf("failed to encode user attributes: %w", err)
	}
	return string(encoded), nil
}

func decodeAttributes(raw []byte) (map[string]any, error) {
	attributes := map[string]any{}
	if len(raw) == 0 {
		return attributes, nil
	}
	if err := json.Unmarshal(raw, &attributes); err != nil {
		return nil, fmt.Errorf("failed to decode user attributes: %w", err)
	}
	return attributes, nil
}

func nullable(v *string) any {
	if v == nil {
		return nil
	}
	return *v
}
