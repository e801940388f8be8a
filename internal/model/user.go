package model

import (
	"context"
	"time"
)

// UserStore defines persistence operations for users.
//
// Lookups report a missing row with ErrNotFound. Insert and UpdateByID report
// a unique email collision with ErrDuplicate. DeleteByID reports a row that is
// still referenced by other records with ErrReferenced.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (User, error)
	FindByID(ctx context.Context, id int64) (User, error)
	List(ctx context.Context) ([]User, error)
	Insert(ctx context.Context, fields UserFields) (User, error)
	UpdateByID(ctx context.Context, id int64, patch UserPatch) (User, error)
	DeleteByID(ctx context.Context, id int64) (User, error)
}

// User represents a stored user.
type User struct {
	ID         int64          `json:"id"`
	Email      string         `json:"email"`
	Name       string         `json:"name"`
	Attributes map[string]any `json:"attributes"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
}

// UserFields contains the full field set of a new user.
type UserFields struct {
	Email      string
	Name       string
	Attributes map[string]any
}

// UserPatch contains a partial update. Nil fields are left unchanged.
// Attributes replaces the stored attribute document as a whole.
type UserPatch struct {
	Email      *string
	Name       *string
	Attributes map[string]any
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Email == nil && p.Name == nil && p.Attributes == nil
}
