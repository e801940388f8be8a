package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dtroode/userkeeper-server/internal/model"
)

// SQLSTATE codes the user store reacts to.
const (
	codeForeignKeyViolation = "23503"
	codeUniqueViolation     = "23505"
)

// translateError maps driver errors onto store sentinels. Errors it does not
// recognize are returned unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return model.ErrNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case codeForeignKeyViolation:
			return model.ErrReferenced
		case codeUniqueViolation:
			return model.ErrDuplicate
		}
	}

	return err
}
