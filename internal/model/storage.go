package model

import (
	"context"
	"io"
)

// Storage is an object store used to archive snapshots of removed users.
type Storage interface {
	Upload(ctx context.Context, key string, reader io.Reader) error
}
