package model

import "errors"

var (
	// ErrNotFound is returned by stores when the requested row does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned by stores when a unique constraint rejects a write.
	ErrDuplicate = errors.New("record already exists")
	// ErrReferenced is returned by stores when a delete is blocked by dependent records.
	ErrReferenced = errors.New("record is referenced by another record")
)
