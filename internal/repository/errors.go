package repository

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	ErrNotFound = errors.New("entity not found")

	// ErrDuplicate is returned when a unique constraint rejects a write.
	ErrDuplicate = errors.New("entity already exists")

	// ErrInvalidReference is returned when a write names an entity that does
	// not exist or an id that is not well formed.
	ErrInvalidReference = errors.New("referenced entity does not exist")

	// ErrOverlap is returned when a confirmed booking would overlap another
	// confirmed booking for the same listing.
	ErrOverlap = errors.New("booking dates overlap a confirmed booking")
)
