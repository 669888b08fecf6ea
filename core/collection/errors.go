package collection

import "errors"

var (
	// ErrCollectionNotFound is returned for unknown collection names.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrCollectionExists is returned when creating a name that is taken.
	ErrCollectionExists = errors.New("collection already exists")
	// ErrEmptyCollection is returned for edits of the empty collection.
	ErrEmptyCollection = errors.New("the empty collection cannot be modified")
	// ErrProtectedCollection is returned when deleting the default collection.
	ErrProtectedCollection = errors.New("the default collection cannot be deleted")
	// ErrInvalidName is returned for blank collection or actor names.
	ErrInvalidName = errors.New("invalid name")
	// ErrInvalidOption is returned for unknown groups or option indices.
	ErrInvalidOption = errors.New("invalid option selection")
)
