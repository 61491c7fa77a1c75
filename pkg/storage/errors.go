package storage

import "errors"

var (
	// ErrNotFound indicates the key holds no document.
	ErrNotFound = errors.New("storage: key not found")

	// ErrPermissionDenied indicates the backend refused access to the key.
	ErrPermissionDenied = errors.New("storage: permission denied")

	// ErrInvalidKey indicates an empty key or one that escapes the storage root.
	ErrInvalidKey = errors.New("storage: invalid key")

	// ErrTooLarge indicates a document larger than the configured maximum.
	ErrTooLarge = errors.New("storage: document too large")

	// ErrStale indicates a Swap whose expected content no longer matches
	// the stored document.
	ErrStale = errors.New("storage: document changed since it was read")
)
