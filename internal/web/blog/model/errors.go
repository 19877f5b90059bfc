package model

import "github.com/Laisky/errors/v2"

var (
	// ErrInvalidArgument indicates a malformed or missing request field.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrRateLimited indicates the client must retry later.
	ErrRateLimited = errors.New("too many requests")
	// ErrStoreUnavailable indicates the shared store is required but absent.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrStorage indicates the store rejected an operation.
	ErrStorage = errors.New("storage error")
	// ErrNotFound indicates the requested post does not exist.
	ErrNotFound = errors.New("not found")
)
