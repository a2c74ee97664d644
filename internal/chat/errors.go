package chat

import "errors"

var (
	// ErrNotFound covers a referenced group, agent, user, or friend that is
	// absent from the store.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is an authorization predicate failure: missing admin
	// flag, non-member access, or non-owner agent attachment.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict is a duplicate username on registration.
	ErrConflict = errors.New("username already exists")
)
