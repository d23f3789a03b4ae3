package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing node, path, site or container.
	ErrNotFound = errors.New("not found")
	// ErrGone signals a site or container that cannot be looked up or created.
	// A missing site and a permission failure are reported the same way.
	ErrGone = errors.New("gone")
	// ErrBadRequest signals malformed or missing mandatory input.
	ErrBadRequest = errors.New("bad request")
	// ErrForbidden signals a failed permission check on a single node.
	ErrForbidden = errors.New("forbidden")
	// ErrUnauthorized signals missing or invalid credentials.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrAlreadyExists signals a duplicate child name under a parent.
	ErrAlreadyExists = errors.New("already exists")
)

// NotFoundError wraps ErrNotFound with the identifier that failed to resolve.
type NotFoundError struct {
	Kind       string
	Identifier string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q %s", e.Kind, e.Identifier, ErrNotFound.Error())
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// NewNotFound creates a not-found error for the given kind ("node", "path", ...).
func NewNotFound(kind, identifier string) error {
	return &NotFoundError{Kind: kind, Identifier: identifier}
}
