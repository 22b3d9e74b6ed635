package service

import "errors"

// Request-scoped failure taxonomy. All of these surface to the client as-is;
// none are retried internally.
var (
	ErrDuplicateUsername   = errors.New("username already exists")
	ErrDuplicateEmail      = errors.New("email already exists")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
	ErrAccountNotFound     = errors.New("account not found")

	ErrTodoNotFound   = errors.New("todo not found")
	ErrInvalidSortKey = errors.New("invalid sort key")
	ErrInvalidOrder   = errors.New("invalid sort order")
)
