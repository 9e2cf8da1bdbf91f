package db

import "errors"

// Domain-level store error sentinels.
var (
	// Account errors
	ErrAccountNotFound   = errors.New("account not found")
	ErrDuplicateUsername = errors.New("username already taken")

	// Driver errors
	ErrUnknownDriver = errors.New("unknown store driver")
)
