package model

import "github.com/m-mizutani/goerr/v2"

var (
	// ErrNotFound is returned by storage when a key does not exist
	ErrNotFound = goerr.New("not found")

	// ErrAlreadyExists is returned by storage when a create-only write hits an existing key
	ErrAlreadyExists = goerr.New("already exists")

	// ErrInvalidKey is returned when a file name cannot be used as a storage key
	ErrInvalidKey = goerr.New("invalid storage key")
)
