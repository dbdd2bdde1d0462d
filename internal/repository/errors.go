// Package repository defines the credential, catalog and genre stores in
// two renditions: MongoDB documents (the default) and MySQL rows whose
// JSON columns keep the same document shape. Both return the sentinel
// errors below so callers can stay backend agnostic.
package repository

import "errors"

var (
	// ErrMovieNotFound is returned when no movie matches the given id,
	// including ids that are not well formed for the backend.
	ErrMovieNotFound = errors.New("movie not found")
	// ErrUserNotFound is returned when no user matches an id or email.
	ErrUserNotFound = errors.New("user not found")
	// ErrGenreNotFound is returned when no genre matches the given id.
	ErrGenreNotFound = errors.New("genre not found")
	// ErrEmailExists signals a unique-email violation.
	ErrEmailExists = errors.New("email already exists")
	// ErrGenreExists signals a unique-name violation on genres.
	ErrGenreExists = errors.New("genre already exists")
)

// Order selects the sort applied by catalog listings.
type Order int

const (
	OrderNone     Order = iota // store order
	OrderNewest                // created_at descending
	OrderTopRated              // rating descending
)
