// Package service holds the catalog, review, account and genre operations.
// Every operation takes the caller as an explicit Requester so the rules
// can be exercised without an HTTP stack; handlers translate the sentinel
// errors below into status codes.
package service

import (
	"errors"
	"fmt"

	"github.com/iliyamo/tiered-catalog/internal/tier"
)

var (
	ErrInvalidTier        = tier.ErrInvalidTier
	ErrValidation         = errors.New("validation failed")
	ErrUnauthenticated    = errors.New("not authorized")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrForbidden          = errors.New("not authorized as an admin")
	ErrNotFound           = errors.New("not found")
	ErrDuplicateReview    = errors.New("movie already reviewed")
	ErrMissingAsset       = errors.New("image and video files are required")
	ErrUpstreamUpload     = errors.New("asset upload failed")
	ErrEmailExists        = errors.New("user already exists")
	ErrGenreExists        = errors.New("genre already exists")
	ErrGenreInUse         = errors.New("genre is used by a movie")
)

var (
	errMovieNotFound  = fmt.Errorf("movie %w", ErrNotFound)
	errReviewNotFound = fmt.Errorf("comment %w", ErrNotFound)
	errUserNotFound   = fmt.Errorf("user %w", ErrNotFound)
	errGenreNotFound  = fmt.Errorf("genre %w", ErrNotFound)
)

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
