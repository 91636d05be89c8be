package game

import "errors"

var (
	// ErrInvalidArgument covers bad difficulty values and malformed coordinates.
	ErrInvalidArgument = errors.New("invalid argument")
	ErrNotFound        = errors.New("not found")
	// ErrInvalidState is returned when acting on a completed or superseded session.
	ErrInvalidState      = errors.New("invalid state")
	ErrGenerationFailure = errors.New("puzzle generation failed")
	// ErrConflict means a concurrent click won the race; the caller may retry the click.
	ErrConflict = errors.New("click not registered, retry")
)
