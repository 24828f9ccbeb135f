package review

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("review: aborted")
	// ErrDeclined is returned when the user does not confirm submission.
	ErrDeclined = errors.New("review: submission declined")
)
