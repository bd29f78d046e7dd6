package calls

import "errors"

var (
	// ErrNotFound indicates a referenced contact or call does not exist.
	ErrNotFound = errors.New("calls: not found")

	// ErrInvalidArgument indicates missing or malformed required input.
	ErrInvalidArgument = errors.New("calls: invalid argument")

	// ErrCapacity indicates the active-call limit rejected the request.
	ErrCapacity = errors.New("calls: active call limit reached")
)
