package errors

import "errors"

var (
	// ErrLockHeld means another acceptance attempt currently holds the
	// advisory lock for the same provider slot.
	ErrLockHeld = errors.New("slot lock is held by another acceptance attempt")
)
