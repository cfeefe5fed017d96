package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrIllegalTransition = errors.New("illegal booking status transition")

	// ErrStatusChanged means a conditional update found the booking in a
	// different status than expected, usually because a concurrent
	// operation won.
	ErrStatusChanged = errors.New("booking status changed concurrently")
)
