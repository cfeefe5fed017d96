package errors

import "errors"

var (
	ErrSlotNotFound = errors.New("availability slot not found")

	// ErrCannotModifyBookedSlot guards the derived "booked" status: a
	// booked slot is only released by cancelling or completing the
	// booking that owns it, never by a provider toggle.
	ErrCannotModifyBookedSlot = errors.New("cannot modify a booked slot")

	ErrSlotUnavailable = errors.New("slot is not available")

	ErrOutOfHorizon = errors.New("date is beyond the scheduling horizon")

	ErrPastDate = errors.New("past dates are immutable")

	ErrInvalidDate = errors.New("invalid date format")

	ErrInvalidShift = errors.New("unknown shift")
)
