package model

import (
	"time"
)

// Booking lifecycle states. Transitions are enforced by the state
// machine in internal/bookings/state; nothing outside that package
// should compare and assign statuses ad hoc.
const (
	StatusPlaced        = "placed"
	StatusAwaitingMatch = "awaiting_match"
	StatusMatched       = "matched"
	StatusOnTheWay      = "on_the_way"
	StatusArrived       = "arrived"
	StatusInProgress    = "in_progress"
	StatusPendingReview = "completed_pending_approval"
	StatusApproved      = "approved"
	StatusCancelled     = "cancelled"
	StatusDisputed      = "disputed"
)

// Shift identifiers for availability slots and booking candidates.
const (
	ShiftMorning   = "morning"
	ShiftAfternoon = "afternoon"
	ShiftEvening   = "evening"
)

// SlotDateLayout is the calendar-day key format used everywhere a slot
// date appears. Slot dates are timezone-free calendar days, not instants.
const SlotDateLayout = "2006-01-02"

// CandidateSlot is one (date, shift) pair a customer is willing to be
// served on.
type CandidateSlot struct {
	Date  string `json:"date" bson:"date" validate:"required,datetime=2006-01-02"`
	Shift string `json:"shift" bson:"shift" validate:"required,oneof=morning afternoon evening"`
}

func (c CandidateSlot) Equal(other CandidateSlot) bool {
	return c.Date == other.Date && c.Shift == other.Shift
}

type Booking struct {
	ID            string          `json:"id,omitempty" bson:"_id,omitempty"`
	CustomerID    string          `json:"customer_id" bson:"customer_id" validate:"required"`
	PropertyID    string          `json:"property_id" bson:"property_id" validate:"required"`
	ServiceTypeID string          `json:"service_type_id" bson:"service_type_id" validate:"required"`
	AddOnIDs      []string        `json:"add_on_ids" bson:"add_on_ids" validate:"omitempty,max=10"`
	Candidates    []CandidateSlot `json:"candidates" bson:"candidates" validate:"required,min=1,max=5,dive"`
	Notes         string          `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`

	// Pricing is snapshotted at creation and never recomputed; it is a
	// financial record, not a live computation.
	Pricing   *PriceBreakdown `json:"pricing,omitempty" bson:"pricing,omitempty"`
	PromoCode string          `json:"promo_code,omitempty" bson:"promo_code,omitempty"`

	// PaymentAuthToken is an opaque pre-validated authorization supplied
	// by the caller; the engine never performs charge capture.
	PaymentAuthToken string `json:"payment_auth_token,omitempty" bson:"payment_auth_token,omitempty"`

	ProviderID string         `json:"provider_id,omitempty" bson:"provider_id,omitempty"`
	ChosenSlot *CandidateSlot `json:"chosen_slot,omitempty" bson:"chosen_slot,omitempty"`
	Status     string         `json:"status" bson:"status"`

	CreatedAt   time.Time  `json:"created_at" bson:"created_at"`
	MatchedAt   *time.Time `json:"matched_at,omitempty" bson:"matched_at,omitempty"`
	StartedAt   *time.Time `json:"started_at,omitempty" bson:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty" bson:"completed_at,omitempty"`
}

// HasCandidate reports whether the given (date, shift) pair is one of
// the booking's candidate slots.
func (b *Booking) HasCandidate(slot CandidateSlot) bool {
	for _, c := range b.Candidates {
		if c.Equal(slot) {
			return true
		}
	}
	return false
}
