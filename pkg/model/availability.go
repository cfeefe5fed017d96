package model

import (
	"fmt"
	"time"
)

// Availability slot states. "booked" is derived: only the offer
// dispatcher sets it, and only together with a booking reference.
const (
	SlotAvailable = "available"
	SlotBlocked   = "blocked"
	SlotBooked    = "booked"
)

// AvailabilitySlot records one provider's status for one (date, shift)
// unit of capacity. The document id is the composite slot key, which
// gives slot identity a uniqueness guarantee without a secondary index.
// A slot with no document is implicitly available.
type AvailabilitySlot struct {
	ID         string    `json:"id" bson:"_id"`
	ProviderID string    `json:"provider_id" bson:"provider_id"`
	Date       string    `json:"date" bson:"date"`
	Shift      string    `json:"shift" bson:"shift"`
	Status     string    `json:"status" bson:"status"`
	BookingID  string    `json:"booking_id,omitempty" bson:"booking_id,omitempty"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// SlotKey builds the composite document id for a slot.
func SlotKey(providerID, date, shift string) string {
	return fmt.Sprintf("%s|%s|%s", providerID, date, shift)
}
