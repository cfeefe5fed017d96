package model

import (
	"fmt"
	"time"
)

// OfferDecline is a provider-local "don't show me this again"
// preference. Declining never touches booking state.
type OfferDecline struct {
	ID         string    `json:"id" bson:"_id"`
	BookingID  string    `json:"booking_id" bson:"booking_id"`
	ProviderID string    `json:"provider_id" bson:"provider_id"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
}

func DeclineKey(bookingID, providerID string) string {
	return fmt.Sprintf("%s|%s", bookingID, providerID)
}
