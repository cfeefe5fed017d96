package model

import "time"

const (
	DiscountPercentage = "percentage"
	DiscountFlat       = "flat"
)

// PromoCode is keyed by the code string itself. CurrentUses is mutated
// exactly once per successful redemption, at booking commit, via a
// guarded conditional update; quote-time validation never writes.
type PromoCode struct {
	Code             string    `json:"code" bson:"_id"`
	DiscountType     string    `json:"discount_type" bson:"discount_type"`
	Value            int64     `json:"value" bson:"value"`
	MinSubtotalCents int64     `json:"min_subtotal_cents" bson:"min_subtotal_cents"`
	ExpiresAt        time.Time `json:"expires_at" bson:"expires_at"`
	MaxUses          int64     `json:"max_uses" bson:"max_uses"`
	CurrentUses      int64     `json:"current_uses" bson:"current_uses"`
	CreatedAt        time.Time `json:"created_at" bson:"created_at"`
}

// DiscountCents computes the discount against a subtotal. Threshold and
// validity checks live in the promo validator, not here.
func (p *PromoCode) DiscountCents(subtotalCents int64) int64 {
	switch p.DiscountType {
	case DiscountPercentage:
		return subtotalCents * p.Value / 100
	case DiscountFlat:
		return p.Value
	default:
		return 0
	}
}
