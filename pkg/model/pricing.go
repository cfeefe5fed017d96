package model

// All monetary amounts are integer US cents. Rates that apply per
// square foot are also expressed in cents (e.g. a $0.10/sqft rate is
// RateCentsPerSqft = 10).

type ServiceType struct {
	ID               string   `json:"id" bson:"_id"`
	Description      string   `json:"description" bson:"description"`
	RateCentsPerSqft int64    `json:"rate_cents_per_sqft" bson:"rate_cents_per_sqft"`
	IncludedTasks    []string `json:"included_tasks" bson:"included_tasks"`
}

// AddOn is priced either flat or per square foot; exactly one of the
// two fields is non-zero.
type AddOn struct {
	ID               string `json:"id" bson:"_id"`
	Name             string `json:"name" bson:"name"`
	FlatPriceCents   int64  `json:"flat_price_cents,omitempty" bson:"flat_price_cents,omitempty"`
	RateCentsPerSqft int64  `json:"rate_cents_per_sqft,omitempty" bson:"rate_cents_per_sqft,omitempty"`
}

type AddOnCharge struct {
	AddOnID     string `json:"add_on_id" bson:"add_on_id"`
	AmountCents int64  `json:"amount_cents" bson:"amount_cents"`
}

// PriceBreakdown is the immutable pricing snapshot stored on a booking.
type PriceBreakdown struct {
	ServiceTypeID     string        `json:"service_type_id" bson:"service_type_id"`
	Sqft              int           `json:"sqft" bson:"sqft"`
	MetroMultiplier   float64       `json:"metro_multiplier" bson:"metro_multiplier"`
	BaseCents         int64         `json:"base_cents" bson:"base_cents"`
	PetSurchargeCents int64         `json:"pet_surcharge_cents" bson:"pet_surcharge_cents"`
	AddOns            []AddOnCharge `json:"add_ons,omitempty" bson:"add_ons,omitempty"`
	SubtotalCents     int64         `json:"subtotal_cents" bson:"subtotal_cents"`
	TaxRateBps        int64         `json:"tax_rate_bps" bson:"tax_rate_bps"`
	TaxCents          int64         `json:"tax_cents" bson:"tax_cents"`
	PromoCode         string        `json:"promo_code,omitempty" bson:"promo_code,omitempty"`
	DiscountCents     int64         `json:"discount_cents" bson:"discount_cents"`
	TotalCents        int64         `json:"total_cents" bson:"total_cents"`
}
