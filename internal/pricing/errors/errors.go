package errors

import "errors"

var (
	ErrUnknownServiceType = errors.New("unknown service type")

	ErrUnknownAddOn = errors.New("unknown add-on")

	ErrInvalidProperty = errors.New("property is missing square footage")

	ErrPromoNotFound = errors.New("promo code not found")

	ErrPromoExists = errors.New("promo code already exists")

	ErrPromoExpired = errors.New("promo code has expired")

	ErrPromoExhausted = errors.New("promo code has reached its usage limit")

	// ErrPromoBelowMinimum marks the valid-code-but-unmet-threshold case.
	// It is surfaced distinctly rather than silently dropping the discount.
	ErrPromoBelowMinimum = errors.New("order subtotal is below the promo code minimum")
)
