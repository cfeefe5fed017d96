package service

import (
	"math"
	"sudsy/internal/catalog"
	pricingerrors "sudsy/internal/pricing/errors"
	"sudsy/pkg/model"
)

// Engine computes price breakdowns. It is a pure function over the
// catalog snapshot and its fixed policy knobs; it performs no I/O and
// is safe for unlimited concurrent callers.
type Engine struct {
	catalog           *catalog.Catalog
	taxRateBps        int64
	petSurchargeCents int64
	roundStepCents    int64
}

func NewEngine(cat *catalog.Catalog, taxRateBps, petSurchargeCents, roundStepCents int64) *Engine {
	return &Engine{
		catalog:           cat,
		taxRateBps:        taxRateBps,
		petSurchargeCents: petSurchargeCents,
		roundStepCents:    roundStepCents,
	}
}

// Price builds the breakdown for a property, service type, add-on set
// and optional pre-validated promo code.
//
// The base (sqft x rate x metro multiplier) and every rate-priced
// add-on are each rounded UP to the nearest rounding step. The pet
// surcharge and flat-priced add-ons are charged exactly, after
// rounding. Tax applies to the post-rounding subtotal. The promo discount is computed against the
// subtotal, not subtotal plus tax; tax-before-discount ordering is a
// deliberate product decision.
func (e *Engine) Price(property *model.Property, serviceTypeID string, addOnIDs []string, promo *model.PromoCode) (*model.PriceBreakdown, error) {
	if property == nil || property.Sqft <= 0 {
		return nil, pricingerrors.ErrInvalidProperty
	}

	st, ok := e.catalog.ServiceType(serviceTypeID)
	if !ok {
		return nil, pricingerrors.ErrUnknownServiceType
	}

	multiplier := e.catalog.MetroMultiplier(property.Address.City)

	rawBase := int64(math.Round(float64(int64(property.Sqft)*st.RateCentsPerSqft) * multiplier))
	baseCents := e.ceilToStep(rawBase)

	// The pet surcharge is a flat line item on top of the already
	// rounded base. It is not folded into the base before ceiling, so
	// a non-step surcharge amount leaves the combined base unrounded.
	var petSurcharge int64
	if property.HasPets {
		petSurcharge = e.petSurchargeCents
	}

	var addOnCharges []model.AddOnCharge
	var addOnTotal int64
	for _, id := range addOnIDs {
		ao, ok := e.catalog.AddOn(id)
		if !ok {
			return nil, pricingerrors.ErrUnknownAddOn
		}
		amount := ao.FlatPriceCents
		if amount == 0 {
			amount = e.ceilToStep(int64(property.Sqft) * ao.RateCentsPerSqft)
		}
		addOnCharges = append(addOnCharges, model.AddOnCharge{AddOnID: id, AmountCents: amount})
		addOnTotal += amount
	}

	subtotal := baseCents + petSurcharge + addOnTotal

	// Half-up rounding to whole cents.
	tax := (subtotal*e.taxRateBps + 5000) / 10000

	var discount int64
	promoCode := ""
	if promo != nil {
		if subtotal < promo.MinSubtotalCents {
			return nil, pricingerrors.ErrPromoBelowMinimum
		}
		discount = promo.DiscountCents(subtotal)
		if discount > subtotal+tax {
			discount = subtotal + tax
		}
		promoCode = promo.Code
	}

	return &model.PriceBreakdown{
		ServiceTypeID:     serviceTypeID,
		Sqft:              property.Sqft,
		MetroMultiplier:   multiplier,
		BaseCents:         baseCents,
		PetSurchargeCents: petSurcharge,
		AddOns:            addOnCharges,
		SubtotalCents:     subtotal,
		TaxRateBps:        e.taxRateBps,
		TaxCents:          tax,
		PromoCode:         promoCode,
		DiscountCents:     discount,
		TotalCents:        subtotal + tax - discount,
	}, nil
}

func (e *Engine) ceilToStep(cents int64) int64 {
	if cents <= 0 {
		return 0
	}
	return ((cents + e.roundStepCents - 1) / e.roundStepCents) * e.roundStepCents
}
