package service

import (
	"errors"
	"reflect"
	"sudsy/internal/catalog"
	pricingerrors "sudsy/internal/pricing/errors"
	"sudsy/pkg/model"
	"testing"
	"time"
)

func testCatalog() *catalog.Catalog {
	return catalog.New(
		[]model.ServiceType{
			{ID: "standard", RateCentsPerSqft: 10},
			{ID: "deep", RateCentsPerSqft: 18},
		},
		[]model.AddOn{
			{ID: "inside_oven", FlatPriceCents: 2500},
			{ID: "interior_windows", RateCentsPerSqft: 2},
		},
		map[string]float64{
			"san francisco": 1.35,
		},
	)
}

func testEngine() *Engine {
	// 8% tax, $20 pet surcharge, $10 rounding step.
	return NewEngine(testCatalog(), 800, 2000, 1000)
}

func testProperty(sqft int, city string, pets bool) *model.Property {
	return &model.Property{
		ID:      "prop-1",
		OwnerID: "owner-1",
		Sqft:    sqft,
		HasPets: pets,
		Address: model.Address{City: city},
	}
}

func TestPriceBaseScenario(t *testing.T) {
	// 2000 sqft at $0.10/sqft, multiplier 1.0, no pets, no add-ons:
	// base $200, tax $16, total $216.
	breakdown, err := testEngine().Price(testProperty(2000, "Bakersfield", false), "standard", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.BaseCents != 20000 {
		t.Errorf("expected base 20000, got %d", breakdown.BaseCents)
	}
	if breakdown.SubtotalCents != 20000 {
		t.Errorf("expected subtotal 20000, got %d", breakdown.SubtotalCents)
	}
	if breakdown.TaxCents != 1600 {
		t.Errorf("expected tax 1600, got %d", breakdown.TaxCents)
	}
	if breakdown.TotalCents != 21600 {
		t.Errorf("expected total 21600, got %d", breakdown.TotalCents)
	}
}

func TestPriceFlatAddOnScenario(t *testing.T) {
	// Same property plus a $25 flat add-on: subtotal $225, tax $18,
	// total $243. Flat add-ons are charged exactly, not rounded.
	breakdown, err := testEngine().Price(testProperty(2000, "Bakersfield", false), "standard", []string{"inside_oven"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.SubtotalCents != 22500 {
		t.Errorf("expected subtotal 22500, got %d", breakdown.SubtotalCents)
	}
	if breakdown.TaxCents != 1800 {
		t.Errorf("expected tax 1800, got %d", breakdown.TaxCents)
	}
	if breakdown.TotalCents != 24300 {
		t.Errorf("expected total 24300, got %d", breakdown.TotalCents)
	}
}

func TestPriceRoundingLaw(t *testing.T) {
	engine := testEngine()

	// Odd sqft values whose raw base is not a multiple of $10.
	for _, sqft := range []int{1, 37, 999, 1013, 1999, 2501} {
		breakdown, err := engine.Price(testProperty(sqft, "Bakersfield", false), "standard", nil, nil)
		if err != nil {
			t.Fatalf("sqft %d: unexpected error: %v", sqft, err)
		}

		raw := int64(sqft) * 10
		if breakdown.BaseCents%1000 != 0 {
			t.Errorf("sqft %d: base %d is not a multiple of 1000 cents", sqft, breakdown.BaseCents)
		}
		if breakdown.BaseCents < raw {
			t.Errorf("sqft %d: base %d is below the unrounded value %d", sqft, breakdown.BaseCents, raw)
		}
		if breakdown.BaseCents-raw >= 1000 {
			t.Errorf("sqft %d: base %d over-rounds raw %d", sqft, breakdown.BaseCents, raw)
		}
	}
}

func TestPriceRateAddOnRounded(t *testing.T) {
	// 1013 sqft at 2c/sqft = $20.26, rounded up to $30.
	breakdown, err := testEngine().Price(testProperty(1013, "Bakersfield", false), "standard", []string{"interior_windows"}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(breakdown.AddOns) != 1 {
		t.Fatalf("expected 1 add-on charge, got %d", len(breakdown.AddOns))
	}
	if breakdown.AddOns[0].AmountCents != 3000 {
		t.Errorf("expected add-on charge 3000, got %d", breakdown.AddOns[0].AmountCents)
	}
}

func TestPriceMetroMultiplier(t *testing.T) {
	// 1000 sqft at $0.10 = $100 raw, x1.35 = $135, ceiled to the next
	// $10 multiple: $140.
	breakdown, err := testEngine().Price(testProperty(1000, "San Francisco", false), "standard", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.MetroMultiplier != 1.35 {
		t.Errorf("expected multiplier 1.35, got %v", breakdown.MetroMultiplier)
	}
	if breakdown.BaseCents != 14000 {
		t.Errorf("expected base 14000, got %d", breakdown.BaseCents)
	}
}

func TestPricePetSurcharge(t *testing.T) {
	breakdown, err := testEngine().Price(testProperty(2000, "Bakersfield", true), "standard", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.PetSurchargeCents != 2000 {
		t.Errorf("expected pet surcharge 2000, got %d", breakdown.PetSurchargeCents)
	}
	if breakdown.SubtotalCents != 22000 {
		t.Errorf("expected subtotal 22000, got %d", breakdown.SubtotalCents)
	}
}

func TestPriceDeterminism(t *testing.T) {
	engine := testEngine()
	property := testProperty(1742, "San Francisco", true)
	promo := &model.PromoCode{
		Code:         "SPRING10",
		DiscountType: model.DiscountPercentage,
		Value:        10,
		ExpiresAt:    time.Now().Add(time.Hour),
		MaxUses:      100,
	}

	first, err := engine.Price(property, "deep", []string{"inside_oven", "interior_windows"}, promo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := engine.Price(property, "deep", []string{"inside_oven", "interior_windows"}, promo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("identical inputs produced different breakdowns:\n%+v\n%+v", first, second)
	}
}

func TestPricePromoBelowMinimum(t *testing.T) {
	promo := &model.PromoCode{
		Code:             "BIG50",
		DiscountType:     model.DiscountFlat,
		Value:            5000,
		MinSubtotalCents: 50000,
		ExpiresAt:        time.Now().Add(time.Hour),
		MaxUses:          100,
	}

	_, err := testEngine().Price(testProperty(2000, "Bakersfield", false), "standard", nil, promo)
	if !errors.Is(err, pricingerrors.ErrPromoBelowMinimum) {
		t.Errorf("expected ErrPromoBelowMinimum, got %v", err)
	}
}

func TestPricePromoDiscountAgainstSubtotal(t *testing.T) {
	// 10% off subtotal $200 is $20; tax stays $16 because tax is
	// computed before the discount, so the total is $200 + $16 - $20.
	promo := &model.PromoCode{
		Code:         "SPRING10",
		DiscountType: model.DiscountPercentage,
		Value:        10,
		ExpiresAt:    time.Now().Add(time.Hour),
		MaxUses:      100,
	}

	breakdown, err := testEngine().Price(testProperty(2000, "Bakersfield", false), "standard", nil, promo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.DiscountCents != 2000 {
		t.Errorf("expected discount 2000, got %d", breakdown.DiscountCents)
	}
	if breakdown.TaxCents != 1600 {
		t.Errorf("expected tax 1600, got %d", breakdown.TaxCents)
	}
	if breakdown.TotalCents != 19600 {
		t.Errorf("expected total 19600, got %d", breakdown.TotalCents)
	}
}

func TestPriceTotalNeverNegative(t *testing.T) {
	promo := &model.PromoCode{
		Code:         "GLITCH",
		DiscountType: model.DiscountFlat,
		Value:        10000000,
		ExpiresAt:    time.Now().Add(time.Hour),
		MaxUses:      100,
	}

	breakdown, err := testEngine().Price(testProperty(2000, "Bakersfield", false), "standard", nil, promo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if breakdown.TotalCents != 0 {
		t.Errorf("expected total floored at 0, got %d", breakdown.TotalCents)
	}
}

func TestPriceErrors(t *testing.T) {
	engine := testEngine()

	if _, err := engine.Price(testProperty(2000, "", false), "carpet", nil, nil); !errors.Is(err, pricingerrors.ErrUnknownServiceType) {
		t.Errorf("expected ErrUnknownServiceType, got %v", err)
	}
	if _, err := engine.Price(testProperty(2000, "", false), "standard", []string{"chimney"}, nil); !errors.Is(err, pricingerrors.ErrUnknownAddOn) {
		t.Errorf("expected ErrUnknownAddOn, got %v", err)
	}
	if _, err := engine.Price(testProperty(0, "", false), "standard", nil, nil); !errors.Is(err, pricingerrors.ErrInvalidProperty) {
		t.Errorf("expected ErrInvalidProperty, got %v", err)
	}
	if _, err := engine.Price(nil, "standard", nil, nil); !errors.Is(err, pricingerrors.ErrInvalidProperty) {
		t.Errorf("expected ErrInvalidProperty for nil property, got %v", err)
	}
}
