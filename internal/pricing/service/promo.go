package service

import (
	"context"
	pricingerrors "sudsy/internal/pricing/errors"
	"sudsy/internal/pricing/repository"
	"sudsy/pkg/model"
	"sudsy/pkg/sanitizer"
	"time"
)

// PromoValidator checks whether a promo code may be applied. Validation
// is read-only; the use count is only incremented at booking commit.
type PromoValidator struct {
	repo repository.PromoRepository
}

func NewPromoValidator(repo repository.PromoRepository) *PromoValidator {
	return &PromoValidator{repo: repo}
}

func (v *PromoValidator) Validate(ctx context.Context, code string, now time.Time) (*model.PromoCode, error) {
	promo, err := v.repo.FindByCode(ctx, sanitizer.NormalizeID(code))
	if err != nil {
		return nil, err
	}

	if err := CheckPromo(promo, now); err != nil {
		return nil, err
	}
	return promo, nil
}

// CheckPromo applies the expiry and exhaustion rules to an already
// loaded promo snapshot. Split out so booking commit can re-check
// inside its transaction without a second fetch path.
func CheckPromo(promo *model.PromoCode, now time.Time) error {
	if now.After(promo.ExpiresAt) {
		return pricingerrors.ErrPromoExpired
	}
	if promo.CurrentUses >= promo.MaxUses {
		return pricingerrors.ErrPromoExhausted
	}
	return nil
}
