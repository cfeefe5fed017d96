package service

import (
	"context"
	"errors"
	directoryerrors "sudsy/internal/directory/errors"
	directoryrepo "sudsy/internal/directory/repository"
	pricingerrors "sudsy/internal/pricing/errors"
	"sudsy/internal/pricing/repository"
	"sudsy/pkg/config"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/model"
	"sudsy/pkg/sanitizer"
	"time"
)

type QuoteRequest struct {
	PropertyID    string   `json:"property_id"`
	ServiceTypeID string   `json:"service_type_id"`
	AddOnIDs      []string `json:"add_on_ids"`
	PromoCode     string   `json:"promo_code"`
}

type PricingService interface {
	Quote(ctx context.Context, req *QuoteRequest) (*model.PriceBreakdown, error)
	// CreatePromo registers a new promo code. Codes are immutable once
	// created; usage accounting happens at booking commit.
	CreatePromo(ctx context.Context, promo *model.PromoCode) error
	GetPromo(ctx context.Context, code string) (*model.PromoCode, error)
}

type pricingService struct {
	engine     *Engine
	promos     *PromoValidator
	promoRepo  repository.PromoRepository
	properties directoryrepo.PropertyRepository
	cfg        *config.Config
}

func NewPricingService(
	engine *Engine,
	promos *PromoValidator,
	promoRepo repository.PromoRepository,
	properties directoryrepo.PropertyRepository,
	cfg *config.Config,
) PricingService {
	return &pricingService{
		engine:     engine,
		promos:     promos,
		promoRepo:  promoRepo,
		properties: properties,
		cfg:        cfg,
	}
}

// Quote prices a prospective booking. It is side-effect free: the promo
// code is validated but its use count is untouched until booking commit.
func (s *pricingService) Quote(ctx context.Context, req *QuoteRequest) (*model.PriceBreakdown, error) {
	req.PropertyID = sanitizer.NormalizeID(req.PropertyID)
	req.ServiceTypeID = sanitizer.NormalizeID(req.ServiceTypeID)
	req.AddOnIDs = sanitizer.NormalizeIDs(req.AddOnIDs)
	req.PromoCode = sanitizer.NormalizeID(req.PromoCode)

	if req.PropertyID == "" {
		return nil, apperrors.InvalidInput("Property ID cannot be empty")
	}
	if req.ServiceTypeID == "" {
		return nil, apperrors.InvalidInput("Service type ID cannot be empty")
	}

	property, err := s.properties.FindByID(ctx, req.PropertyID)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrPropertyNotFound) {
			return nil, apperrors.NotFoundWithID("Property", req.PropertyID)
		}
		return nil, apperrors.Internal("Failed to load property", err)
	}

	var promo *model.PromoCode
	if req.PromoCode != "" {
		promo, err = s.promos.Validate(ctx, req.PromoCode, time.Now().UTC())
		if err != nil {
			return nil, MapPromoError(err, req.PromoCode)
		}
	}

	breakdown, err := s.engine.Price(property, req.ServiceTypeID, req.AddOnIDs, promo)
	if err != nil {
		return nil, MapPricingError(err, req)
	}

	s.cfg.Log.Debug("Quote computed",
		"property_id", req.PropertyID,
		"service_type_id", req.ServiceTypeID,
		"subtotal_cents", breakdown.SubtotalCents,
		"total_cents", breakdown.TotalCents,
	)
	return breakdown, nil
}

func (s *pricingService) CreatePromo(ctx context.Context, promo *model.PromoCode) error {
	promo.Code = sanitizer.NormalizeID(promo.Code)

	if promo.Code == "" {
		return apperrors.InvalidInput("Promo code cannot be empty")
	}
	if promo.DiscountType != model.DiscountPercentage && promo.DiscountType != model.DiscountFlat {
		return apperrors.InvalidInput("Discount type must be percentage or flat")
	}
	if promo.Value <= 0 {
		return apperrors.InvalidInput("Discount value must be positive")
	}
	if promo.DiscountType == model.DiscountPercentage && promo.Value > 100 {
		return apperrors.InvalidInput("Percentage discount cannot exceed 100")
	}
	if promo.MinSubtotalCents < 0 {
		return apperrors.InvalidInput("Minimum subtotal cannot be negative")
	}
	if promo.MaxUses < 1 {
		return apperrors.InvalidInput("Max uses must be at least 1")
	}
	if promo.ExpiresAt.IsZero() || !promo.ExpiresAt.After(time.Now().UTC()) {
		return apperrors.InvalidInput("Expiry must be in the future")
	}
	promo.CurrentUses = 0

	if err := s.promoRepo.Create(ctx, promo); err != nil {
		if errors.Is(err, pricingerrors.ErrPromoExists) {
			return apperrors.Conflict("Promo code already exists")
		}
		s.cfg.Log.Error("Failed to create promo code", "promo_code", promo.Code, "error", err)
		return apperrors.Internal("Failed to create promo code", err)
	}

	s.cfg.Log.Info("Promo code created", "promo_code", promo.Code, "max_uses", promo.MaxUses)
	return nil
}

func (s *pricingService) GetPromo(ctx context.Context, code string) (*model.PromoCode, error) {
	code = sanitizer.NormalizeID(code)
	if code == "" {
		return nil, apperrors.InvalidInput("Promo code cannot be empty")
	}

	promo, err := s.promoRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, pricingerrors.ErrPromoNotFound) {
			return nil, apperrors.NotFoundWithID("Promo code", code)
		}
		return nil, apperrors.Internal("Failed to load promo code", err)
	}
	return promo, nil
}

// MapPricingError converts engine sentinels into user-facing errors.
func MapPricingError(err error, req *QuoteRequest) error {
	switch {
	case errors.Is(err, pricingerrors.ErrUnknownServiceType):
		return apperrors.InvalidInput("Unknown service type: " + req.ServiceTypeID)
	case errors.Is(err, pricingerrors.ErrUnknownAddOn):
		return apperrors.InvalidInput("Request contains an unknown add-on")
	case errors.Is(err, pricingerrors.ErrInvalidProperty):
		return apperrors.Validation("Property is missing square footage", nil)
	case errors.Is(err, pricingerrors.ErrPromoBelowMinimum):
		return apperrors.Validation("Order subtotal is below the promo code minimum", map[string]any{
			"promo_code": req.PromoCode,
		})
	default:
		return apperrors.Internal("Failed to compute quote", err)
	}
}

// MapPromoError converts promo validation sentinels into user-facing
// errors.
func MapPromoError(err error, code string) error {
	switch {
	case errors.Is(err, pricingerrors.ErrPromoNotFound):
		return apperrors.NotFoundWithID("Promo code", code)
	case errors.Is(err, pricingerrors.ErrPromoExpired):
		return apperrors.Validation("Promo code has expired", map[string]any{"promo_code": code})
	case errors.Is(err, pricingerrors.ErrPromoExhausted):
		return apperrors.Validation("Promo code has reached its usage limit", map[string]any{"promo_code": code})
	default:
		return apperrors.Internal("Failed to validate promo code", err)
	}
}
