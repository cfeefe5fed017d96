package service

import (
	"context"
	"errors"
	availabilityservice "sudsy/internal/availability/service"
	bookingserrors "sudsy/internal/bookings/errors"
	"sudsy/internal/bookings/repository"
	"sudsy/internal/bookings/state"
	"sudsy/internal/bookings/validator"
	directoryerrors "sudsy/internal/directory/errors"
	directoryrepo "sudsy/internal/directory/repository"
	"sudsy/internal/notify"
	pricingrepo "sudsy/internal/pricing/repository"
	pricingservice "sudsy/internal/pricing/service"
	"sudsy/pkg/config"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/model"
	"sudsy/pkg/sanitizer"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
)

type BookingService interface {
	Create(ctx context.Context, booking *model.Booking) error
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, int64, error)
	Cancel(ctx context.Context, id string) error
	// Progress applies a job-execution event (on_the_way through
	// approved or disputed) under the state machine's rules.
	Progress(ctx context.Context, id string, toStatus string) (*model.Booking, error)
}

type bookingService struct {
	repo         repository.BookingRepository
	promoRepo    pricingrepo.PromoRepository
	properties   directoryrepo.PropertyRepository
	availability availabilityservice.AvailabilityService
	engine       *pricingservice.Engine
	promos       *pricingservice.PromoValidator
	validator    *validator.BookingValidator
	publisher    notify.Publisher
	cfg          *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	promoRepo pricingrepo.PromoRepository,
	properties directoryrepo.PropertyRepository,
	availability availabilityservice.AvailabilityService,
	engine *pricingservice.Engine,
	promos *pricingservice.PromoValidator,
	validator *validator.BookingValidator,
	publisher notify.Publisher,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:         repo,
		promoRepo:    promoRepo,
		properties:   properties,
		availability: availability,
		engine:       engine,
		promos:       promos,
		validator:    validator,
		publisher:    publisher,
		cfg:          cfg,
	}
}

// Create prices and persists a new booking. The price breakdown is
// snapshotted onto the booking and never recomputed. When a promo code
// is applied, its use-count increment commits in the same transaction
// as the booking insert, so concurrent commits can never redeem past
// max_uses.
func (s *bookingService) Create(ctx context.Context, booking *model.Booking) error {
	s.sanitize(booking)
	booking.Status = model.StatusPlaced
	booking.Pricing = nil
	booking.ProviderID = ""
	booking.ChosenSlot = nil

	if booking.PaymentAuthToken == "" {
		return apperrors.InvalidInput("Payment authorization token is required")
	}
	if err := s.validator.Validate(booking); err != nil {
		s.cfg.Log.Warn("Booking validation failed", "error", err)
		return apperrors.Validation("Booking validation failed", map[string]any{"error": err.Error()})
	}
	if err := s.checkCandidateWindow(booking.Candidates); err != nil {
		return err
	}

	property, err := s.properties.FindByID(ctx, booking.PropertyID)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrPropertyNotFound) {
			return apperrors.NotFoundWithID("Property", booking.PropertyID)
		}
		return apperrors.Internal("Failed to load property", err)
	}

	var promo *model.PromoCode
	if booking.PromoCode != "" {
		promo, err = s.promos.Validate(ctx, booking.PromoCode, time.Now().UTC())
		if err != nil {
			return pricingservice.MapPromoError(err, booking.PromoCode)
		}
	}

	breakdown, err := s.engine.Price(property, booking.ServiceTypeID, booking.AddOnIDs, promo)
	if err != nil {
		return pricingservice.MapPricingError(err, &pricingservice.QuoteRequest{
			ServiceTypeID: booking.ServiceTypeID,
			PromoCode:     booking.PromoCode,
		})
	}
	booking.Pricing = breakdown
	booking.PromoCode = breakdown.PromoCode

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if promo != nil {
			if redeemErr := s.promoRepo.Redeem(sessCtx, promo.Code); redeemErr != nil {
				return pricingservice.MapPromoError(redeemErr, promo.Code)
			}
		}
		if createErr := s.repo.Create(sessCtx, booking); createErr != nil {
			return apperrors.Internal("Failed to create booking", createErr)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to create booking", "error", err)
		return err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"customer_id", booking.CustomerID,
		"property_id", booking.PropertyID,
		"service_type_id", booking.ServiceTypeID,
		"total_cents", booking.Pricing.TotalCents,
	)
	return nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}

	return booking, nil
}

func (s *bookingService) GetByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, int64, error) {
	if customerID == "" {
		return nil, 0, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	bookings, err := s.repo.FindByCustomer(ctx, customerID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to retrieve bookings", err)
	}
	count, err := s.repo.CountByCustomer(ctx, customerID)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count bookings", err)
	}

	return bookings, count, nil
}

// Cancel moves the booking to cancelled and, when a provider had been
// matched, releases the booked slot in the same transaction.
func (s *bookingService) Cancel(ctx context.Context, id string) error {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !state.CanTransition(booking.Status, model.StatusCancelled) {
		return apperrors.Conflict("Booking in status " + booking.Status + " cannot be cancelled")
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if updateErr := s.repo.UpdateStatus(sessCtx, id, booking.Status, model.StatusCancelled); updateErr != nil {
			if errors.Is(updateErr, bookingserrors.ErrStatusChanged) {
				return apperrors.Conflict("Booking status changed while cancelling; reload and retry")
			}
			return apperrors.Internal("Failed to cancel booking", updateErr)
		}
		if booking.ProviderID != "" && booking.ChosenSlot != nil {
			if releaseErr := s.availability.ReleaseSlot(sessCtx, booking.ProviderID, *booking.ChosenSlot, booking.ID); releaseErr != nil {
				return releaseErr
			}
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to cancel booking", "id", id, "error", err)
		return err
	}

	s.publisher.Publish(ctx, notify.EventBookingCancelled, booking.ID, notify.BookingCancelledEvent{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
	})

	s.cfg.Log.Info("Booking cancelled", "id", id, "released_provider", booking.ProviderID)
	return nil
}

func (s *bookingService) Progress(ctx context.Context, id string, toStatus string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if toStatus == model.StatusCancelled {
		// Cancellation has its own slot-release path.
		return nil, apperrors.InvalidInput("Use the cancel operation to cancel a booking")
	}
	if toStatus == model.StatusMatched || toStatus == model.StatusAwaitingMatch {
		return nil, apperrors.InvalidInput("Matching transitions are driven by offer acceptance, not status events")
	}
	if err := state.Transition(booking.Status, toStatus); err != nil {
		return nil, apperrors.Conflict(err.Error())
	}

	if err := s.repo.UpdateStatus(ctx, id, booking.Status, toStatus); err != nil {
		if errors.Is(err, bookingserrors.ErrStatusChanged) {
			return nil, apperrors.Conflict("Booking status changed concurrently; reload and retry")
		}
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	s.publisher.Publish(ctx, notify.EventBookingStatusChanged, booking.ID, notify.BookingStatusChangedEvent{
		BookingID:  booking.ID,
		CustomerID: booking.CustomerID,
		ProviderID: booking.ProviderID,
		FromStatus: booking.Status,
		ToStatus:   toStatus,
	})

	s.cfg.Log.Info("Booking status updated", "id", id, "from", booking.Status, "to", toStatus)
	return s.GetByID(ctx, id)
}

// --- Helpers ---

func (s *bookingService) sanitize(b *model.Booking) {
	b.CustomerID = sanitizer.NormalizeID(b.CustomerID)
	b.PropertyID = sanitizer.NormalizeID(b.PropertyID)
	b.ServiceTypeID = sanitizer.NormalizeID(b.ServiceTypeID)
	b.AddOnIDs = sanitizer.NormalizeIDs(b.AddOnIDs)
	b.PromoCode = sanitizer.NormalizeID(b.PromoCode)
	b.Notes = sanitizer.NormalizeNotes(b.Notes)
}

// checkCandidateWindow applies the same date window the availability
// ledger enforces, so a booking can never carry a candidate slot no
// provider could have opened.
func (s *bookingService) checkCandidateWindow(candidates []model.CandidateSlot) error {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	horizon := today.AddDate(0, 0, 7*s.cfg.HorizonWeeks)

	for _, c := range candidates {
		day, err := time.Parse(model.SlotDateLayout, c.Date)
		if err != nil {
			return apperrors.InvalidInput("Invalid candidate date: " + c.Date)
		}
		if day.Before(today) {
			return apperrors.InvalidInput("Candidate date is in the past: " + c.Date)
		}
		if day.After(horizon) {
			return apperrors.InvalidInput("Candidate date is beyond the scheduling horizon: " + c.Date)
		}
	}
	return nil
}
