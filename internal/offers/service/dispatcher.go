package service

import (
	"context"
	"errors"
	"time"

	availabilityerrors "sudsy/internal/availability/errors"
	availabilityrepo "sudsy/internal/availability/repository"
	bookingserrors "sudsy/internal/bookings/errors"
	bookingsrepo "sudsy/internal/bookings/repository"
	matchingservice "sudsy/internal/matching/service"
	"sudsy/internal/notify"
	offerserrors "sudsy/internal/offers/errors"
	"sudsy/internal/offers/repository"
	"sudsy/pkg/config"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// awaitingMatchScanLimit caps how many open bookings one offer-feed
// request evaluates.
const awaitingMatchScanLimit = 200

// Offer is the ephemeral provider-facing view of an awaiting-match
// booking. It is derived on read and never persisted; acceptance acts
// on the booking and slot directly.
type Offer struct {
	Booking       *model.Booking `json:"booking"`
	DistanceMiles float64        `json:"distance_miles"`
	MatchScore    float64        `json:"match_score"`
	// ExpiresAt is display guidance only; the engine does not enforce
	// offer expiry.
	ExpiresAt time.Time `json:"expires_at"`
}

// BroadcastResult reports who an offer went out to.
type BroadcastResult struct {
	BookingID   string    `json:"booking_id"`
	ProviderIDs []string  `json:"provider_ids"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type OfferService interface {
	// Broadcast opens a placed booking to its eligible providers and
	// emits the fire-and-forget notification. Re-broadcasting an
	// awaiting_match booking is allowed; it just recomputes eligibility.
	Broadcast(ctx context.Context, bookingID string) (*BroadcastResult, error)
	// ListForProvider builds the provider's current offer feed.
	ListForProvider(ctx context.Context, providerID string) ([]Offer, error)
	// Accept is the single serialization point for matching: at most
	// one call ever succeeds per booking, losers get a terminal
	// conflict.
	Accept(ctx context.Context, bookingID, providerID string, chosen model.CandidateSlot) (*model.Booking, error)
	// Decline hides the offer from this provider's feed. Booking state
	// is untouched.
	Decline(ctx context.Context, bookingID, providerID string) error
}

type offerService struct {
	bookings bookingsrepo.BookingRepository
	slots    availabilityrepo.SlotRepository
	locks    repository.SlotLockRepository
	declines repository.DeclineRepository
	matcher  matchingservice.MatcherService
	notifier notify.Publisher
	cfg      *config.Config
}

func NewOfferService(
	bookings bookingsrepo.BookingRepository,
	slots availabilityrepo.SlotRepository,
	locks repository.SlotLockRepository,
	declines repository.DeclineRepository,
	matcher matchingservice.MatcherService,
	notifier notify.Publisher,
	cfg *config.Config,
) OfferService {
	return &offerService{
		bookings: bookings,
		slots:    slots,
		locks:    locks,
		declines: declines,
		matcher:  matcher,
		notifier: notifier,
		cfg:      cfg,
	}
}

func (s *offerService) Broadcast(ctx context.Context, bookingID string) (*BroadcastResult, error) {
	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.StatusPlaced:
		if err := s.bookings.UpdateStatus(ctx, bookingID, model.StatusPlaced, model.StatusAwaitingMatch); err != nil {
			if errors.Is(err, bookingserrors.ErrStatusChanged) {
				return nil, apperrors.Conflict("Booking status changed while broadcasting; reload and retry")
			}
			return nil, apperrors.Internal("Failed to open booking for matching", err)
		}
		booking.Status = model.StatusAwaitingMatch
	case model.StatusAwaitingMatch:
		// Recompute and re-notify.
	default:
		return nil, apperrors.Conflict("Booking in status " + booking.Status + " cannot be broadcast")
	}

	candidates, err := s.matcher.FindEligible(ctx, booking)
	if err != nil {
		return nil, err
	}

	providerIDs := make([]string, 0, len(candidates))
	for _, c := range candidates {
		if !s.hasOpenCandidateSlot(ctx, c.Provider.ID, booking.Candidates) {
			continue
		}
		providerIDs = append(providerIDs, c.Provider.ID)
	}
	expiresAt := time.Now().UTC().Add(time.Duration(s.cfg.OfferExpiryMinutes) * time.Minute)

	// No eligible providers is a valid outcome; the booking simply
	// stays awaiting_match with nobody notified.
	if len(providerIDs) > 0 {
		s.notifier.Publish(ctx, notify.EventOfferBroadcast, booking.ID, notify.OfferBroadcastEvent{
			BookingID:     booking.ID,
			ServiceTypeID: booking.ServiceTypeID,
			Candidates:    booking.Candidates,
			ProviderIDs:   providerIDs,
			ExpiresAt:     expiresAt,
		})
	}

	s.cfg.Log.Info("Offer broadcast",
		"booking_id", booking.ID,
		"eligible_providers", len(providerIDs),
	)
	return &BroadcastResult{BookingID: booking.ID, ProviderIDs: providerIDs, ExpiresAt: expiresAt}, nil
}

func (s *offerService) ListForProvider(ctx context.Context, providerID string) ([]Offer, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}

	declines, err := s.declines.FindByProvider(ctx, providerID)
	if err != nil {
		return nil, apperrors.Internal("Failed to load declined offers", err)
	}
	declined := make(map[string]bool, len(declines))
	for _, d := range declines {
		declined[d.BookingID] = true
	}

	open, err := s.bookings.FindAwaitingMatch(ctx, awaitingMatchScanLimit)
	if err != nil {
		return nil, apperrors.Internal("Failed to load open bookings", err)
	}

	expiresAt := time.Now().UTC().Add(time.Duration(s.cfg.OfferExpiryMinutes) * time.Minute)
	offers := make([]Offer, 0, len(open))
	for _, booking := range open {
		if declined[booking.ID] {
			continue
		}
		candidates, err := s.matcher.FindEligible(ctx, booking)
		if err != nil {
			s.cfg.Log.Warn("Skipping booking in offer feed", "booking_id", booking.ID, "error", err)
			continue
		}
		for _, c := range candidates {
			if c.Provider.ID == providerID {
				if s.hasOpenCandidateSlot(ctx, providerID, booking.Candidates) {
					offers = append(offers, Offer{
						Booking:       booking,
						DistanceMiles: c.DistanceMiles,
						MatchScore:    c.MatchScore,
						ExpiresAt:     expiresAt,
					})
				}
				break
			}
		}
	}

	return offers, nil
}

func (s *offerService) Accept(ctx context.Context, bookingID, providerID string, chosen model.CandidateSlot) (*model.Booking, error) {
	if bookingID == "" || providerID == "" {
		return nil, apperrors.InvalidInput("Booking ID and provider ID are required")
	}

	booking, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	switch booking.Status {
	case model.StatusAwaitingMatch:
	case model.StatusMatched:
		return nil, apperrors.Conflict("Booking has already been matched")
	default:
		return nil, apperrors.Conflict("Booking in status " + booking.Status + " is not accepting offers")
	}

	if !booking.HasCandidate(chosen) {
		return nil, apperrors.InvalidInput("Chosen date and shift are not among the booking's candidate slots")
	}

	// Eligibility can drift between broadcast and accept; re-check now.
	if err := s.matcher.VerifyEligible(ctx, booking, providerID); err != nil {
		return nil, err
	}

	// Advisory lock on the provider slot serializes acceptance attempts
	// before the transaction runs its compare-and-swaps.
	lockID := model.SlotKey(providerID, chosen.Date, chosen.Shift)
	err = s.locks.Create(ctx, &model.SlotLock{
		ID:        lockID,
		OwnerID:   bookingID,
		ExpiresAt: time.Now().UTC().Add(s.cfg.AcceptLockTTL),
	})
	if err != nil {
		if errors.Is(err, offerserrors.ErrLockHeld) {
			return nil, apperrors.Conflict("This slot is currently being accepted by another request")
		}
		return nil, apperrors.Internal("Failed to acquire slot lock", err)
	}
	defer func() {
		if releaseErr := s.locks.Delete(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release slot lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	// The slot flip and the booking match commit or roll back together;
	// a loser can never leave a half-applied acceptance behind.
	err = s.bookings.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if bookErr := s.slots.Book(sessCtx, providerID, chosen.Date, chosen.Shift, bookingID); bookErr != nil {
			if errors.Is(bookErr, availabilityerrors.ErrSlotUnavailable) {
				return apperrors.Conflict("The chosen slot is no longer available")
			}
			return apperrors.Internal("Failed to book slot", bookErr)
		}
		if matchErr := s.bookings.Match(sessCtx, bookingID, providerID, chosen); matchErr != nil {
			if errors.Is(matchErr, bookingserrors.ErrStatusChanged) {
				return apperrors.Conflict("Booking has already been matched")
			}
			return apperrors.Internal("Failed to match booking", matchErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	matched, err := s.loadBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.notifyMatched(ctx, matched)

	s.cfg.Log.Info("Offer accepted",
		"booking_id", bookingID,
		"provider_id", providerID,
		"date", chosen.Date,
		"shift", chosen.Shift,
	)
	return matched, nil
}

func (s *offerService) Decline(ctx context.Context, bookingID, providerID string) error {
	if bookingID == "" || providerID == "" {
		return apperrors.InvalidInput("Booking ID and provider ID are required")
	}

	err := s.declines.Save(ctx, &model.OfferDecline{
		BookingID:  bookingID,
		ProviderID: providerID,
	})
	if err != nil {
		return apperrors.Internal("Failed to record decline", err)
	}

	s.cfg.Log.Info("Offer declined", "booking_id", bookingID, "provider_id", providerID)
	return nil
}

// hasOpenCandidateSlot reports whether at least one of the booking's
// candidate slots is still open on the provider's calendar. A slot with
// no document is implicitly available. This is a visibility filter
// only; the accept-time compare-and-swap remains the hard guarantee.
func (s *offerService) hasOpenCandidateSlot(ctx context.Context, providerID string, candidates []model.CandidateSlot) bool {
	for _, c := range candidates {
		slot, err := s.slots.Find(ctx, providerID, c.Date, c.Shift)
		if err != nil {
			if errors.Is(err, availabilityerrors.ErrSlotNotFound) {
				return true
			}
			// Fail open on lookup errors rather than hiding offers.
			s.cfg.Log.Warn("Slot lookup failed, treating as open",
				"provider_id", providerID, "date", c.Date, "shift", c.Shift, "error", err)
			return true
		}
		if slot.Status == model.SlotAvailable {
			return true
		}
	}
	return false
}

func (s *offerService) loadBooking(ctx context.Context, bookingID string) (*model.Booking, error) {
	booking, err := s.bookings.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", bookingID)
		}
		return nil, apperrors.Internal("Failed to load booking", err)
	}
	return booking, nil
}

// notifyMatched tells the customer the job is confirmed and the losing
// providers that it is gone. Best effort only.
func (s *offerService) notifyMatched(ctx context.Context, booking *model.Booking) {
	var losers []string
	if candidates, err := s.matcher.FindEligible(ctx, booking); err == nil {
		for _, c := range candidates {
			if c.Provider.ID != booking.ProviderID {
				losers = append(losers, c.Provider.ID)
			}
		}
	}

	event := notify.BookingMatchedEvent{
		BookingID:         booking.ID,
		CustomerID:        booking.CustomerID,
		ProviderID:        booking.ProviderID,
		LosingProviderIDs: losers,
	}
	if booking.ChosenSlot != nil {
		event.ChosenSlot = *booking.ChosenSlot
	}
	s.notifier.Publish(ctx, notify.EventBookingMatched, booking.ID, event)
}
