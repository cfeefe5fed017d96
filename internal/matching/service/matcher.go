package service

import (
	"context"
	"errors"
	"sort"
	directoryerrors "sudsy/internal/directory/errors"
	directoryrepo "sudsy/internal/directory/repository"
	"sudsy/pkg/config"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/geo"
	"sudsy/pkg/model"
)

// ratingWeight converts a 0..5 rating into score points. Distance
// subtracts a point per mile, so a full rating gap outweighs roughly a
// hundred miles. Tunable policy, not an invariant.
const ratingWeight = 20.0

// Candidate is one eligible provider with the metrics it was ranked by.
type Candidate struct {
	Provider      *model.Provider `json:"provider"`
	DistanceMiles float64         `json:"distance_miles"`
	MatchScore    float64         `json:"match_score"`
}

// Eligible applies the hard filters for one provider against a job
// location and service type. It returns the great-circle distance when
// the provider passes. Failing any filter excludes, never penalizes.
func Eligible(provider *model.Provider, serviceTypeID string, lat, lng float64) (float64, bool) {
	if provider.Status != model.ProviderActive {
		return 0, false
	}
	if !provider.SupportsServiceType(serviceTypeID) {
		return 0, false
	}
	distance := geo.DistanceMiles(lat, lng, provider.BaseLat, provider.BaseLng)
	if distance > provider.ServiceRadius {
		return 0, false
	}
	return distance, true
}

// Rank filters providers through the hard filters and orders the
// survivors closest first, provider id breaking ties. The score is
// deterministic, never increases with distance and never decreases
// with rating. An empty result is a normal outcome, not an error.
func Rank(serviceTypeID string, lat, lng float64, providers []*model.Provider) []Candidate {
	candidates := make([]Candidate, 0, len(providers))
	for _, p := range providers {
		distance, ok := Eligible(p, serviceTypeID, lat, lng)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{
			Provider:      p,
			DistanceMiles: distance,
			MatchScore:    p.Rating*ratingWeight - distance,
		})
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].DistanceMiles != candidates[j].DistanceMiles {
			return candidates[i].DistanceMiles < candidates[j].DistanceMiles
		}
		return candidates[i].Provider.ID < candidates[j].Provider.ID
	})

	return candidates
}

type MatcherService interface {
	// FindEligible returns the ranked snapshot of providers allowed to
	// see and accept the booking right now.
	FindEligible(ctx context.Context, booking *model.Booking) ([]Candidate, error)
	// VerifyEligible re-applies the hard filters for a single provider
	// at accept time, when eligibility may have drifted since broadcast.
	VerifyEligible(ctx context.Context, booking *model.Booking, providerID string) error
}

type matcherService struct {
	providers  directoryrepo.ProviderRepository
	properties directoryrepo.PropertyRepository
	cfg        *config.Config
}

func NewMatcherService(
	providers directoryrepo.ProviderRepository,
	properties directoryrepo.PropertyRepository,
	cfg *config.Config,
) MatcherService {
	return &matcherService{
		providers:  providers,
		properties: properties,
		cfg:        cfg,
	}
}

func (s *matcherService) FindEligible(ctx context.Context, booking *model.Booking) ([]Candidate, error) {
	property, err := s.loadProperty(ctx, booking.PropertyID)
	if err != nil {
		return nil, err
	}

	providers, err := s.providers.FindActive(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to load active providers", err)
	}

	candidates := Rank(booking.ServiceTypeID, property.Address.Lat, property.Address.Lng, providers)

	s.cfg.Log.Debug("Eligibility computed",
		"booking_id", booking.ID,
		"active_providers", len(providers),
		"eligible", len(candidates),
	)
	return candidates, nil
}

func (s *matcherService) VerifyEligible(ctx context.Context, booking *model.Booking, providerID string) error {
	property, err := s.loadProperty(ctx, booking.PropertyID)
	if err != nil {
		return err
	}

	provider, err := s.providers.FindByID(ctx, providerID)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrProviderNotFound) {
			return apperrors.NotFoundWithID("Provider", providerID)
		}
		return apperrors.Internal("Failed to load provider", err)
	}

	if _, ok := Eligible(provider, booking.ServiceTypeID, property.Address.Lat, property.Address.Lng); !ok {
		return apperrors.Forbidden("Provider is no longer eligible for this booking")
	}
	return nil
}

func (s *matcherService) loadProperty(ctx context.Context, propertyID string) (*model.Property, error) {
	property, err := s.properties.FindByID(ctx, propertyID)
	if err != nil {
		if errors.Is(err, directoryerrors.ErrPropertyNotFound) {
			return nil, apperrors.NotFoundWithID("Property", propertyID)
		}
		return nil, apperrors.Internal("Failed to load property", err)
	}
	return property, nil
}
