package service

import (
	"context"
	"errors"
	availabilityerrors "sudsy/internal/availability/errors"
	"sudsy/internal/availability/repository"
	"sudsy/pkg/config"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/model"
	"time"
)

// BlockRangeResult reports a bulk block outcome. Booked slots are
// skipped, not failed, so providers can block a vacation window without
// first cancelling jobs.
type BlockRangeResult struct {
	Blocked int `json:"blocked"`
	Skipped int `json:"skipped"`
}

type AvailabilityService interface {
	GetCalendar(ctx context.Context, providerID string, fromDate, toDate string) ([]*model.AvailabilitySlot, error)
	SetStatus(ctx context.Context, providerID, date, shift, status string) error
	BlockRange(ctx context.Context, providerID, fromDate, toDate string, shifts []string) (*BlockRangeResult, error)
	// ReleaseSlot returns a booked slot to available when its owning
	// booking is cancelled. Called by the booking service, not exposed
	// over HTTP.
	ReleaseSlot(ctx context.Context, providerID string, slot model.CandidateSlot, bookingID string) error
}

type availabilityService struct {
	repo repository.SlotRepository
	cfg  *config.Config
	now  func() time.Time
}

func NewAvailabilityService(repo repository.SlotRepository, cfg *config.Config) AvailabilityService {
	return &availabilityService{
		repo: repo,
		cfg:  cfg,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *availabilityService) GetCalendar(ctx context.Context, providerID string, fromDate, toDate string) ([]*model.AvailabilitySlot, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	for _, d := range []string{fromDate, toDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse(model.SlotDateLayout, d); err != nil {
			return nil, apperrors.InvalidInput("Invalid date: " + d)
		}
	}

	slots, err := s.repo.FindByProvider(ctx, providerID, fromDate, toDate)
	if err != nil {
		return nil, apperrors.Internal("Failed to load availability", err)
	}
	return slots, nil
}

func (s *availabilityService) SetStatus(ctx context.Context, providerID, date, shift, status string) error {
	if providerID == "" {
		return apperrors.InvalidInput("Provider ID cannot be empty")
	}
	if status != model.SlotAvailable && status != model.SlotBlocked {
		// "booked" is derived; providers can never set it directly.
		return apperrors.InvalidInput("Status must be available or blocked")
	}
	if err := s.checkSlot(date, shift); err != nil {
		return err
	}

	if err := s.repo.SetStatus(ctx, providerID, date, shift, status); err != nil {
		if errors.Is(err, availabilityerrors.ErrCannotModifyBookedSlot) {
			return apperrors.Conflict("Slot is booked and cannot be modified until the booking is cancelled or completed")
		}
		s.cfg.Log.Error("Failed to set slot status", "provider_id", providerID, "date", date, "shift", shift, "error", err)
		return apperrors.Internal("Failed to update availability", err)
	}

	s.cfg.Log.Info("Slot status updated", "provider_id", providerID, "date", date, "shift", shift, "status", status)
	return nil
}

func (s *availabilityService) BlockRange(ctx context.Context, providerID, fromDate, toDate string, shifts []string) (*BlockRangeResult, error) {
	if providerID == "" {
		return nil, apperrors.InvalidInput("Provider ID cannot be empty")
	}
	if len(shifts) == 0 {
		shifts = []string{model.ShiftMorning, model.ShiftAfternoon, model.ShiftEvening}
	}
	for _, shift := range shifts {
		if !validShift(shift) {
			return nil, apperrors.InvalidInput("Unknown shift: " + shift)
		}
	}

	from, err := time.Parse(model.SlotDateLayout, fromDate)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid from date: " + fromDate)
	}
	to, err := time.Parse(model.SlotDateLayout, toDate)
	if err != nil {
		return nil, apperrors.InvalidInput("Invalid to date: " + toDate)
	}
	if to.Before(from) {
		return nil, apperrors.InvalidInput("Range end must not precede range start")
	}

	// Both endpoints must respect the same per-slot date rules.
	if err := s.checkDate(from); err != nil {
		return nil, s.mapDateError(err, fromDate)
	}
	if err := s.checkDate(to); err != nil {
		return nil, s.mapDateError(err, toDate)
	}

	result := &BlockRangeResult{}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		date := day.Format(model.SlotDateLayout)
		for _, shift := range shifts {
			err := s.repo.SetStatus(ctx, providerID, date, shift, model.SlotBlocked)
			if err != nil {
				if errors.Is(err, availabilityerrors.ErrCannotModifyBookedSlot) {
					result.Skipped++
					continue
				}
				s.cfg.Log.Error("Failed to block slot", "provider_id", providerID, "date", date, "shift", shift, "error", err)
				return nil, apperrors.Internal("Failed to block availability range", err)
			}
			result.Blocked++
		}
	}

	s.cfg.Log.Info("Availability range blocked",
		"provider_id", providerID,
		"from", fromDate,
		"to", toDate,
		"blocked", result.Blocked,
		"skipped_booked", result.Skipped,
	)
	return result, nil
}

func (s *availabilityService) ReleaseSlot(ctx context.Context, providerID string, slot model.CandidateSlot, bookingID string) error {
	err := s.repo.Release(ctx, providerID, slot.Date, slot.Shift, bookingID)
	if err != nil {
		if errors.Is(err, availabilityerrors.ErrSlotNotFound) {
			// The slot is not held by this booking; nothing to release.
			s.cfg.Log.Warn("Release found no matching booked slot",
				"provider_id", providerID,
				"date", slot.Date,
				"shift", slot.Shift,
				"booking_id", bookingID,
			)
			return nil
		}
		return apperrors.Internal("Failed to release slot", err)
	}

	s.cfg.Log.Info("Slot released", "provider_id", providerID, "date", slot.Date, "shift", slot.Shift, "booking_id", bookingID)
	return nil
}

// checkSlot validates shift and applies the date window rules.
func (s *availabilityService) checkSlot(date, shift string) error {
	if !validShift(shift) {
		return apperrors.InvalidInput("Unknown shift: " + shift)
	}
	day, err := time.Parse(model.SlotDateLayout, date)
	if err != nil {
		return apperrors.InvalidInput("Invalid date: " + date)
	}
	if err := s.checkDate(day); err != nil {
		return s.mapDateError(err, date)
	}
	return nil
}

func (s *availabilityService) checkDate(day time.Time) error {
	today := s.now().Truncate(24 * time.Hour)
	if day.Before(today) {
		return availabilityerrors.ErrPastDate
	}
	horizon := today.AddDate(0, 0, 7*s.cfg.HorizonWeeks)
	if day.After(horizon) {
		return availabilityerrors.ErrOutOfHorizon
	}
	return nil
}

func (s *availabilityService) mapDateError(err error, date string) error {
	switch {
	case errors.Is(err, availabilityerrors.ErrPastDate):
		return apperrors.InvalidInput("Past dates are immutable: " + date)
	case errors.Is(err, availabilityerrors.ErrOutOfHorizon):
		return apperrors.InvalidInput("Date is beyond the scheduling horizon: " + date)
	default:
		return apperrors.Internal("Failed to validate date", err)
	}
}

func validShift(shift string) bool {
	switch shift {
	case model.ShiftMorning, model.ShiftAfternoon, model.ShiftEvening:
		return true
	}
	return false
}
