package validator

import (
	"fmt"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"
	"time"

	"github.com/go-playground/validator/v10"
)

type BookingValidator struct {
	validate *validator.Validate
	logger   *logger.Logger
}

func NewBookingValidator(log *logger.Logger) *BookingValidator {
	v := validator.New()

	log.Info("Booking validator initialized successfully")

	return &BookingValidator{
		validate: v,
		logger:   log,
	}
}

func (v *BookingValidator) Validate(booking *model.Booking) error {
	if err := v.validate.Struct(booking); err != nil {
		return err
	}
	return v.validateCandidates(booking.Candidates)
}

// validateCandidates enforces what struct tags cannot: distinct
// candidate pairs with parseable dates.
func (v *BookingValidator) validateCandidates(candidates []model.CandidateSlot) error {
	seen := make(map[model.CandidateSlot]bool, len(candidates))
	for _, c := range candidates {
		if _, err := time.Parse(model.SlotDateLayout, c.Date); err != nil {
			return fmt.Errorf("candidate date %q is not a valid %s date", c.Date, model.SlotDateLayout)
		}
		if seen[c] {
			return fmt.Errorf("duplicate candidate slot %s %s", c.Date, c.Shift)
		}
		seen[c] = true
	}
	return nil
}
