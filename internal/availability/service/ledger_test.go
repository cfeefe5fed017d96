package service

import (
	"context"
	"sync"
	availabilityerrors "sudsy/internal/availability/errors"
	"sudsy/pkg/config"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"
	"testing"
	"time"
)

// In-memory slot store with the same conditional-write semantics as the
// Mongo repository.
type memorySlotRepository struct {
	mu    sync.Mutex
	slots map[string]*model.AvailabilitySlot
}

func newMemorySlotRepository() *memorySlotRepository {
	return &memorySlotRepository{slots: make(map[string]*model.AvailabilitySlot)}
}

func (m *memorySlotRepository) Find(ctx context.Context, providerID, date, shift string) (*model.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	slot, ok := m.slots[model.SlotKey(providerID, date, shift)]
	if !ok {
		return nil, availabilityerrors.ErrSlotNotFound
	}
	copied := *slot
	return &copied, nil
}

func (m *memorySlotRepository) FindByProvider(ctx context.Context, providerID string, fromDate, toDate string) ([]*model.AvailabilitySlot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*model.AvailabilitySlot
	for _, slot := range m.slots {
		if slot.ProviderID != providerID {
			continue
		}
		if fromDate != "" && slot.Date < fromDate {
			continue
		}
		if toDate != "" && slot.Date > toDate {
			continue
		}
		copied := *slot
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memorySlotRepository) SetStatus(ctx context.Context, providerID, date, shift, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := model.SlotKey(providerID, date, shift)
	if existing, ok := m.slots[key]; ok && existing.Status == model.SlotBooked {
		return availabilityerrors.ErrCannotModifyBookedSlot
	}
	m.slots[key] = &model.AvailabilitySlot{
		ID: key, ProviderID: providerID, Date: date, Shift: shift, Status: status,
	}
	return nil
}

func (m *memorySlotRepository) Book(ctx context.Context, providerID, date, shift, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := model.SlotKey(providerID, date, shift)
	if existing, ok := m.slots[key]; ok && existing.Status != model.SlotAvailable {
		return availabilityerrors.ErrSlotUnavailable
	}
	m.slots[key] = &model.AvailabilitySlot{
		ID: key, ProviderID: providerID, Date: date, Shift: shift,
		Status: model.SlotBooked, BookingID: bookingID,
	}
	return nil
}

func (m *memorySlotRepository) Release(ctx context.Context, providerID, date, shift, bookingID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := model.SlotKey(providerID, date, shift)
	existing, ok := m.slots[key]
	if !ok || existing.Status != model.SlotBooked || existing.BookingID != bookingID {
		return availabilityerrors.ErrSlotNotFound
	}
	m.slots[key] = &model.AvailabilitySlot{
		ID: key, ProviderID: providerID, Date: date, Shift: shift, Status: model.SlotAvailable,
	}
	return nil
}

var testNow = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

func newTestService(repo *memorySlotRepository) *availabilityService {
	log := logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"})
	return &availabilityService{
		repo: repo,
		cfg:  &config.Config{Log: log, HorizonWeeks: 25},
		now:  func() time.Time { return testNow },
	}
}

func futureDate(days int) string {
	return testNow.AddDate(0, 0, days).Format(model.SlotDateLayout)
}

func TestSetStatusBlockAndReopen(t *testing.T) {
	repo := newMemorySlotRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	date := futureDate(3)

	if err := svc.SetStatus(ctx, "prov-1", date, model.ShiftMorning, model.SlotBlocked); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	slot, err := repo.Find(ctx, "prov-1", date, model.ShiftMorning)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.Status != model.SlotBlocked {
		t.Errorf("expected blocked, got %s", slot.Status)
	}

	if err := svc.SetStatus(ctx, "prov-1", date, model.ShiftMorning, model.SlotAvailable); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetStatusRejectsBookedSlot(t *testing.T) {
	repo := newMemorySlotRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	date := futureDate(3)

	if err := repo.Book(ctx, "prov-1", date, model.ShiftMorning, "bk-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, status := range []string{model.SlotAvailable, model.SlotBlocked} {
		err := svc.SetStatus(ctx, "prov-1", date, model.ShiftMorning, status)
		appErr := apperrors.AsAppError(err)
		if appErr == nil || appErr.Code != apperrors.CodeConflict {
			t.Errorf("status %s: expected conflict, got %v", status, err)
		}
	}
}

func TestSetStatusRejectsDirectBooked(t *testing.T) {
	svc := newTestService(newMemorySlotRepository())

	err := svc.SetStatus(context.Background(), "prov-1", futureDate(3), model.ShiftMorning, model.SlotBooked)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("providers must not set booked directly, got %v", err)
	}
}

func TestSetStatusDateWindow(t *testing.T) {
	svc := newTestService(newMemorySlotRepository())
	ctx := context.Background()

	err := svc.SetStatus(ctx, "prov-1", futureDate(-1), model.ShiftMorning, model.SlotBlocked)
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected past date rejection, got %v", err)
	}

	err = svc.SetStatus(ctx, "prov-1", futureDate(25*7+1), model.ShiftMorning, model.SlotBlocked)
	if appErr := apperrors.AsAppError(err); appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected out-of-horizon rejection, got %v", err)
	}

	if err := svc.SetStatus(ctx, "prov-1", futureDate(25*7), model.ShiftMorning, model.SlotBlocked); err != nil {
		t.Errorf("horizon boundary date should be accepted, got %v", err)
	}
}

func TestBlockRangeSkipsBookedSlots(t *testing.T) {
	repo := newMemorySlotRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if err := repo.Book(ctx, "prov-1", futureDate(2), model.ShiftAfternoon, "bk-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	result, err := svc.BlockRange(ctx, "prov-1", futureDate(1), futureDate(3), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 3 days x 3 shifts, one already booked.
	if result.Blocked != 8 {
		t.Errorf("expected 8 blocked, got %d", result.Blocked)
	}
	if result.Skipped != 1 {
		t.Errorf("expected 1 skipped, got %d", result.Skipped)
	}

	slot, err := repo.Find(ctx, "prov-1", futureDate(2), model.ShiftAfternoon)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot.Status != model.SlotBooked || slot.BookingID != "bk-1" {
		t.Errorf("booked slot must survive the bulk block, got %+v", slot)
	}
}

func TestReleaseSlotRestoresToggling(t *testing.T) {
	repo := newMemorySlotRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	date := futureDate(4)
	slot := model.CandidateSlot{Date: date, Shift: model.ShiftEvening}

	if err := repo.Book(ctx, "prov-1", date, model.ShiftEvening, "bk-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ReleaseSlot(ctx, "prov-1", slot, "bk-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := repo.Find(ctx, "prov-1", date, model.ShiftEvening)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stored.Status != model.SlotAvailable {
		t.Errorf("expected available after release, got %s", stored.Status)
	}
	if stored.BookingID != "" {
		t.Errorf("expected booking reference cleared, got %s", stored.BookingID)
	}

	if err := svc.SetStatus(ctx, "prov-1", date, model.ShiftEvening, model.SlotBlocked); err != nil {
		t.Errorf("released slot must be toggleable again, got %v", err)
	}
}

func TestReleaseSlotWrongBookingIsNoop(t *testing.T) {
	repo := newMemorySlotRepository()
	svc := newTestService(repo)
	ctx := context.Background()
	date := futureDate(4)

	if err := repo.Book(ctx, "prov-1", date, model.ShiftEvening, "bk-9"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := svc.ReleaseSlot(ctx, "prov-1", model.CandidateSlot{Date: date, Shift: model.ShiftEvening}, "other"); err != nil {
		t.Fatalf("release with wrong booking must be a logged no-op, got %v", err)
	}

	stored, _ := repo.Find(ctx, "prov-1", date, model.ShiftEvening)
	if stored.Status != model.SlotBooked || stored.BookingID != "bk-9" {
		t.Errorf("slot must be untouched, got %+v", stored)
	}
}
