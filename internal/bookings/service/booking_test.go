package service

import (
	"context"
	"errors"
	availabilityservice "sudsy/internal/availability/service"
	"sudsy/internal/bookings/validator"
	"sudsy/internal/catalog"
	"sudsy/internal/notify"
	pricingerrors "sudsy/internal/pricing/errors"
	pricingservice "sudsy/internal/pricing/service"
	"sudsy/pkg/config"
	mongotx "sudsy/pkg/db/mongo"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"
	"testing"
	"time"
)

type mockBookingRepository struct {
	created      []*model.Booking
	findByIDFunc func(ctx context.Context, id string) (*model.Booking, error)
	updates      [][3]string
	updateErr    error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if booking.ID == "" {
		booking.ID = "bk-test"
	}
	m.created = append(m.created, booking)
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, errors.New("not stubbed")
}

func (m *mockBookingRepository) FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) FindAwaitingMatch(ctx context.Context, limit int) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus string) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.updates = append(m.updates, [3]string{id, fromStatus, toStatus})
	return nil
}

func (m *mockBookingRepository) Match(ctx context.Context, id string, providerID string, slot model.CandidateSlot) error {
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return fn(nil)
}

type mockPromoRepository struct {
	promos    map[string]*model.PromoCode
	redeemed  []string
	redeemErr error
}

func (m *mockPromoRepository) Create(ctx context.Context, promo *model.PromoCode) error { return nil }

func (m *mockPromoRepository) FindByCode(ctx context.Context, code string) (*model.PromoCode, error) {
	if p, ok := m.promos[code]; ok {
		return p, nil
	}
	return nil, pricingerrors.ErrPromoNotFound
}

func (m *mockPromoRepository) Redeem(ctx context.Context, code string) error {
	if m.redeemErr != nil {
		return m.redeemErr
	}
	m.redeemed = append(m.redeemed, code)
	return nil
}

type mockPropertyRepository struct {
	properties map[string]*model.Property
}

func (m *mockPropertyRepository) Create(ctx context.Context, property *model.Property) error {
	return nil
}

func (m *mockPropertyRepository) FindByID(ctx context.Context, id string) (*model.Property, error) {
	if p, ok := m.properties[id]; ok {
		return p, nil
	}
	return nil, errors.New("property not found")
}

func (m *mockPropertyRepository) FindByOwner(ctx context.Context, ownerID string) ([]*model.Property, error) {
	return nil, nil
}

type mockAvailability struct {
	released []string
}

func (m *mockAvailability) GetCalendar(ctx context.Context, providerID string, fromDate, toDate string) ([]*model.AvailabilitySlot, error) {
	return nil, nil
}

func (m *mockAvailability) SetStatus(ctx context.Context, providerID, date, shift, status string) error {
	return nil
}

func (m *mockAvailability) BlockRange(ctx context.Context, providerID, fromDate, toDate string, shifts []string) (*availabilityservice.BlockRangeResult, error) {
	return nil, nil
}

func (m *mockAvailability) ReleaseSlot(ctx context.Context, providerID string, slot model.CandidateSlot, bookingID string) error {
	m.released = append(m.released, model.SlotKey(providerID, slot.Date, slot.Shift))
	return nil
}

type capturingPublisher struct {
	events []string
}

func (p *capturingPublisher) Publish(ctx context.Context, eventType string, key string, payload any) {
	p.events = append(p.events, eventType)
}

func (p *capturingPublisher) Close() error { return nil }

func testConfig() *config.Config {
	return &config.Config{
		Log:          logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}),
		HorizonWeeks: 25,
	}
}

func testEngine() *pricingservice.Engine {
	cat := catalog.New(
		[]model.ServiceType{{ID: "standard", RateCentsPerSqft: 10}},
		[]model.AddOn{{ID: "inside_oven", FlatPriceCents: 2500}},
		nil,
	)
	return pricingservice.NewEngine(cat, 800, 2000, 1000)
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(model.SlotDateLayout)
}

func newBookingFixture() *model.Booking {
	return &model.Booking{
		CustomerID:       "cust-1",
		PropertyID:       "prop-1",
		ServiceTypeID:    "standard",
		Candidates:       []model.CandidateSlot{{Date: futureDate(7), Shift: model.ShiftMorning}},
		PaymentAuthToken: "auth-token",
	}
}

type fixture struct {
	svc       BookingService
	repo      *mockBookingRepository
	promos    *mockPromoRepository
	avail     *mockAvailability
	publisher *capturingPublisher
}

func newFixture() *fixture {
	cfg := testConfig()
	repo := &mockBookingRepository{}
	promos := &mockPromoRepository{promos: map[string]*model.PromoCode{
		"SPRING10": {
			Code:         "SPRING10",
			DiscountType: model.DiscountPercentage,
			Value:        10,
			ExpiresAt:    time.Now().Add(24 * time.Hour),
			MaxUses:      100,
		},
	}}
	properties := &mockPropertyRepository{properties: map[string]*model.Property{
		"prop-1": {ID: "prop-1", OwnerID: "cust-1", Sqft: 2000, Address: model.Address{City: "Austin"}},
	}}
	avail := &mockAvailability{}
	publisher := &capturingPublisher{}
	engine := testEngine()

	svc := NewBookingService(
		repo,
		promos,
		properties,
		avail,
		engine,
		pricingservice.NewPromoValidator(promos),
		validator.NewBookingValidator(cfg.Log),
		publisher,
		cfg,
	)
	return &fixture{svc: svc, repo: repo, promos: promos, avail: avail, publisher: publisher}
}

func TestCreateSnapshotsPricing(t *testing.T) {
	f := newFixture()
	booking := newBookingFixture()

	if err := f.svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booking.Status != model.StatusPlaced {
		t.Errorf("expected status placed, got %s", booking.Status)
	}
	if booking.Pricing == nil {
		t.Fatal("expected pricing snapshot")
	}
	if booking.Pricing.TotalCents != 21600 {
		t.Errorf("expected total 21600, got %d", booking.Pricing.TotalCents)
	}
	if len(f.repo.created) != 1 {
		t.Errorf("expected 1 created booking, got %d", len(f.repo.created))
	}
}

func TestCreateRedeemsPromoInTransaction(t *testing.T) {
	f := newFixture()
	booking := newBookingFixture()
	booking.PromoCode = "SPRING10"

	if err := f.svc.Create(context.Background(), booking); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.promos.redeemed) != 1 || f.promos.redeemed[0] != "SPRING10" {
		t.Errorf("expected SPRING10 redeemed once, got %v", f.promos.redeemed)
	}
	if booking.Pricing.DiscountCents != 2000 {
		t.Errorf("expected discount 2000, got %d", booking.Pricing.DiscountCents)
	}
}

func TestCreateFailsWhenRedeemLosesRace(t *testing.T) {
	f := newFixture()
	f.promos.redeemErr = pricingerrors.ErrPromoExhausted
	booking := newBookingFixture()
	booking.PromoCode = "SPRING10"

	err := f.svc.Create(context.Background(), booking)
	if err == nil {
		t.Fatal("expected error when promo redemption loses the race")
	}
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Errorf("expected validation error, got %v", err)
	}
}

func TestCreateRequiresPaymentAuth(t *testing.T) {
	f := newFixture()
	booking := newBookingFixture()
	booking.PaymentAuthToken = ""

	err := f.svc.Create(context.Background(), booking)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}

func TestCreateRejectsPastCandidate(t *testing.T) {
	f := newFixture()
	booking := newBookingFixture()
	booking.Candidates = []model.CandidateSlot{{Date: futureDate(-3), Shift: model.ShiftMorning}}

	err := f.svc.Create(context.Background(), booking)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input for past candidate, got %v", err)
	}
}

func TestCancelReleasesBookedSlot(t *testing.T) {
	f := newFixture()
	slot := model.CandidateSlot{Date: futureDate(7), Shift: model.ShiftMorning}
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{
			ID:         id,
			CustomerID: "cust-1",
			ProviderID: "prov-1",
			ChosenSlot: &slot,
			Status:     model.StatusMatched,
		}, nil
	}

	if err := f.svc.Cancel(context.Background(), "bk-1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := model.SlotKey("prov-1", slot.Date, slot.Shift)
	if len(f.avail.released) != 1 || f.avail.released[0] != expected {
		t.Errorf("expected slot %s released, got %v", expected, f.avail.released)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != notify.EventBookingCancelled {
		t.Errorf("expected cancelled event, got %v", f.publisher.events)
	}
}

func TestCancelTerminalBookingRejected(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, Status: model.StatusApproved}, nil
	}

	err := f.svc.Cancel(context.Background(), "bk-1")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict, got %v", err)
	}
}

func TestProgressLegalTransition(t *testing.T) {
	f := newFixture()
	status := model.StatusMatched
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		b := &model.Booking{ID: id, CustomerID: "cust-1", ProviderID: "prov-1", Status: status}
		return b, nil
	}

	if _, err := f.svc.Progress(context.Background(), "bk-1", model.StatusOnTheWay); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(f.repo.updates) != 1 {
		t.Fatalf("expected 1 status update, got %d", len(f.repo.updates))
	}
	if f.repo.updates[0] != [3]string{"bk-1", model.StatusMatched, model.StatusOnTheWay} {
		t.Errorf("unexpected update %v", f.repo.updates[0])
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != notify.EventBookingStatusChanged {
		t.Errorf("expected status_changed event, got %v", f.publisher.events)
	}
}

func TestProgressIllegalTransition(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, Status: model.StatusAwaitingMatch}, nil
	}

	_, err := f.svc.Progress(context.Background(), "bk-1", model.StatusInProgress)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for illegal transition, got %v", err)
	}
	if len(f.repo.updates) != 0 {
		t.Errorf("illegal transition must not hit the repository, got %v", f.repo.updates)
	}
}

func TestProgressRejectsMatchViaStatusEndpoint(t *testing.T) {
	f := newFixture()
	f.repo.findByIDFunc = func(ctx context.Context, id string) (*model.Booking, error) {
		return &model.Booking{ID: id, Status: model.StatusAwaitingMatch}, nil
	}

	_, err := f.svc.Progress(context.Background(), "bk-1", model.StatusMatched)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid input, got %v", err)
	}
}
