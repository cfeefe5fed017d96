package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	availabilityerrors "sudsy/internal/availability/errors"
	bookingserrors "sudsy/internal/bookings/errors"
	directoryerrors "sudsy/internal/directory/errors"
	matchingservice "sudsy/internal/matching/service"
	"sudsy/internal/notify"
	offerserrors "sudsy/internal/offers/errors"
	"sudsy/pkg/config"
	mongotx "sudsy/pkg/db/mongo"
	apperrors "sudsy/pkg/errors"
	"sudsy/pkg/logger"
	"sudsy/pkg/model"
)

// memStore backs the booking and slot mocks with one shared state so a
// failed "transaction" can roll both back, mirroring the real
// multi-document transaction.
type memStore struct {
	mu       sync.Mutex
	txMu     sync.Mutex
	bookings map[string]*model.Booking
	slots    map[string]*model.AvailabilitySlot
}

func newMemStore() *memStore {
	return &memStore{
		bookings: make(map[string]*model.Booking),
		slots:    make(map[string]*model.AvailabilitySlot),
	}
}

func (s *memStore) snapshot() (map[string]*model.Booking, map[string]*model.AvailabilitySlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	bookings := make(map[string]*model.Booking, len(s.bookings))
	for k, v := range s.bookings {
		copied := *v
		bookings[k] = &copied
	}
	slots := make(map[string]*model.AvailabilitySlot, len(s.slots))
	for k, v := range s.slots {
		copied := *v
		slots[k] = &copied
	}
	return bookings, slots
}

func (s *memStore) restore(bookings map[string]*model.Booking, slots map[string]*model.AvailabilitySlot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bookings = bookings
	s.slots = slots
}

type memBookingRepo struct {
	store *memStore
}

func (r *memBookingRepo) Create(ctx context.Context, booking *model.Booking) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	copied := *booking
	r.store.bookings[booking.ID] = &copied
	return nil
}

func (r *memBookingRepo) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return nil, bookingserrors.ErrNotFound
	}
	copied := *b
	return &copied, nil
}

func (r *memBookingRepo) FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (r *memBookingRepo) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	return 0, nil
}

func (r *memBookingRepo) FindAwaitingMatch(ctx context.Context, limit int) ([]*model.Booking, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*model.Booking
	for _, b := range r.store.bookings {
		if b.Status == model.StatusAwaitingMatch {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (r *memBookingRepo) UpdateStatus(ctx context.Context, id string, fromStatus, toStatus string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.Status != fromStatus {
		return bookingserrors.ErrStatusChanged
	}
	b.Status = toStatus
	return nil
}

func (r *memBookingRepo) Match(ctx context.Context, id string, providerID string, slot model.CandidateSlot) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	b, ok := r.store.bookings[id]
	if !ok {
		return bookingserrors.ErrNotFound
	}
	if b.Status != model.StatusAwaitingMatch {
		return bookingserrors.ErrStatusChanged
	}
	now := time.Now().UTC()
	b.Status = model.StatusMatched
	b.ProviderID = providerID
	b.ChosenSlot = &slot
	b.MatchedAt = &now
	return nil
}

func (r *memBookingRepo) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	r.store.txMu.Lock()
	defer r.store.txMu.Unlock()
	bookings, slots := r.store.snapshot()
	if err := fn(nil); err != nil {
		r.store.restore(bookings, slots)
		return err
	}
	return nil
}

type memSlotRepo struct {
	store *memStore
}

func (r *memSlotRepo) Find(ctx context.Context, providerID, date, shift string) (*model.AvailabilitySlot, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	s, ok := r.store.slots[model.SlotKey(providerID, date, shift)]
	if !ok {
		return nil, availabilityerrors.ErrSlotNotFound
	}
	copied := *s
	return &copied, nil
}

func (r *memSlotRepo) FindByProvider(ctx context.Context, providerID string, fromDate, toDate string) ([]*model.AvailabilitySlot, error) {
	return nil, nil
}

func (r *memSlotRepo) SetStatus(ctx context.Context, providerID, date, shift, status string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := model.SlotKey(providerID, date, shift)
	if existing, ok := r.store.slots[key]; ok && existing.Status == model.SlotBooked {
		return availabilityerrors.ErrCannotModifyBookedSlot
	}
	r.store.slots[key] = &model.AvailabilitySlot{
		ID: key, ProviderID: providerID, Date: date, Shift: shift, Status: status,
	}
	return nil
}

func (r *memSlotRepo) Book(ctx context.Context, providerID, date, shift, bookingID string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	key := model.SlotKey(providerID, date, shift)
	if existing, ok := r.store.slots[key]; ok && existing.Status != model.SlotAvailable {
		return availabilityerrors.ErrSlotUnavailable
	}
	r.store.slots[key] = &model.AvailabilitySlot{
		ID: key, ProviderID: providerID, Date: date, Shift: shift,
		Status: model.SlotBooked, BookingID: bookingID,
	}
	return nil
}

func (r *memSlotRepo) Release(ctx context.Context, providerID, date, shift, bookingID string) error {
	return nil
}

type memLockRepo struct {
	mu    sync.Mutex
	locks map[string]bool
}

func newMemLockRepo() *memLockRepo {
	return &memLockRepo{locks: make(map[string]bool)}
}

func (r *memLockRepo) Create(ctx context.Context, lock *model.SlotLock) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.locks[lock.ID] {
		return offerserrors.ErrLockHeld
	}
	r.locks[lock.ID] = true
	return nil
}

func (r *memLockRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.locks, id)
	return nil
}

type memDeclineRepo struct {
	mu       sync.Mutex
	declines map[string]*model.OfferDecline
}

func newMemDeclineRepo() *memDeclineRepo {
	return &memDeclineRepo{declines: make(map[string]*model.OfferDecline)}
}

func (r *memDeclineRepo) Save(ctx context.Context, decline *model.OfferDecline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	decline.ID = model.DeclineKey(decline.BookingID, decline.ProviderID)
	r.declines[decline.ID] = decline
	return nil
}

func (r *memDeclineRepo) FindByProvider(ctx context.Context, providerID string) ([]*model.OfferDecline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*model.OfferDecline
	for _, d := range r.declines {
		if d.ProviderID == providerID {
			out = append(out, d)
		}
	}
	return out, nil
}

type memProviderRepo struct {
	providers map[string]*model.Provider
}

func (r *memProviderRepo) Create(ctx context.Context, provider *model.Provider) error { return nil }

func (r *memProviderRepo) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	p, ok := r.providers[id]
	if !ok {
		return nil, directoryerrors.ErrProviderNotFound
	}
	return p, nil
}

func (r *memProviderRepo) FindActive(ctx context.Context) ([]*model.Provider, error) {
	var out []*model.Provider
	for _, p := range r.providers {
		if p.Status == model.ProviderActive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProviderRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	return nil
}

type memPropertyRepo struct {
	properties map[string]*model.Property
}

func (r *memPropertyRepo) Create(ctx context.Context, property *model.Property) error { return nil }

func (r *memPropertyRepo) FindByID(ctx context.Context, id string) (*model.Property, error) {
	p, ok := r.properties[id]
	if !ok {
		return nil, directoryerrors.ErrPropertyNotFound
	}
	return p, nil
}

func (r *memPropertyRepo) FindByOwner(ctx context.Context, ownerID string) ([]*model.Property, error) {
	return nil, nil
}

type capturingPublisher struct {
	mu     sync.Mutex
	events []string
}

func (p *capturingPublisher) Publish(ctx context.Context, eventType string, key string, payload any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, eventType)
}

func (p *capturingPublisher) Close() error { return nil }

// --- fixtures ---

const (
	siteLat = 30.2672
	siteLng = -97.7431
)

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format(model.SlotDateLayout)
}

type dispatcherFixture struct {
	svc       OfferService
	store     *memStore
	bookings  *memBookingRepo
	slots     *memSlotRepo
	providers *memProviderRepo
	publisher *capturingPublisher
}

func newDispatcherFixture(providerCount int) *dispatcherFixture {
	cfg := &config.Config{
		Log:                logger.New(logger.Config{Level: "error", Format: logger.JSON, Service: "test"}),
		HorizonWeeks:       25,
		OfferExpiryMinutes: 30,
		AcceptLockTTL:      10 * time.Second,
	}

	store := newMemStore()
	bookings := &memBookingRepo{store: store}
	slots := &memSlotRepo{store: store}

	providers := &memProviderRepo{providers: make(map[string]*model.Provider)}
	for i := 0; i < providerCount; i++ {
		id := fmt.Sprintf("prov-%02d", i)
		providers.providers[id] = &model.Provider{
			ID:             id,
			Status:         model.ProviderActive,
			BaseLat:        siteLat,
			BaseLng:        siteLng,
			ServiceRadius:  25,
			ServiceTypeIDs: []string{"standard"},
			Rating:         4.0,
		}
	}
	properties := &memPropertyRepo{properties: map[string]*model.Property{
		"prop-1": {
			ID: "prop-1", OwnerID: "cust-1", Sqft: 2000,
			Address: model.Address{City: "Austin", Lat: siteLat, Lng: siteLng},
		},
	}}

	publisher := &capturingPublisher{}
	matcher := matchingservice.NewMatcherService(providers, properties, cfg)

	svc := NewOfferService(bookings, slots, newMemLockRepo(), newMemDeclineRepo(), matcher, publisher, cfg)
	return &dispatcherFixture{
		svc:       svc,
		store:     store,
		bookings:  bookings,
		slots:     slots,
		providers: providers,
		publisher: publisher,
	}
}

func (f *dispatcherFixture) seedBooking(status string, candidateCount int) *model.Booking {
	candidates := make([]model.CandidateSlot, 0, candidateCount)
	shifts := []string{model.ShiftMorning, model.ShiftAfternoon, model.ShiftEvening}
	for i := 0; i < candidateCount; i++ {
		candidates = append(candidates, model.CandidateSlot{
			Date:  futureDate(7 + i/len(shifts)),
			Shift: shifts[i%len(shifts)],
		})
	}
	booking := &model.Booking{
		ID:            "bk-1",
		CustomerID:    "cust-1",
		PropertyID:    "prop-1",
		ServiceTypeID: "standard",
		Candidates:    candidates,
		Status:        status,
	}
	f.bookings.Create(context.Background(), booking)
	return booking
}

// --- tests ---

func TestAcceptConcurrentOnlyOneWins(t *testing.T) {
	const n = 8
	f := newDispatcherFixture(n)
	f.seedBooking(model.StatusAwaitingMatch, n)

	booking, _ := f.bookings.FindByID(context.Background(), "bk-1")

	type outcome struct {
		providerID string
		err        error
	}
	results := make(chan outcome, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			providerID := fmt.Sprintf("prov-%02d", i)
			_, err := f.svc.Accept(context.Background(), "bk-1", providerID, booking.Candidates[i])
			results <- outcome{providerID: providerID, err: err}
		}(i)
	}
	wg.Wait()
	close(results)

	var winners, losers int
	for res := range results {
		if res.err == nil {
			winners++
			continue
		}
		losers++
		appErr := apperrors.AsAppError(res.err)
		if appErr == nil || appErr.Code != apperrors.CodeConflict {
			t.Errorf("loser %s: expected terminal conflict, got %v", res.providerID, res.err)
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly 1 winner, got %d (losers %d)", winners, losers)
	}

	final, err := f.bookings.FindByID(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.Status != model.StatusMatched {
		t.Errorf("expected matched, got %s", final.Status)
	}
	if final.ProviderID == "" || final.ChosenSlot == nil {
		t.Fatal("winner assignment missing on booking")
	}

	f.store.mu.Lock()
	defer f.store.mu.Unlock()
	booked := 0
	for _, slot := range f.store.slots {
		if slot.Status == model.SlotBooked {
			booked++
			if slot.ProviderID != final.ProviderID || slot.BookingID != final.ID {
				t.Errorf("booked slot %s does not reference the winner", slot.ID)
			}
		}
	}
	if booked != 1 {
		t.Errorf("expected exactly 1 booked slot, got %d", booked)
	}
}

func TestAcceptAlreadyMatched(t *testing.T) {
	f := newDispatcherFixture(2)
	booking := f.seedBooking(model.StatusAwaitingMatch, 2)

	if _, err := f.svc.Accept(context.Background(), "bk-1", "prov-00", booking.Candidates[0]); err != nil {
		t.Fatalf("first accept failed: %v", err)
	}

	_, err := f.svc.Accept(context.Background(), "bk-1", "prov-01", booking.Candidates[1])
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for second accept, got %v", err)
	}
}

func TestAcceptNotAcceptableStatus(t *testing.T) {
	f := newDispatcherFixture(1)
	booking := f.seedBooking(model.StatusPlaced, 1)

	_, err := f.svc.Accept(context.Background(), "bk-1", "prov-00", booking.Candidates[0])
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for unbroadcast booking, got %v", err)
	}
}

func TestAcceptInvalidSelection(t *testing.T) {
	f := newDispatcherFixture(1)
	f.seedBooking(model.StatusAwaitingMatch, 1)

	_, err := f.svc.Accept(context.Background(), "bk-1", "prov-00",
		model.CandidateSlot{Date: futureDate(90), Shift: model.ShiftEvening})
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Errorf("expected invalid selection, got %v", err)
	}
}

func TestAcceptNoLongerEligible(t *testing.T) {
	f := newDispatcherFixture(1)
	booking := f.seedBooking(model.StatusAwaitingMatch, 1)

	// Suspend the provider after broadcast.
	f.providers.providers["prov-00"].Status = model.ProviderSuspended

	_, err := f.svc.Accept(context.Background(), "bk-1", "prov-00", booking.Candidates[0])
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeForbidden {
		t.Errorf("expected forbidden for ineligible provider, got %v", err)
	}

	current, _ := f.bookings.FindByID(context.Background(), "bk-1")
	if current.Status != model.StatusAwaitingMatch {
		t.Errorf("failed accept must not move the booking, got %s", current.Status)
	}
}

func TestAcceptSlotUnavailable(t *testing.T) {
	f := newDispatcherFixture(1)
	booking := f.seedBooking(model.StatusAwaitingMatch, 1)
	chosen := booking.Candidates[0]

	// Provider blocked the slot after the broadcast went out.
	if err := f.slots.SetStatus(context.Background(), "prov-00", chosen.Date, chosen.Shift, model.SlotBlocked); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := f.svc.Accept(context.Background(), "bk-1", "prov-00", chosen)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Errorf("expected conflict for unavailable slot, got %v", err)
	}

	current, _ := f.bookings.FindByID(context.Background(), "bk-1")
	if current.Status != model.StatusAwaitingMatch {
		t.Errorf("booking must remain awaiting_match, got %s", current.Status)
	}
}

func TestBroadcastOpensPlacedBooking(t *testing.T) {
	f := newDispatcherFixture(3)
	f.seedBooking(model.StatusPlaced, 2)

	result, err := f.svc.Broadcast(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ProviderIDs) != 3 {
		t.Errorf("expected 3 eligible providers, got %d", len(result.ProviderIDs))
	}

	current, _ := f.bookings.FindByID(context.Background(), "bk-1")
	if current.Status != model.StatusAwaitingMatch {
		t.Errorf("expected awaiting_match after broadcast, got %s", current.Status)
	}

	f.publisher.mu.Lock()
	defer f.publisher.mu.Unlock()
	if len(f.publisher.events) != 1 || f.publisher.events[0] != notify.EventOfferBroadcast {
		t.Errorf("expected one offer.broadcast event, got %v", f.publisher.events)
	}
}

func TestBroadcastNoEligibleProvidersKeepsAwaiting(t *testing.T) {
	f := newDispatcherFixture(0)
	f.seedBooking(model.StatusPlaced, 2)

	result, err := f.svc.Broadcast(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("no eligible providers must not be an error, got %v", err)
	}
	if len(result.ProviderIDs) != 0 {
		t.Errorf("expected no providers, got %v", result.ProviderIDs)
	}

	current, _ := f.bookings.FindByID(context.Background(), "bk-1")
	if current.Status != model.StatusAwaitingMatch {
		t.Errorf("expected awaiting_match, got %s", current.Status)
	}

	f.publisher.mu.Lock()
	defer f.publisher.mu.Unlock()
	if len(f.publisher.events) != 0 {
		t.Errorf("expected no events without recipients, got %v", f.publisher.events)
	}
}

func TestListForProviderSkipsFullyBlockedCalendar(t *testing.T) {
	f := newDispatcherFixture(2)
	booking := f.seedBooking(model.StatusAwaitingMatch, 2)

	// prov-00 blocks every candidate slot; the offer must vanish from
	// their feed but stay visible to prov-01.
	for _, c := range booking.Candidates {
		if err := f.slots.SetStatus(context.Background(), "prov-00", c.Date, c.Shift, model.SlotBlocked); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	offers, err := f.svc.ListForProvider(context.Background(), "prov-00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("expected no offers for a fully blocked calendar, got %d", len(offers))
	}

	offers, err = f.svc.ListForProvider(context.Background(), "prov-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Errorf("expected 1 offer for the open provider, got %d", len(offers))
	}
}

func TestListForProviderKeepsPartiallyOpenCalendar(t *testing.T) {
	f := newDispatcherFixture(1)
	booking := f.seedBooking(model.StatusAwaitingMatch, 2)

	// One candidate blocked, one still open: the offer stays visible.
	blocked := booking.Candidates[0]
	if err := f.slots.SetStatus(context.Background(), "prov-00", blocked.Date, blocked.Shift, model.SlotBlocked); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offers, err := f.svc.ListForProvider(context.Background(), "prov-00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Errorf("expected 1 offer with one candidate still open, got %d", len(offers))
	}
}

func TestBroadcastExcludesProvidersWithNoOpenSlot(t *testing.T) {
	f := newDispatcherFixture(2)
	booking := f.seedBooking(model.StatusPlaced, 2)

	for _, c := range booking.Candidates {
		if err := f.slots.SetStatus(context.Background(), "prov-01", c.Date, c.Shift, model.SlotBlocked); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	result, err := f.svc.Broadcast(context.Background(), "bk-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(result.ProviderIDs) != 1 || result.ProviderIDs[0] != "prov-00" {
		t.Errorf("expected only prov-00 in the broadcast list, got %v", result.ProviderIDs)
	}
}

func TestDeclineHidesOfferWithoutStateChange(t *testing.T) {
	f := newDispatcherFixture(2)
	f.seedBooking(model.StatusAwaitingMatch, 2)

	offers, err := f.svc.ListForProvider(context.Background(), "prov-00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 1 {
		t.Fatalf("expected 1 offer before decline, got %d", len(offers))
	}

	if err := f.svc.Decline(context.Background(), "bk-1", "prov-00"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	offers, err = f.svc.ListForProvider(context.Background(), "prov-00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(offers) != 0 {
		t.Errorf("expected no offers after decline, got %d", len(offers))
	}

	// The other provider still sees it, and booking state is untouched.
	offers, _ = f.svc.ListForProvider(context.Background(), "prov-01")
	if len(offers) != 1 {
		t.Errorf("decline must be provider-local, got %d offers", len(offers))
	}
	current, _ := f.bookings.FindByID(context.Background(), "bk-1")
	if current.Status != model.StatusAwaitingMatch {
		t.Errorf("decline must not change booking status, got %s", current.Status)
	}

	// Declining again is idempotent.
	if err := f.svc.Decline(context.Background(), "bk-1", "prov-00"); err != nil {
		t.Errorf("repeat decline must succeed, got %v", err)
	}
}
