package booking_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowdesk/salon-api/internal/model"
	"github.com/glowdesk/salon-api/internal/service/availability"
	"github.com/glowdesk/salon-api/internal/service/booking"
	"github.com/glowdesk/salon-api/internal/timeslot"
	apperrors "github.com/glowdesk/salon-api/pkg/errors"
)

type fakeSalons struct {
	salons map[uuid.UUID]*model.Salon
}

func (f *fakeSalons) Get(_ context.Context, id uuid.UUID) (*model.Salon, error) {
	if s, ok := f.salons[id]; ok {
		return s, nil
	}
	return nil, apperrors.NotFound("salon", nil)
}

type fakeProviders struct {
	providers map[uuid.UUID]*model.Provider
}

func (f *fakeProviders) Get(_ context.Context, id uuid.UUID) (*model.Provider, error) {
	if p, ok := f.providers[id]; ok {
		return p, nil
	}
	return nil, apperrors.NotFound("provider", nil)
}

func (f *fakeProviders) ListActiveForSalon(_ context.Context, salonID uuid.UUID) ([]*model.Provider, error) {
	var out []*model.Provider
	for _, p := range f.providers {
		if p.SalonID == salonID && p.IsActive() {
			out = append(out, p)
		}
	}
	return out, nil
}

type fakeTemplates struct {
	byKey map[string]*model.ScheduleTemplate
}

func templateKey(providerID uuid.UUID, weekday model.Weekday) string {
	return fmt.Sprintf("%s|%d", providerID, weekday)
}

func (f *fakeTemplates) GetForWeekday(_ context.Context, providerID uuid.UUID, weekday model.Weekday) (*model.ScheduleTemplate, error) {
	if tpl, ok := f.byKey[templateKey(providerID, weekday)]; ok {
		return tpl, nil
	}
	return &model.ScheduleTemplate{ProviderID: providerID, Weekday: weekday}, nil
}

type fakeLeaves struct {
	leaves []*model.Leave
}

func (f *fakeLeaves) ActiveForDate(_ context.Context, providerID uuid.UUID, date time.Time) ([]*model.Leave, error) {
	var out []*model.Leave
	for _, l := range f.leaves {
		if l.ProviderID != providerID {
			continue
		}
		if l.CoversDate(date) || timeslot.SameDate(l.StartDate, date) {
			out = append(out, l)
		}
	}
	return out, nil
}

// fakeBookings mirrors the production store's guarantee: at most one active
// booking per provider, date and start minute, enforced under its own lock
// the way the partial unique index does.
type fakeBookings struct {
	mu   sync.Mutex
	byID map[uuid.UUID]*model.Booking
}

func newFakeBookings() *fakeBookings {
	return &fakeBookings{byID: make(map[uuid.UUID]*model.Booking)}
}

func (f *fakeBookings) Create(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if existing.ProviderID == b.ProviderID &&
			timeslot.SameDate(existing.Date, b.Date) &&
			existing.StartMinute == b.StartMinute &&
			existing.Status.Occupies() {
			return apperrors.SlotNoLongerAvailable(timeslot.FormatClock(b.StartMinute))
		}
	}
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	b.CreatedAt = time.Now()
	b.UpdatedAt = b.CreatedAt
	stored := *b
	f.byID[b.ID] = &stored
	return nil
}

func (f *fakeBookings) Get(_ context.Context, id uuid.UUID) (*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if b, ok := f.byID[id]; ok {
		out := *b
		return &out, nil
	}
	return nil, apperrors.NotFound("booking", nil)
}

func (f *fakeBookings) Update(_ context.Context, b *model.Booking) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[b.ID]; !ok {
		return apperrors.NotFound("booking", nil)
	}
	stored := *b
	f.byID[b.ID] = &stored
	return nil
}

func (f *fakeBookings) List(_ context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.byID {
		if filters != nil && filters.Status != "" && b.Status != filters.Status {
			continue
		}
		copied := *b
		out = append(out, &copied)
	}
	return out, nil
}

func (f *fakeBookings) ListForProviderDate(_ context.Context, providerID uuid.UUID, date time.Time) ([]*model.Booking, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*model.Booking
	for _, b := range f.byID {
		if b.ProviderID == providerID && timeslot.SameDate(b.Date, date) && b.Status.Occupies() {
			copied := *b
			out = append(out, &copied)
		}
	}
	return out, nil
}

type recordingNotifier struct {
	mu        sync.Mutex
	created   []uuid.UUID
	cancelled []uuid.UUID
}

func (n *recordingNotifier) BookingCreated(_ context.Context, b *model.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.created = append(n.created, b.ID)
	return nil
}

func (n *recordingNotifier) BookingCancelled(_ context.Context, b *model.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, b.ID)
	return nil
}

type env struct {
	bookings *fakeBookings
	notifier *recordingNotifier
	resolver *availability.Service
	svc      *booking.Service

	salonID    uuid.UUID
	providerID uuid.UUID
	customerID uuid.UUID
	date       time.Time
}

// newEnv wires the admission controller over in-memory stores: one active
// provider working 10:00 through 11:30 on the test date, clock frozen the
// day before so no slot is past.
func newEnv(t *testing.T) *env {
	t.Helper()

	e := &env{
		bookings:   newFakeBookings(),
		notifier:   &recordingNotifier{},
		salonID:    uuid.New(),
		providerID: uuid.New(),
		customerID: uuid.New(),
		date:       time.Date(2026, 9, 7, 0, 0, 0, 0, time.Local),
	}
	now := e.date.AddDate(0, 0, -1).Add(12 * time.Hour)

	salons := &fakeSalons{salons: map[uuid.UUID]*model.Salon{
		e.salonID: {Base: model.Base{ID: e.salonID}, Name: "Glow Studio"},
	}}
	providers := &fakeProviders{providers: map[uuid.UUID]*model.Provider{
		e.providerID: {
			Base:    model.Base{ID: e.providerID},
			SalonID: e.salonID,
			Name:    "Asha",
			Status:  model.ProviderStatusActive,
		},
	}}
	weekday := model.WeekdayOf(e.date)
	templates := &fakeTemplates{byKey: map[string]*model.ScheduleTemplate{
		templateKey(e.providerID, weekday): {
			ProviderID: e.providerID,
			Weekday:    weekday,
			SlotLabels: []string{"10:00 AM", "10:30 AM", "11:00 AM", "11:30 AM"},
		},
	}}

	e.resolver = availability.NewService(
		salons, providers, templates, &fakeLeaves{}, e.bookings,
		availability.Config{
			SlotDurationMin: 30,
			WindowStartMin:  480,
			WindowEndMin:    1200,
			CacheTTL:        time.Minute,
		},
		availability.WithClock(func() time.Time { return now }),
	)
	e.svc = booking.NewService(
		e.bookings, providers, e.resolver,
		booking.WithNotifier(e.notifier),
	)
	return e
}

func (e *env) createRequest(startTime string) *model.CreateBookingRequest {
	return &model.CreateBookingRequest{
		SalonID:    e.salonID,
		ProviderID: e.providerID,
		CustomerID: e.customerID,
		Date:       e.date.Format(timeslot.DateLayout),
		StartTime:  startTime,
		Services:   []string{"haircut"},
	}
}

func TestCreateBooking(t *testing.T) {
	e := newEnv(t)

	b, err := e.svc.CreateBooking(context.Background(), e.createRequest("10:00 AM"))
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, b.ID)
	assert.Equal(t, model.BookingStatusPending, b.Status)
	assert.Equal(t, 600, b.StartMinute)
	assert.Equal(t, 630, b.EndMinute)
	// Duration defaults to the configured slot granularity.
	assert.Equal(t, 30, b.DurationMin)

	assert.Equal(t, []uuid.UUID{b.ID}, e.notifier.created)
}

func TestCreateBookingConflict(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	_, err := e.svc.CreateBooking(ctx, e.createRequest("10:00 AM"))
	require.NoError(t, err)

	req := e.createRequest("10:00 AM")
	req.CustomerID = uuid.New()
	_, err = e.svc.CreateBooking(ctx, req)
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	var appErr *apperrors.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 409, appErr.StatusCode())
}

func TestConcurrentCreatesSingleWinner(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	const callers = 8
	results := make(chan error, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := e.createRequest("11:00 AM")
			req.CustomerID = uuid.New()
			_, err := e.svc.CreateBooking(ctx, req)
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var wins, conflicts int
	for err := range results {
		if err == nil {
			wins++
			continue
		}
		require.True(t, apperrors.IsConflict(err), "unexpected error: %v", err)
		conflicts++
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, callers-1, conflicts)
}

func TestCreateBookingOverlapLongerDuration(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	req := e.createRequest("10:00 AM")
	req.DurationMin = 60
	_, err := e.svc.CreateBooking(ctx, req)
	require.NoError(t, err)

	// 10:30 is a distinct label but sits inside the hour-long booking.
	_, err = e.svc.CreateBooking(ctx, e.createRequest("10:30 AM"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	_, err = e.svc.CreateBooking(ctx, e.createRequest("11:00 AM"))
	assert.NoError(t, err)
}

func TestCreateBookingValidation(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	req := e.createRequest("not a time")
	_, err := e.svc.CreateBooking(ctx, req)
	require.Error(t, err)
	assert.False(t, apperrors.IsConflict(err))

	req = e.createRequest("10:00 AM")
	req.Date = "09/07/2026"
	_, err = e.svc.CreateBooking(ctx, req)
	assert.Error(t, err)

	// 9:00 AM is not on the provider's template.
	_, err = e.svc.CreateBooking(ctx, e.createRequest("9:00 AM"))
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))
}

func TestCreateBookingInactiveProvider(t *testing.T) {
	e := newEnv(t)

	req := e.createRequest("10:00 AM")
	req.ProviderID = uuid.New()
	_, err := e.svc.CreateBooking(context.Background(), req)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestCancelBookingFreesSlot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.svc.CreateBooking(ctx, e.createRequest("10:00 AM"))
	require.NoError(t, err)

	cancelled, err := e.svc.CancelBooking(ctx, b.ID, "customer request")
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, cancelled.Status)
	require.NotNil(t, cancelled.CancelReason)
	assert.Equal(t, "customer request", *cancelled.CancelReason)
	assert.Equal(t, []uuid.UUID{b.ID}, e.notifier.cancelled)

	// The row survives and the slot opens back up.
	stored, err := e.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCancelled, stored.Status)

	ok, err := e.resolver.CheckSlot(ctx, e.providerID, e.date, "10:00 AM")
	require.NoError(t, err)
	assert.True(t, ok)

	// Cancelling twice is an invalid transition, not a delete.
	_, err = e.svc.CancelBooking(ctx, b.ID, "again")
	assert.Error(t, err)
}

func TestConfirmCompleteFlow(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.svc.CreateBooking(ctx, e.createRequest("10:00 AM"))
	require.NoError(t, err)

	// A pending booking cannot complete without confirmation.
	_, err = e.svc.CompleteBooking(ctx, b.ID)
	require.Error(t, err)

	confirmed, err := e.svc.ConfirmBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusConfirmed, confirmed.Status)

	completed, err := e.svc.CompleteBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusCompleted, completed.Status)

	_, err = e.svc.CancelBooking(ctx, b.ID, "")
	assert.Error(t, err)
}

func TestRescheduleMovesBooking(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.svc.CreateBooking(ctx, e.createRequest("10:00 AM"))
	require.NoError(t, err)

	replacement, err := e.svc.RescheduleBooking(ctx, b.ID, &model.RescheduleBookingRequest{
		Date:      e.date.Format(timeslot.DateLayout),
		StartTime: "10:30 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, replacement.Status)
	assert.Equal(t, 630, replacement.StartMinute)
	assert.NotEqual(t, b.ID, replacement.ID)

	old, err := e.svc.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusRescheduled, old.Status)

	ok, err := e.resolver.CheckSlot(ctx, e.providerID, e.date, "10:00 AM")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRescheduleToOwnSlot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	b, err := e.svc.CreateBooking(ctx, e.createRequest("10:00 AM"))
	require.NoError(t, err)

	// The booking's own claim must not block its reschedule target.
	replacement, err := e.svc.RescheduleBooking(ctx, b.ID, &model.RescheduleBookingRequest{
		Date:      e.date.Format(timeslot.DateLayout),
		StartTime: "10:00 AM",
	})
	require.NoError(t, err)
	assert.Equal(t, 600, replacement.StartMinute)
}

func TestRescheduleToOccupiedSlotRollsBack(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	a, err := e.svc.CreateBooking(ctx, e.createRequest("10:00 AM"))
	require.NoError(t, err)
	req := e.createRequest("10:30 AM")
	req.CustomerID = uuid.New()
	_, err = e.svc.CreateBooking(ctx, req)
	require.NoError(t, err)

	_, err = e.svc.RescheduleBooking(ctx, a.ID, &model.RescheduleBookingRequest{
		Date:      e.date.Format(timeslot.DateLayout),
		StartTime: "10:30 AM",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsConflict(err))

	// The original claim is untouched by the failed move.
	stored, err := e.svc.GetBooking(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, model.BookingStatusPending, stored.Status)
	assert.Equal(t, 600, stored.StartMinute)
}

func TestBookingInvalidatesSlotCache(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	slots, err := e.resolver.ListSlots(ctx, e.providerID, e.date)
	require.NoError(t, err)
	require.Len(t, slots, 4)

	_, err = e.svc.CreateBooking(ctx, e.createRequest("10:00 AM"))
	require.NoError(t, err)

	slots, err = e.resolver.ListSlots(ctx, e.providerID, e.date)
	require.NoError(t, err)
	assert.Equal(t, []string{"10:30 AM", "11:00 AM", "11:30 AM"}, slots)
}
