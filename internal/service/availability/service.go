package availability

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/glowdesk/salon-api/internal/model"
	"github.com/glowdesk/salon-api/internal/repository"
	"github.com/glowdesk/salon-api/internal/timeslot"
	"github.com/glowdesk/salon-api/pkg/metrics"
)

// Config controls slot generation and caching.
type Config struct {
	// SlotDurationMin is the fixed duration of every generated slot.
	SlotDurationMin int
	// WindowStartMin/WindowEndMin bound the default generation window and
	// seed templates created without explicit labels.
	WindowStartMin int
	WindowEndMin   int
	// CacheTTL bounds staleness of the per-(provider,date) slot cache.
	CacheTTL time.Duration
}

// DefaultConfig returns the standard 30-minute granularity over 08:00-20:00.
func DefaultConfig() Config {
	return Config{
		SlotDurationMin: 30,
		WindowStartMin:  8 * 60,
		WindowEndMin:    20 * 60,
		CacheTTL:        30 * time.Second,
	}
}

// Service is the availability resolver: a pure read path combining the
// template, leave and booking stores into slot lists and day statuses.
// It holds no mutable state beyond an explicitly invalidated TTL cache and
// is safe for unlimited concurrent use.
type Service struct {
	salons    repository.SalonRepository
	providers repository.ProviderRepository
	templates repository.TemplateRepository
	leaves    repository.LeaveRepository
	bookings  repository.BookingRepository
	cfg       Config
	cache     *gocache.Cache
	metrics   *metrics.Metrics
	now       func() time.Time
}

// Option customizes a Service.
type Option func(*Service)

// WithClock injects the wall clock, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithMetrics attaches prometheus metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	salons repository.SalonRepository,
	providers repository.ProviderRepository,
	templates repository.TemplateRepository,
	leaves repository.LeaveRepository,
	bookings repository.BookingRepository,
	cfg Config,
	opts ...Option,
) *Service {
	if cfg.SlotDurationMin <= 0 {
		cfg = DefaultConfig()
	}
	s := &Service{
		salons:    salons,
		providers: providers,
		templates: templates,
		leaves:    leaves,
		bookings:  bookings,
		cfg:       cfg,
		cache:     gocache.New(cfg.CacheTTL, 2*cfg.CacheTTL),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// daySnapshot holds everything needed to resolve one provider-date, fetched
// once so every operation sees a consistent view.
type daySnapshot struct {
	slots    []int // parsed template slot starts, ascending
	leaves   []*model.Leave
	bookings []*model.Booking
}

func (s *Service) snapshot(ctx context.Context, providerID uuid.UUID, date time.Time) (*daySnapshot, error) {
	template, err := s.templates.GetForWeekday(ctx, providerID, model.WeekdayOf(date))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch template: %w", err)
	}

	slots := make([]int, 0, len(template.SlotLabels))
	for _, label := range template.SlotLabels {
		minute, err := timeslot.ParseClock(label)
		if err != nil {
			return nil, fmt.Errorf("template for provider %s holds bad label %q: %w", providerID, label, err)
		}
		slots = append(slots, minute)
	}
	sort.Ints(slots)

	leaves, err := s.leaves.ActiveForDate(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leaves: %w", err)
	}

	bookings, err := s.bookings.ListForProviderDate(ctx, providerID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch bookings: %w", err)
	}

	return &daySnapshot{slots: slots, leaves: leaves, bookings: bookings}, nil
}

// activeLeave picks the dominant leave record: the repository sorts full-day
// records first, so overlapping admin entries resolve to full-day wins.
func (snap *daySnapshot) activeLeave() *model.Leave {
	if len(snap.leaves) == 0 {
		return nil
	}
	return snap.leaves[0]
}

func (snap *daySnapshot) fullDayLeave(date time.Time) *model.Leave {
	if l := snap.activeLeave(); l != nil && l.CoversDate(date) {
		return l
	}
	return nil
}

func (snap *daySnapshot) partialLeave(date time.Time) *model.Leave {
	l := snap.activeLeave()
	if l != nil && l.Type == model.LeavePartialDay {
		return l
	}
	return nil
}

// leaveBlocking scans every leave touching the date, not just the dominant
// one, so stacked partial windows all block their slots.
func (snap *daySnapshot) leaveBlocking(date time.Time, slotMinute int) *model.Leave {
	for _, l := range snap.leaves {
		if l.BlocksSlot(date, slotMinute) {
			return l
		}
	}
	return nil
}

// isPast applies the past-slot rule: only meaningful when date is today, and
// a slot starting exactly at the current minute already counts as past.
func isPast(date time.Time, slotMinute int, now time.Time) bool {
	if !timeslot.SameDate(date, now) {
		return false
	}
	return slotMinute <= timeslot.MinuteOfDay(now)
}

func (s *Service) bookingBlocking(snap *daySnapshot, slotMinute int) *model.Booking {
	for _, b := range snap.bookings {
		if !b.Status.Occupies() {
			continue
		}
		if timeslot.Overlaps(slotMinute, s.cfg.SlotDurationMin, b.StartMinute, b.DurationMin) {
			return b
		}
	}
	return nil
}

// availableMinutes filters the template slots against now, leave and
// bookings. now is sampled once by the caller and held constant so a slot
// cannot flip from future to past mid-computation.
func (s *Service) availableMinutes(snap *daySnapshot, date time.Time, now time.Time) []int {
	if len(snap.slots) == 0 {
		return nil
	}
	if snap.fullDayLeave(date) != nil {
		return nil
	}

	available := make([]int, 0, len(snap.slots))
	for _, slot := range snap.slots {
		if isPast(date, slot, now) {
			continue
		}
		if snap.leaveBlocking(date, slot) != nil {
			continue
		}
		if s.bookingBlocking(snap, slot) != nil {
			continue
		}
		available = append(available, slot)
	}
	return available
}

func cacheKey(providerID uuid.UUID, date time.Time) string {
	return providerID.String() + "|" + date.Format(timeslot.DateLayout)
}

// ListSlots returns the provider's bookable slot labels for the date, in
// ascending template order. Results are served read-through from the TTL
// cache; the admission controller invalidates on every write.
func (s *Service) ListSlots(ctx context.Context, providerID uuid.UUID, date time.Time) ([]string, error) {
	defer s.observe("list_slots")()

	key := cacheKey(providerID, date)
	if cached, ok := s.cache.Get(key); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return cached.([]string), nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	snap, err := s.snapshot(ctx, providerID, date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	minutes := s.availableMinutes(snap, date, now)
	labels := make([]string, 0, len(minutes))
	for _, m := range minutes {
		labels = append(labels, timeslot.FormatClock(m))
	}

	s.cache.SetDefault(key, labels)
	return labels, nil
}

// Invalidate drops the cached slot list for one provider-date. Called by the
// admission controller after every booking write.
func (s *Service) Invalidate(providerID uuid.UUID, date time.Time) {
	s.cache.Delete(cacheKey(providerID, date))
}

// CheckSlot reports whether the labelled slot is bookable. The label is
// normalized first, so "2:00 PM" and "14:00" name the same slot.
func (s *Service) CheckSlot(ctx context.Context, providerID uuid.UUID, date time.Time, label string) (bool, error) {
	return s.CheckSlotExcluding(ctx, providerID, date, label, uuid.Nil)
}

// CheckSlotExcluding is CheckSlot with one booking left out of the conflict
// scan. The admission controller passes the booking being rescheduled so it
// does not conflict with its own current slot. Reads stores directly, never
// the cache: this is the commit-time source of truth.
func (s *Service) CheckSlotExcluding(ctx context.Context, providerID uuid.UUID, date time.Time, label string, excludeBookingID uuid.UUID) (bool, error) {
	defer s.observe("check_slot")()

	minute, err := timeslot.ParseClock(label)
	if err != nil {
		return false, err
	}

	snap, err := s.snapshot(ctx, providerID, date)
	if err != nil {
		return false, err
	}
	if excludeBookingID != uuid.Nil {
		kept := make([]*model.Booking, 0, len(snap.bookings))
		for _, b := range snap.bookings {
			if b.ID != excludeBookingID {
				kept = append(kept, b)
			}
		}
		snap.bookings = kept
	}

	now := s.now()
	for _, m := range s.availableMinutes(snap, date, now) {
		if m == minute {
			return true, nil
		}
	}
	return false, nil
}

// ListAvailableProviders returns the salon's active providers that have at
// least one bookable slot on the date. Providers with zero slots are
// excluded outright; callers wanting "why absent" use Status.
func (s *Service) ListAvailableProviders(ctx context.Context, salonID uuid.UUID, date time.Time) ([]*model.Provider, error) {
	defer s.observe("list_providers")()

	if _, err := s.salons.Get(ctx, salonID); err != nil {
		return nil, err
	}

	providers, err := s.providers.ListActiveForSalon(ctx, salonID)
	if err != nil {
		return nil, err
	}

	available := make([]*model.Provider, 0, len(providers))
	for _, p := range providers {
		slots, err := s.ListSlots(ctx, p.ID, date)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			available = append(available, p)
		}
	}
	return available, nil
}

// Status classifies a provider's day. Precedence: no template, then
// full-day leave, then partial leave, then the booked-percentage bands.
func (s *Service) Status(ctx context.Context, providerID uuid.UUID, date time.Time) (*model.DayStatus, error) {
	defer s.observe("status")()

	snap, err := s.snapshot(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	now := s.now()

	status := &model.DayStatus{
		ProviderID: providerID,
		Date:       date.Format(timeslot.DateLayout),
	}

	if len(snap.slots) == 0 {
		status.State = model.StateUnscheduled
		status.Reason = fmt.Sprintf("not scheduled to work on %s", model.WeekdayOf(date))
		return status, nil
	}

	if l := snap.fullDayLeave(date); l != nil {
		status.State = model.StateOnLeave
		status.Reason = "on leave"
		if l.Reason != "" {
			status.Reason = fmt.Sprintf("on leave: %s", l.Reason)
		}
		return status, nil
	}

	for _, slot := range snap.slots {
		if !isPast(date, slot, now) {
			status.TotalValid++
		}
	}
	status.AvailableCount = len(s.availableMinutes(snap, date, now))

	if l := snap.partialLeave(date); l != nil && l.StartMinute != nil && l.EndMinute != nil {
		status.State = model.StatePartialLeave
		status.Reason = fmt.Sprintf("on leave %s to %s",
			timeslot.FormatClock(*l.StartMinute), timeslot.FormatClock(*l.EndMinute))
		if l.Reason != "" {
			status.Reason += ": " + l.Reason
		}
		return status, nil
	}

	// Threshold bands reproduced exactly for UI parity:
	// 0% fully booked, (0,25) mostly, [25,50) partially, [50,100] available.
	pct := 0.0
	if status.TotalValid > 0 {
		pct = float64(status.AvailableCount) / float64(status.TotalValid) * 100
	}
	switch {
	case status.AvailableCount == 0:
		status.State = model.StateFullyBooked
	case pct < 25:
		status.State = model.StateMostlyBooked
	case pct < 50:
		status.State = model.StatePartiallyBooked
	default:
		status.State = model.StateAvailable
	}
	return status, nil
}

// UnavailableReasons maps every template slot missing from ListSlots to
// exactly one reason, most specific first: booked, then leave, then past.
func (s *Service) UnavailableReasons(ctx context.Context, providerID uuid.UUID, date time.Time) (map[string]model.SlotUnavailability, error) {
	defer s.observe("unavailable_reasons")()

	snap, err := s.snapshot(ctx, providerID, date)
	if err != nil {
		return nil, err
	}
	now := s.now()

	availableSet := make(map[int]bool)
	for _, m := range s.availableMinutes(snap, date, now) {
		availableSet[m] = true
	}

	reasons := make(map[string]model.SlotUnavailability)
	for _, slot := range snap.slots {
		if availableSet[slot] {
			continue
		}
		label := timeslot.FormatClock(slot)

		if b := s.bookingBlocking(snap, slot); b != nil {
			reasons[label] = model.SlotUnavailability{
				Reason: model.ReasonBooked,
				Detail: b.PrimaryService(),
			}
			continue
		}
		if l := snap.leaveBlocking(date, slot); l != nil {
			detail := ""
			if l.Type == model.LeavePartialDay && l.StartMinute != nil && l.EndMinute != nil {
				detail = fmt.Sprintf("%s to %s",
					timeslot.FormatClock(*l.StartMinute), timeslot.FormatClock(*l.EndMinute))
			}
			reasons[label] = model.SlotUnavailability{Reason: model.ReasonOnLeave, Detail: detail}
			continue
		}
		if isPast(date, slot, now) {
			reasons[label] = model.SlotUnavailability{Reason: model.ReasonPast}
			continue
		}
		// Should not occur for slots sourced from the template; kept so a
		// future filter can never leave a slot unexplained.
		reasons[label] = model.SlotUnavailability{Reason: model.ReasonUnavailable}
	}
	return reasons, nil
}

// GenerateWindowLabels returns the configured default window as slot labels,
// used when seeding a provider's template without explicit slots.
func (s *Service) GenerateWindowLabels() []string {
	minutes := timeslot.Generate(s.cfg.WindowStartMin, s.cfg.WindowEndMin, s.cfg.SlotDurationMin, s.cfg.SlotDurationMin)
	labels := make([]string, 0, len(minutes))
	for _, m := range minutes {
		labels = append(labels, timeslot.FormatClock(m))
	}
	return labels
}

// SlotDuration exposes the configured slot granularity in minutes.
func (s *Service) SlotDuration() int {
	return s.cfg.SlotDurationMin
}

// observe counts the query and returns a closure that records its duration;
// callers defer the result so the histogram sees the full resolution time.
func (s *Service) observe(operation string) func() {
	if s.metrics == nil {
		return func() {}
	}
	s.metrics.AvailabilityQueries.WithLabelValues(operation).Inc()
	start := time.Now()
	return func() {
		s.metrics.AvailabilityLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}
