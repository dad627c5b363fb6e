package booking

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/glowdesk/salon-api/internal/model"
	"github.com/glowdesk/salon-api/internal/repository"
	availabilitySvc "github.com/glowdesk/salon-api/internal/service/availability"
	"github.com/glowdesk/salon-api/internal/timeslot"
	apperrors "github.com/glowdesk/salon-api/pkg/errors"
	"github.com/glowdesk/salon-api/pkg/messaging"
	"github.com/glowdesk/salon-api/pkg/metrics"
)

// Event channels for booking lifecycle notifications.
const (
	ChannelBookingCreated     = "bookings.created"
	ChannelBookingConfirmed   = "bookings.confirmed"
	ChannelBookingCancelled   = "bookings.cancelled"
	ChannelBookingCompleted   = "bookings.completed"
	ChannelBookingRescheduled = "bookings.rescheduled"
)

// Notifier sends customer-facing booking notifications. Failures are logged,
// never surfaced: notification is best-effort and must not fail admission.
type Notifier interface {
	BookingCreated(ctx context.Context, booking *model.Booking) error
	BookingCancelled(ctx context.Context, booking *model.Booking) error
}

// Service is the booking admission controller. It owns the one invariant
// that matters: no two active bookings may occupy overlapping time on the
// same provider and date. Every write re-validates availability at commit
// time under a per-(provider,date) lock.
type Service struct {
	repo      repository.BookingRepository
	providers repository.ProviderRepository
	resolver  *availabilitySvc.Service
	broker    messaging.Broker
	notifier  Notifier
	metrics   *metrics.Metrics
	locks     *keyedMutex
}

type Option func(*Service)

func WithBroker(b messaging.Broker) Option {
	return func(s *Service) { s.broker = b }
}

func WithNotifier(n Notifier) Option {
	return func(s *Service) { s.notifier = n }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func NewService(
	repo repository.BookingRepository,
	providers repository.ProviderRepository,
	resolver *availabilitySvc.Service,
	opts ...Option,
) *Service {
	s := &Service{
		repo:      repo,
		providers: providers,
		resolver:  resolver,
		locks:     newKeyedMutex(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func lockKey(providerID uuid.UUID, date time.Time) string {
	return providerID.String() + "|" + date.Format(timeslot.DateLayout)
}

// CreateBooking admits a booking request: normalize the start label,
// re-validate availability at commit time, persist as pending. Under
// concurrent demand for one slot exactly one caller wins; the rest receive
// a SlotNoLongerAvailable conflict.
func (s *Service) CreateBooking(ctx context.Context, req *model.CreateBookingRequest) (*model.Booking, error) {
	date, err := timeslot.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	startMinute, err := timeslot.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	duration := req.DurationMin
	if duration == 0 {
		duration = s.resolver.SlotDuration()
	}

	provider, err := s.providers.Get(ctx, req.ProviderID)
	if err != nil {
		return nil, err
	}
	if !provider.IsActive() {
		return nil, apperrors.NotFound("provider", nil)
	}

	key := lockKey(req.ProviderID, date)
	s.locks.Lock(key)
	defer s.locks.Unlock(key)

	if err := s.validateSlot(ctx, req.ProviderID, date, startMinute, duration, uuid.Nil); err != nil {
		return nil, err
	}

	booking := &model.Booking{
		SalonID:       req.SalonID,
		ProviderID:    req.ProviderID,
		CustomerID:    req.CustomerID,
		CustomerEmail: req.CustomerEmail,
		Date:          date,
		StartMinute:   startMinute,
		EndMinute:     startMinute + duration,
		DurationMin:   duration,
		Services:      req.Services,
		Status:        model.BookingStatusPending,
		Notes:         req.Notes,
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		if apperrors.IsConflict(err) && s.metrics != nil {
			s.metrics.AdmissionConflicts.Inc()
		}
		return nil, err
	}

	s.resolver.Invalidate(booking.ProviderID, booking.Date)
	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}

	s.publish(ctx, ChannelBookingCreated, booking)
	if s.notifier != nil {
		if err := s.notifier.BookingCreated(ctx, booking); err != nil {
			log.Warn().Err(err).Str("booking_id", booking.ID.String()).Msg("booking notification failed")
		}
	}

	return booking, nil
}

// validateSlot is the commit-time availability re-check. The requested start
// must be a currently bookable slot, and the full requested window must not
// overlap any active booking. excludeID skips the booking being rescheduled
// so it does not conflict with its own current slot.
func (s *Service) validateSlot(ctx context.Context, providerID uuid.UUID, date time.Time, startMinute, duration int, excludeID uuid.UUID) error {
	label := timeslot.FormatClock(startMinute)

	// The start has to be a bookable slot right now, not at the time the
	// client last looked.
	ok, err := s.resolver.CheckSlotExcluding(ctx, providerID, date, label, excludeID)
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.SlotNoLongerAvailable(label)
	}

	// A booking longer than one slot must keep its whole window clear, not
	// just its start label.
	existing, err := s.repo.ListForProviderDate(ctx, providerID, date)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if b.ID == excludeID || !b.Status.Occupies() {
			continue
		}
		if timeslot.Overlaps(startMinute, duration, b.StartMinute, b.DurationMin) {
			return apperrors.SlotNoLongerAvailable(label)
		}
	}
	return nil
}

func (s *Service) GetBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) ListBookings(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error) {
	return s.repo.List(ctx, filters)
}

// ConfirmBooking transitions pending -> confirmed.
func (s *Service) ConfirmBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusConfirmed, ChannelBookingConfirmed)
}

// CompleteBooking transitions confirmed -> completed.
func (s *Service) CompleteBooking(ctx context.Context, id uuid.UUID) (*model.Booking, error) {
	return s.transition(ctx, id, model.BookingStatusCompleted, ChannelBookingCompleted)
}

// CancelBooking transitions a pending or confirmed booking to cancelled.
// The booking row survives as history; only its status changes.
func (s *Service) CancelBooking(ctx context.Context, id uuid.UUID, reason string) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransitionTo(model.BookingStatusCancelled) {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), string(model.BookingStatusCancelled))
	}

	booking.Status = model.BookingStatusCancelled
	if reason != "" {
		booking.CancelReason = &reason
	}
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.resolver.Invalidate(booking.ProviderID, booking.Date)
	if s.metrics != nil {
		s.metrics.BookingsCancelled.Inc()
	}

	s.publish(ctx, ChannelBookingCancelled, booking)
	if s.notifier != nil {
		if err := s.notifier.BookingCancelled(ctx, booking); err != nil {
			log.Warn().Err(err).Str("booking_id", booking.ID.String()).Msg("booking notification failed")
		}
	}

	return booking, nil
}

// RescheduleBooking atomically moves a booking: the old row transitions to
// rescheduled and a new pending booking is admitted for the target slot,
// validated exactly as creation with the old slot excluded from the
// conflict check.
func (s *Service) RescheduleBooking(ctx context.Context, id uuid.UUID, req *model.RescheduleBookingRequest) (*model.Booking, error) {
	newDate, err := timeslot.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	startMinute, err := timeslot.ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}

	old, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !old.Status.CanTransitionTo(model.BookingStatusRescheduled) {
		return nil, apperrors.InvalidStateTransition(string(old.Status), string(model.BookingStatusRescheduled))
	}

	duration := req.DurationMin
	if duration == 0 {
		duration = old.DurationMin
	}
	services := old.Services
	if len(req.Services) > 0 {
		services = req.Services
	}

	// Lock both provider-dates in deterministic order to avoid deadlock
	// when two reschedules cross each other.
	oldKey := lockKey(old.ProviderID, old.Date)
	newKey := lockKey(old.ProviderID, newDate)
	first, second := oldKey, newKey
	if second < first {
		first, second = second, first
	}
	s.locks.Lock(first)
	defer s.locks.Unlock(first)
	if second != first {
		s.locks.Lock(second)
		defer s.locks.Unlock(second)
	}

	if err := s.validateSlot(ctx, old.ProviderID, newDate, startMinute, duration, old.ID); err != nil {
		return nil, err
	}

	replacement := &model.Booking{
		SalonID:       old.SalonID,
		ProviderID:    old.ProviderID,
		CustomerID:    old.CustomerID,
		CustomerEmail: old.CustomerEmail,
		Date:          newDate,
		StartMinute:   startMinute,
		EndMinute:     startMinute + duration,
		DurationMin:   duration,
		Services:      services,
		Status:        model.BookingStatusPending,
		Notes:         old.Notes,
	}

	prevStatus := old.Status
	old.Status = model.BookingStatusRescheduled
	if err := s.repo.Update(ctx, old); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, replacement); err != nil {
		// Restore the old booking so a lost race does not drop the
		// customer's original claim.
		old.Status = prevStatus
		if rbErr := s.repo.Update(ctx, old); rbErr != nil {
			log.Error().Err(rbErr).Str("booking_id", old.ID.String()).Msg("failed to restore booking after reschedule conflict")
		}
		return nil, err
	}

	s.resolver.Invalidate(old.ProviderID, old.Date)
	s.resolver.Invalidate(replacement.ProviderID, replacement.Date)

	s.publish(ctx, ChannelBookingRescheduled, replacement)
	return replacement, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, next model.BookingStatus, channel string) (*model.Booking, error) {
	booking, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !booking.Status.CanTransitionTo(next) {
		return nil, apperrors.InvalidStateTransition(string(booking.Status), string(next))
	}

	booking.Status = next
	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, err
	}

	s.publish(ctx, channel, booking)
	return booking, nil
}

func (s *Service) publish(ctx context.Context, channel string, booking *model.Booking) {
	if s.broker == nil {
		return
	}
	msg := messaging.Message{Type: channel, Payload: booking}
	if err := s.broker.Publish(ctx, channel, msg); err != nil {
		if s.metrics != nil {
			s.metrics.EventsFailed.Inc()
		}
		log.Warn().Err(err).Str("channel", channel).Msg("failed to publish booking event")
		return
	}
	if s.metrics != nil {
		s.metrics.EventsPublished.WithLabelValues(channel).Inc()
	}
}
