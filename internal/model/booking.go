package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BookingStatus string

const (
	BookingStatusPending     BookingStatus = "pending"
	BookingStatusConfirmed   BookingStatus = "confirmed"
	BookingStatusCompleted   BookingStatus = "completed"
	BookingStatusCancelled   BookingStatus = "cancelled"
	BookingStatusRescheduled BookingStatus = "rescheduled"
	BookingStatusNoShow      BookingStatus = "no_show"
)

// Occupies reports whether a booking in this status claims its time window.
// Cancelled and rescheduled bookings are history; they free their slot.
func (s BookingStatus) Occupies() bool {
	return s != BookingStatusCancelled && s != BookingStatusRescheduled
}

// CanTransitionTo encodes the booking state machine:
// pending -> confirmed -> completed, with cancel/reschedule allowed from
// pending and confirmed only.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	switch s {
	case BookingStatusPending:
		return next == BookingStatusConfirmed ||
			next == BookingStatusCancelled ||
			next == BookingStatusRescheduled
	case BookingStatusConfirmed:
		return next == BookingStatusCompleted ||
			next == BookingStatusCancelled ||
			next == BookingStatusRescheduled ||
			next == BookingStatusNoShow
	}
	return false
}

// Booking is a customer's claim on a provider's time. StartMinute and
// EndMinute are minutes since midnight on Date; EndMinute is always derived
// as StartMinute + DurationMin. Bookings are never deleted; cancellation is
// a status transition.
type Booking struct {
	Base
	SalonID       uuid.UUID      `db:"salon_id" json:"salon_id"`
	ProviderID    uuid.UUID      `db:"provider_id" json:"provider_id"`
	CustomerID    uuid.UUID      `db:"customer_id" json:"customer_id"`
	CustomerEmail string         `db:"customer_email" json:"customer_email,omitempty"`
	Date          time.Time      `db:"booking_date" json:"date"`
	StartMinute   int            `db:"start_minute" json:"start_minute"`
	EndMinute     int            `db:"end_minute" json:"end_minute"`
	DurationMin   int            `db:"duration_min" json:"duration_min"`
	Services      pq.StringArray `db:"services" json:"services"`
	Status        BookingStatus  `db:"status" json:"status"`
	Notes         string         `db:"notes" json:"notes,omitempty"`
	CancelReason  *string        `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// PrimaryService returns the first requested service name, if any.
func (b *Booking) PrimaryService() string {
	if len(b.Services) == 0 {
		return ""
	}
	return b.Services[0]
}

type CreateBookingRequest struct {
	SalonID       uuid.UUID `json:"salon_id" validate:"required"`
	ProviderID    uuid.UUID `json:"provider_id" validate:"required"`
	CustomerID    uuid.UUID `json:"customer_id" validate:"required"`
	CustomerEmail string    `json:"customer_email" validate:"omitempty,email"`
	Date          string    `json:"date" validate:"required"`
	StartTime     string    `json:"start_time" validate:"required"`
	// Duration in minutes; defaults to the configured slot granularity.
	DurationMin int      `json:"duration_min" validate:"omitempty,gt=0,lte=480"`
	Services    []string `json:"services" validate:"required,min=1,dive,max=120"`
	Notes       string   `json:"notes" validate:"max=1000"`
}

type RescheduleBookingRequest struct {
	Date        string   `json:"date" validate:"required"`
	StartTime   string   `json:"start_time" validate:"required"`
	DurationMin int      `json:"duration_min" validate:"omitempty,gt=0,lte=480"`
	Services    []string `json:"services" validate:"omitempty,min=1,dive,max=120"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type BookingFilters struct {
	SalonID    uuid.UUID
	ProviderID uuid.UUID
	CustomerID uuid.UUID
	Status     BookingStatus
	StartDate  time.Time
	EndDate    time.Time
}
