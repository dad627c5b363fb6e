package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-api/internal/model"
)

// All repository interfaces in one file
type (
	// SalonRepository handles salon lookups
	SalonRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Salon, error)
	}

	// ProviderRepository handles provider lookups
	ProviderRepository interface {
		Get(ctx context.Context, id uuid.UUID) (*model.Provider, error)
		ListActiveForSalon(ctx context.Context, salonID uuid.UUID) ([]*model.Provider, error)
	}

	// TemplateRepository reads a provider's recurring weekly work template.
	// A provider with no row for a weekday simply does not work that day;
	// GetForWeekday returns an empty slot list, not an error.
	TemplateRepository interface {
		GetForWeekday(ctx context.Context, providerID uuid.UUID, weekday model.Weekday) (*model.ScheduleTemplate, error)
	}

	// LeaveRepository reads leave records. ActiveForDate returns every leave
	// touching the date, full-day records first, so callers can let full-day
	// leave dominate overlapping partial-day entries.
	LeaveRepository interface {
		ActiveForDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.Leave, error)
	}

	// BookingRepository persists bookings. ListForProviderDate excludes
	// bookings whose status frees their slot (cancelled, rescheduled).
	BookingRepository interface {
		Create(ctx context.Context, booking *model.Booking) error
		Get(ctx context.Context, id uuid.UUID) (*model.Booking, error)
		Update(ctx context.Context, booking *model.Booking) error
		List(ctx context.Context, filters *model.BookingFilters) ([]*model.Booking, error)
		ListForProviderDate(ctx context.Context, providerID uuid.UUID, date time.Time) ([]*model.Booking, error)
	}
)
