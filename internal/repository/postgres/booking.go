package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/glowdesk/salon-api/internal/model"
	"github.com/glowdesk/salon-api/internal/timeslot"
	apperrors "github.com/glowdesk/salon-api/pkg/errors"
)

// uniqueViolation is the postgres error code raised by the partial unique
// index on (provider_id, booking_date, start_minute) over active bookings.
// It is the database-level backstop for the admission controller's
// serialization: a lost race surfaces as a conflict, never a double booking.
const uniqueViolation = "23505"

func (r *bookingRepository) Create(ctx context.Context, booking *model.Booking) (err error) {
	start := time.Now()
	defer func() { r.track("create_booking", start, err) }()

	query := `
		INSERT INTO bookings (
			id, salon_id, provider_id, customer_id, customer_email,
			booking_date, start_minute, end_minute, duration_min,
			services, status, notes, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	booking.ID = uuid.New()
	booking.CreatedAt = time.Now()
	booking.UpdatedAt = time.Now()

	_, err = r.db.ExecContext(ctx, query,
		booking.ID,
		booking.SalonID,
		booking.ProviderID,
		booking.CustomerID,
		booking.CustomerEmail,
		booking.Date.Format("2006-01-02"),
		booking.StartMinute,
		booking.EndMinute,
		booking.DurationMin,
		booking.Services,
		booking.Status,
		booking.Notes,
		booking.CreatedAt,
		booking.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return apperrors.SlotNoLongerAvailable(timeslot.FormatClock(booking.StartMinute))
		}
		return storeErr("failed to create booking", err)
	}
	return nil
}

func (r *bookingRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Booking, err error) {
	start := time.Now()
	defer func() { r.track("get_booking", start, err) }()

	query := `
		SELECT id, salon_id, provider_id, customer_id, customer_email,
			   booking_date, start_minute, end_minute, duration_min,
			   services, status, notes, cancel_reason,
			   created_at, updated_at, deleted_at
		FROM bookings
		WHERE id = $1
	`
	var booking model.Booking
	err = r.db.GetContext(ctx, &booking, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("booking", err)
	}
	if err != nil {
		return nil, storeErr("failed to get booking", err)
	}
	return &booking, nil
}

func (r *bookingRepository) Update(ctx context.Context, booking *model.Booking) (err error) {
	start := time.Now()
	defer func() { r.track("update_booking", start, err) }()

	query := `
		UPDATE bookings
		SET booking_date = $1, start_minute = $2, end_minute = $3,
			duration_min = $4, services = $5, status = $6, notes = $7,
			cancel_reason = $8, updated_at = $9
		WHERE id = $10
	`
	booking.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		booking.Date.Format("2006-01-02"),
		booking.StartMinute,
		booking.EndMinute,
		booking.DurationMin,
		booking.Services,
		booking.Status,
		booking.Notes,
		booking.CancelReason,
		booking.UpdatedAt,
		booking.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return apperrors.SlotNoLongerAvailable(timeslot.FormatClock(booking.StartMinute))
		}
		return storeErr("failed to update booking", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("booking", nil)
	}

	return nil
}

func (r *bookingRepository) List(ctx context.Context, filters *model.BookingFilters) (_ []*model.Booking, err error) {
	start := time.Now()
	defer func() { r.track("list_bookings", start, err) }()

	query := `
		SELECT id, salon_id, provider_id, customer_id, customer_email,
			   booking_date, start_minute, end_minute, duration_min,
			   services, status, notes, cancel_reason,
			   created_at, updated_at, deleted_at
		FROM bookings
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.SalonID != uuid.Nil {
		query += fmt.Sprintf(" AND salon_id = $%d", argCount)
		args = append(args, filters.SalonID)
		argCount++
	}

	if filters.ProviderID != uuid.Nil {
		query += fmt.Sprintf(" AND provider_id = $%d", argCount)
		args = append(args, filters.ProviderID)
		argCount++
	}

	if filters.CustomerID != uuid.Nil {
		query += fmt.Sprintf(" AND customer_id = $%d", argCount)
		args = append(args, filters.CustomerID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND booking_date >= $%d", argCount)
		args = append(args, filters.StartDate.Format("2006-01-02"))
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND booking_date <= $%d", argCount)
		args = append(args, filters.EndDate.Format("2006-01-02"))
		argCount++
	}

	query += " ORDER BY booking_date ASC, start_minute ASC"

	var bookings []*model.Booking
	err = r.db.SelectContext(ctx, &bookings, query, args...)
	if err != nil {
		return nil, storeErr("failed to list bookings", err)
	}
	return bookings, nil
}

func (r *bookingRepository) ListForProviderDate(ctx context.Context, providerID uuid.UUID, date time.Time) (_ []*model.Booking, err error) {
	start := time.Now()
	defer func() { r.track("list_provider_bookings", start, err) }()

	query := `
		SELECT id, salon_id, provider_id, customer_id, customer_email,
			   booking_date, start_minute, end_minute, duration_min,
			   services, status, notes, cancel_reason,
			   created_at, updated_at, deleted_at
		FROM bookings
		WHERE provider_id = $1
		AND booking_date = $2
		AND status NOT IN ('cancelled', 'rescheduled')
		ORDER BY start_minute ASC
	`
	var bookings []*model.Booking
	err = r.db.SelectContext(ctx, &bookings, query, providerID, date.Format("2006-01-02"))
	if err != nil {
		return nil, storeErr("failed to list bookings for provider", err)
	}
	return bookings, nil
}
