package postgres

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/glowdesk/salon-api/internal/repository"
	apperrors "github.com/glowdesk/salon-api/pkg/errors"
	"github.com/glowdesk/salon-api/pkg/metrics"
)

// repoMetrics records per-operation counters and latency. A nil sink
// disables instrumentation.
type repoMetrics struct {
	metrics *metrics.Metrics
}

func (rm repoMetrics) track(operation string, start time.Time, err error) {
	if rm.metrics == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	rm.metrics.DatabaseOperations.WithLabelValues(operation, status).Inc()
	rm.metrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

type salonRepository struct {
	db *sqlx.DB
	repoMetrics
}

type providerRepository struct {
	db *sqlx.DB
	repoMetrics
}

type templateRepository struct {
	db *sqlx.DB
	repoMetrics
}

type leaveRepository struct {
	db *sqlx.DB
	repoMetrics
}

type bookingRepository struct {
	db *sqlx.DB
	repoMetrics
}

// storeErr wraps a query failure, surfacing connection-level faults as
// Unavailable so the handlers answer 503 instead of 500.
func storeErr(op string, err error) error {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return apperrors.NewUnavailable("store unreachable", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func NewSalonRepository(db *sqlx.DB, m *metrics.Metrics) repository.SalonRepository {
	return &salonRepository{db: db, repoMetrics: repoMetrics{metrics: m}}
}

func NewProviderRepository(db *sqlx.DB, m *metrics.Metrics) repository.ProviderRepository {
	return &providerRepository{db: db, repoMetrics: repoMetrics{metrics: m}}
}

func NewTemplateRepository(db *sqlx.DB, m *metrics.Metrics) repository.TemplateRepository {
	return &templateRepository{db: db, repoMetrics: repoMetrics{metrics: m}}
}

func NewLeaveRepository(db *sqlx.DB, m *metrics.Metrics) repository.LeaveRepository {
	return &leaveRepository{db: db, repoMetrics: repoMetrics{metrics: m}}
}

func NewBookingRepository(db *sqlx.DB, m *metrics.Metrics) repository.BookingRepository {
	return &bookingRepository{db: db, repoMetrics: repoMetrics{metrics: m}}
}
