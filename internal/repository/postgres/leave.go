package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-api/internal/model"
)

func (r *leaveRepository) ActiveForDate(ctx context.Context, providerID uuid.UUID, date time.Time) (_ []*model.Leave, err error) {
	start := time.Now()
	defer func() { r.track("list_leaves", start, err) }()

	// Full-day records sort first so a full-day leave dominates any
	// overlapping partial-day record an admin may have entered.
	query := `
		SELECT id, provider_id, leave_type, start_date, end_date,
			   start_minute, end_minute, reason,
			   created_at, updated_at, deleted_at
		FROM leaves
		WHERE provider_id = $1
		AND deleted_at IS NULL
		AND start_date <= $2
		AND end_date >= $2
		ORDER BY (leave_type = 'full_day') DESC, created_at ASC
	`
	var leaves []*model.Leave
	err = r.db.SelectContext(ctx, &leaves, query, providerID, date.Format("2006-01-02"))
	if err != nil {
		return nil, storeErr("failed to list leaves", err)
	}
	return leaves, nil
}
