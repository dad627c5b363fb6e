package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-api/internal/model"
)

func (r *templateRepository) GetForWeekday(ctx context.Context, providerID uuid.UUID, weekday model.Weekday) (_ *model.ScheduleTemplate, err error) {
	start := time.Now()
	defer func() { r.track("get_template", start, err) }()

	query := `
		SELECT id, provider_id, weekday, slot_labels,
			   created_at, updated_at, deleted_at
		FROM schedule_templates
		WHERE provider_id = $1 AND weekday = $2 AND deleted_at IS NULL
	`
	var template model.ScheduleTemplate
	err = r.db.GetContext(ctx, &template, query, providerID, int(weekday))
	if err == sql.ErrNoRows {
		// Not scheduled that weekday is a normal outcome, not a failure.
		return &model.ScheduleTemplate{ProviderID: providerID, Weekday: weekday}, nil
	}
	if err != nil {
		return nil, storeErr("failed to get schedule template", err)
	}
	return &template, nil
}
