package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-api/internal/model"
	apperrors "github.com/glowdesk/salon-api/pkg/errors"
)

func (r *providerRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Provider, err error) {
	start := time.Now()
	defer func() { r.track("get_provider", start, err) }()

	query := `
		SELECT id, salon_id, name, title, status, phone_number, email,
			   created_at, updated_at, deleted_at
		FROM providers
		WHERE id = $1 AND deleted_at IS NULL
	`
	var provider model.Provider
	err = r.db.GetContext(ctx, &provider, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("provider", err)
	}
	if err != nil {
		return nil, storeErr("failed to get provider", err)
	}
	return &provider, nil
}

func (r *providerRepository) ListActiveForSalon(ctx context.Context, salonID uuid.UUID) (_ []*model.Provider, err error) {
	start := time.Now()
	defer func() { r.track("list_providers", start, err) }()

	query := `
		SELECT id, salon_id, name, title, status, phone_number, email,
			   created_at, updated_at, deleted_at
		FROM providers
		WHERE salon_id = $1
		AND status = 'active'
		AND deleted_at IS NULL
		ORDER BY name ASC
	`
	var providers []*model.Provider
	err = r.db.SelectContext(ctx, &providers, query, salonID)
	if err != nil {
		return nil, storeErr("failed to list providers for salon", err)
	}
	return providers, nil
}
