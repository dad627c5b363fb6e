package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/glowdesk/salon-api/internal/model"
	apperrors "github.com/glowdesk/salon-api/pkg/errors"
)

func (r *salonRepository) Get(ctx context.Context, id uuid.UUID) (_ *model.Salon, err error) {
	start := time.Now()
	defer func() { r.track("get_salon", start, err) }()

	query := `
		SELECT id, name, address, city, timezone, status,
			   created_at, updated_at, deleted_at
		FROM salons
		WHERE id = $1 AND deleted_at IS NULL
	`
	var salon model.Salon
	err = r.db.GetContext(ctx, &salon, query, id)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("salon", err)
	}
	if err != nil {
		return nil, storeErr("failed to get salon", err)
	}
	return &salon, nil
}
