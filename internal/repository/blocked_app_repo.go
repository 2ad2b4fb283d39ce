package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/focusplus/backend/internal/models"
)

type BlockedAppRepo struct {
	pool *pgxpool.Pool
}

func NewBlockedAppRepo(pool *pgxpool.Pool) *BlockedAppRepo {
	return &BlockedAppRepo{pool: pool}
}

func (r *BlockedAppRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.BlockedApp, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, user_id, app_name, created_at FROM blocked_apps WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	apps := make([]*models.BlockedApp, 0)
	for rows.Next() {
		a := &models.BlockedApp{}
		if err := rows.Scan(&a.ID, &a.UserID, &a.AppName, &a.CreatedAt); err != nil {
			return nil, err
		}
		apps = append(apps, a)
	}

	return apps, rows.Err()
}

func (r *BlockedAppRepo) Exists(ctx context.Context, userID uuid.UUID, appName string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM blocked_apps WHERE user_id = $1 AND app_name = $2)",
		userID, appName,
	).Scan(&exists)
	return exists, err
}

func (r *BlockedAppRepo) Create(ctx context.Context, a *models.BlockedApp) error {
	a.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		"INSERT INTO blocked_apps (id, user_id, app_name) VALUES ($1, $2, $3) RETURNING created_at",
		a.ID, a.UserID, a.AppName,
	).Scan(&a.CreatedAt)
}

func (r *BlockedAppRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM blocked_apps WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
