package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/focusplus/backend/internal/models"
)

type BlockedSiteRepo struct {
	pool *pgxpool.Pool
}

func NewBlockedSiteRepo(pool *pgxpool.Pool) *BlockedSiteRepo {
	return &BlockedSiteRepo{pool: pool}
}

func (r *BlockedSiteRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.BlockedSite, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT id, user_id, url, created_at FROM blocked_sites WHERE user_id = $1 ORDER BY created_at DESC",
		userID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sites := make([]*models.BlockedSite, 0)
	for rows.Next() {
		s := &models.BlockedSite{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.URL, &s.CreatedAt); err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}

	return sites, rows.Err()
}

func (r *BlockedSiteRepo) Exists(ctx context.Context, userID uuid.UUID, url string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM blocked_sites WHERE user_id = $1 AND url = $2)",
		userID, url,
	).Scan(&exists)
	return exists, err
}

func (r *BlockedSiteRepo) Create(ctx context.Context, s *models.BlockedSite) error {
	s.ID = uuid.New()
	return r.pool.QueryRow(ctx,
		"INSERT INTO blocked_sites (id, user_id, url) VALUES ($1, $2, $3) RETURNING created_at",
		s.ID, s.UserID, s.URL,
	).Scan(&s.CreatedAt)
}

// Delete removes the site if the caller owns it. Returns false when
// nothing matched (absent or foreign record, deliberately conflated).
func (r *BlockedSiteRepo) Delete(ctx context.Context, id, userID uuid.UUID) (bool, error) {
	tag, err := r.pool.Exec(ctx,
		"DELETE FROM blocked_sites WHERE id = $1 AND user_id = $2",
		id, userID,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
