package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/focusplus/backend/internal/models"
)

type GroupRepo struct {
	pool *pgxpool.Pool
}

func NewGroupRepo(pool *pgxpool.Pool) *GroupRepo {
	return &GroupRepo{pool: pool}
}

// Create inserts the group and its creator membership in one
// transaction, so the creator-is-a-member invariant holds from the
// first visible state.
func (r *GroupRepo) Create(ctx context.Context, g *models.Group) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	g.ID = uuid.New()
	err = tx.QueryRow(ctx, `
		INSERT INTO groups (id, name, description, creator_id)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`, g.ID, g.Name, g.Description, g.CreatorID).Scan(&g.CreatedAt)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)",
		g.ID, g.CreatorID,
	)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *GroupRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	g := &models.Group{}
	query := `SELECT id, name, description, creator_id, created_at FROM groups WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ListForUser returns groups the user created or joined, newest first.
func (r *GroupRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Group, error) {
	query := `
		SELECT DISTINCT g.id, g.name, g.description, g.creator_id, g.created_at
		FROM groups g
		LEFT JOIN group_members gm ON gm.group_id = g.id
		WHERE g.creator_id = $1 OR gm.user_id = $1
		ORDER BY g.created_at DESC`

	return r.queryGroups(ctx, query, userID)
}

// ListAvailable returns groups the user is not a member of, newest
// first, optionally filtered by a case-insensitive name substring.
func (r *GroupRepo) ListAvailable(ctx context.Context, userID uuid.UUID, search string) ([]*models.Group, error) {
	query := `
		SELECT g.id, g.name, g.description, g.creator_id, g.created_at
		FROM groups g
		WHERE NOT EXISTS (
			SELECT 1 FROM group_members gm
			WHERE gm.group_id = g.id AND gm.user_id = $1
		)`
	args := []interface{}{userID}

	if search != "" {
		query += " AND g.name ILIKE $2"
		args = append(args, "%"+search+"%")
	}
	query += " ORDER BY g.created_at DESC"

	return r.queryGroups(ctx, query, args...)
}

func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id = $1 AND user_id = $2)",
		groupID, userID,
	).Scan(&exists)
	return exists, err
}

func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		"INSERT INTO group_members (group_id, user_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
		groupID, userID,
	)
	return err
}

// Populate resolves creator and member references to display fields.
func (r *GroupRepo) Populate(ctx context.Context, groups ...*models.Group) error {
	for _, g := range groups {
		err := r.pool.QueryRow(ctx,
			"SELECT id, username, email FROM users WHERE id = $1", g.CreatorID,
		).Scan(&g.Creator.ID, &g.Creator.Username, &g.Creator.Email)
		if err != nil {
			return err
		}

		rows, err := r.pool.Query(ctx, `
			SELECT u.id, u.username, u.email
			FROM group_members gm
			JOIN users u ON u.id = gm.user_id
			WHERE gm.group_id = $1
			ORDER BY gm.joined_at ASC
		`, g.ID)
		if err != nil {
			return err
		}

		members := make([]models.UserRef, 0)
		for rows.Next() {
			var m models.UserRef
			if err := rows.Scan(&m.ID, &m.Username, &m.Email); err != nil {
				rows.Close()
				return err
			}
			members = append(members, m)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}
		g.Members = members
	}
	return nil
}

func (r *GroupRepo) queryGroups(ctx context.Context, query string, args ...interface{}) ([]*models.Group, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	groups := make([]*models.Group, 0)
	for rows.Next() {
		g := &models.Group{}
		if err := rows.Scan(&g.ID, &g.Name, &g.Description, &g.CreatorID, &g.CreatedAt); err != nil {
			return nil, err
		}
		groups = append(groups, g)
	}

	return groups, rows.Err()
}
