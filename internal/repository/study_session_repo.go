package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/focusplus/backend/internal/models"
)

type StudySessionRepo struct {
	pool *pgxpool.Pool
}

func NewStudySessionRepo(pool *pgxpool.Pool) *StudySessionRepo {
	return &StudySessionRepo{pool: pool}
}

// Start opens a new session for the user. Any still-open session is
// closed first so a user has at most one running session.
func (r *StudySessionRepo) Start(ctx context.Context, userID uuid.UUID) (*models.StudySession, error) {
	_, _ = r.pool.Exec(ctx, `
		UPDATE study_sessions
		SET ended_at = NOW(),
			duration_minutes = GREATEST(0, FLOOR(EXTRACT(EPOCH FROM (NOW() - started_at)) / 60))::INT,
			completed = TRUE
		WHERE user_id = $1
		  AND ended_at IS NULL
	`, userID)

	s := &models.StudySession{UserID: userID}
	query := `
		INSERT INTO study_sessions (user_id)
		VALUES ($1)
		RETURNING id, started_at, duration_minutes, completed
	`

	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&s.ID, &s.StartedAt, &s.DurationMinutes, &s.Completed,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *StudySessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	s := &models.StudySession{}
	query := `SELECT id, user_id, started_at, ended_at, duration_minutes, completed
		FROM study_sessions WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.StartedAt, &s.EndedAt, &s.DurationMinutes, &s.Completed,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// End closes a session. Idempotent: a session that already ended keeps
// its stored end time and duration.
func (r *StudySessionRepo) End(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	s := &models.StudySession{}
	query := `
		UPDATE study_sessions
		SET ended_at = CASE WHEN ended_at IS NULL THEN NOW() ELSE ended_at END,
			duration_minutes = CASE
				WHEN ended_at IS NULL THEN GREATEST(0, FLOOR(EXTRACT(EPOCH FROM (NOW() - started_at)) / 60))::INT
				ELSE duration_minutes
			END,
			completed = TRUE
		WHERE id = $1
		RETURNING id, user_id, started_at, ended_at, duration_minutes, completed
	`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.UserID, &s.StartedAt, &s.EndedAt, &s.DurationMinutes, &s.Completed,
	)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ListSince returns the user's sessions started at or after the cutoff,
// newest first.
func (r *StudySessionRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.StudySession, error) {
	query := `SELECT id, user_id, started_at, ended_at, duration_minutes, completed
		FROM study_sessions
		WHERE user_id = $1 AND started_at >= $2
		ORDER BY started_at DESC`

	rows, err := r.pool.Query(ctx, query, userID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	sessions := make([]*models.StudySession, 0)
	for rows.Next() {
		s := &models.StudySession{}
		if err := rows.Scan(&s.ID, &s.UserID, &s.StartedAt, &s.EndedAt, &s.DurationMinutes, &s.Completed); err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}

	return sessions, rows.Err()
}
