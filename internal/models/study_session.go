package models

import (
	"time"

	"github.com/google/uuid"
)

type StudySession struct {
	ID              uuid.UUID  `json:"id"`
	UserID          uuid.UUID  `json:"user_id"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Completed       bool       `json:"completed"`
}

// SessionDuration maps a start/end pair to the stored duration: whole
// elapsed minutes rounded down, never negative. 90 seconds counts as
// one minute, 59 seconds as zero.
func SessionDuration(start, end time.Time) int {
	secs := int(end.Sub(start) / time.Second)
	if secs < 0 {
		return 0
	}
	return secs / 60
}
