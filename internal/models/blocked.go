package models

import (
	"time"

	"github.com/google/uuid"
)

// BlockedSite holds a normalized lowercase domain a user wants denied
// during focus sessions. (user_id, url) is unique.
type BlockedSite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	URL       string    `json:"url"`
	CreatedAt time.Time `json:"created_at"`
}

// BlockedApp is a process name the out-of-band blocker terminates on
// sight. Scoped per user; the blocker fetches the owner's list.
type BlockedApp struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	AppName   string    `json:"app_name"`
	CreatedAt time.Time `json:"created_at"`
}

type AddBlockedSiteRequest struct {
	URL string `json:"url"`
}

type AddBlockedAppRequest struct {
	AppName string `json:"app_name"`
}
