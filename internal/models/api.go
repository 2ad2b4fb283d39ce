package models

import "github.com/google/uuid"

// APIError is the error half of every JSON error envelope.
type APIError struct {
	Code      string            `json:"code"`
	Message   string            `json:"message"`
	Fields    map[string]string `json:"fields,omitempty"`
	RequestID string            `json:"request_id"`
}

type ErrorResponse struct {
	Error APIError `json:"error"`
}

// WSEvent is the payload relayed to connected clients over a user's
// pub/sub channel.
type WSEvent struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// UserEventChannel names the per-user pub/sub channel WSEvents travel
// on between the event publisher and the websocket hub.
func UserEventChannel(userID uuid.UUID) string {
	return "events:user:" + userID.String()
}

// Event types published by handlers.
const (
	EventSessionStarted   = "session_started"
	EventSessionEnded     = "session_ended"
	EventGroupJoined      = "group_joined"
	EventBlocklistChanged = "blocklist_changed"
)

// BlocklistChangedEvent tells a running blocker which list moved.
type BlocklistChangedEvent struct {
	UserID uuid.UUID `json:"user_id"`
	Kind   string    `json:"kind"` // "sites" or "apps"
}
