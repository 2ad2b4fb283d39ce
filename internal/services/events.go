package services

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/focusplus/backend/internal/models"
)

// EventService fans events out to a user's connected clients (open
// frontend tabs, a running blocker) through Redis pub/sub. The
// websocket hub subscribes on the other side.
type EventService struct {
	redis *redis.Client
}

func NewEventService(redisClient *redis.Client) *EventService {
	return &EventService{redis: redisClient}
}

// Publish is fire-and-forget: a dropped event only delays a client
// until its next fetch.
func (s *EventService) Publish(ctx context.Context, userID uuid.UUID, event models.WSEvent) {
	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	s.redis.Publish(ctx, models.UserEventChannel(userID), string(data))
}
