package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/focusplus/backend/internal/models"
)

// eventPublisher lets handlers push live updates without caring about
// the transport behind them.
type eventPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event models.WSEvent)
}

// noopPublisher stands in when no event bus is wired (tests).
type noopPublisher struct{}

func (noopPublisher) Publish(context.Context, uuid.UUID, models.WSEvent) {}
