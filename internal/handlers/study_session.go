package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/models"
)

type sessionRepository interface {
	Start(ctx context.Context, userID uuid.UUID) (*models.StudySession, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error)
	End(ctx context.Context, id uuid.UUID) (*models.StudySession, error)
	ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.StudySession, error)
}

type StudySessionHandler struct {
	repo   sessionRepository
	events eventPublisher
}

func NewStudySessionHandler(repo sessionRepository, events eventPublisher) *StudySessionHandler {
	if events == nil {
		events = noopPublisher{}
	}
	return &StudySessionHandler{repo: repo, events: events}
}

func (h *StudySessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	session, err := h.repo.Start(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to start study session", r))
		return
	}

	h.events.Publish(r.Context(), userID, models.WSEvent{Type: models.EventSessionStarted, Payload: session})
	writeJSON(w, http.StatusCreated, session)
}

func (h *StudySessionHandler) End(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	sessionID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid session ID", r))
		return
	}

	// Ownership is checked before anything mutates.
	session, err := h.repo.GetByID(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Session not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to end study session", r))
		return
	}

	if session.UserID != userID {
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", "Not authorized", r))
		return
	}

	session, err = h.repo.End(r.Context(), sessionID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to end study session", r))
		return
	}

	h.events.Publish(r.Context(), userID, models.WSEvent{Type: models.EventSessionEnded, Payload: session})
	writeJSON(w, http.StatusOK, session)
}

func (h *StudySessionHandler) Today(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	sessions, err := h.repo.ListSince(r.Context(), userID, midnight)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch study sessions", r))
		return
	}

	writeJSON(w, http.StatusOK, sessions)
}
