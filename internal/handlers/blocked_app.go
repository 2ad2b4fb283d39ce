package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/models"
)

type blockedAppRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.BlockedApp, error)
	Exists(ctx context.Context, userID uuid.UUID, appName string) (bool, error)
	Create(ctx context.Context, a *models.BlockedApp) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type BlockedAppHandler struct {
	repo   blockedAppRepository
	events eventPublisher
}

func NewBlockedAppHandler(repo blockedAppRepository, events eventPublisher) *BlockedAppHandler {
	if events == nil {
		events = noopPublisher{}
	}
	return &BlockedAppHandler{repo: repo, events: events}
}

func (h *BlockedAppHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	apps, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch blocked apps", r))
		return
	}

	writeJSON(w, http.StatusOK, apps)
}

func (h *BlockedAppHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.AddBlockedAppRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	appName := strings.TrimSpace(req.AppName)
	if appName == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"app_name": "App name is required"}, r))
		return
	}

	exists, err := h.repo.Exists(r.Context(), userID, appName)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to add blocked app", r))
		return
	}
	if exists {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "This app is already blocked", r))
		return
	}

	app := &models.BlockedApp{UserID: userID, AppName: appName}
	if err := h.repo.Create(r.Context(), app); err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "This app is already blocked", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to add blocked app", r))
		return
	}

	h.events.Publish(r.Context(), userID, models.WSEvent{
		Type:    models.EventBlocklistChanged,
		Payload: models.BlocklistChangedEvent{UserID: userID, Kind: "apps"},
	})
	writeJSON(w, http.StatusCreated, app)
}

func (h *BlockedAppHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	appID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid app ID", r))
		return
	}

	deleted, err := h.repo.Delete(r.Context(), appID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to remove blocked app", r))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "App not found", r))
		return
	}

	h.events.Publish(r.Context(), userID, models.WSEvent{
		Type:    models.EventBlocklistChanged,
		Payload: models.BlocklistChangedEvent{UserID: userID, Kind: "apps"},
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "App removed successfully"})
}
