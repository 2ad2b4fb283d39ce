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

type blockedSiteRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.BlockedSite, error)
	Exists(ctx context.Context, userID uuid.UUID, url string) (bool, error)
	Create(ctx context.Context, s *models.BlockedSite) error
	Delete(ctx context.Context, id, userID uuid.UUID) (bool, error)
}

type BlockedSiteHandler struct {
	repo   blockedSiteRepository
	events eventPublisher
}

func NewBlockedSiteHandler(repo blockedSiteRepository, events eventPublisher) *BlockedSiteHandler {
	if events == nil {
		events = noopPublisher{}
	}
	return &BlockedSiteHandler{repo: repo, events: events}
}

func (h *BlockedSiteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	sites, err := h.repo.ListByUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch blocked sites", r))
		return
	}

	writeJSON(w, http.StatusOK, sites)
}

func (h *BlockedSiteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.AddBlockedSiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	url := strings.ToLower(strings.TrimSpace(req.URL))
	if url == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"url": "URL is required"}, r))
		return
	}

	exists, err := h.repo.Exists(r.Context(), userID, url)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to add blocked site", r))
		return
	}
	if exists {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "This website is already blocked", r))
		return
	}

	site := &models.BlockedSite{UserID: userID, URL: url}
	if err := h.repo.Create(r.Context(), site); err != nil {
		if isUniqueViolation(err) {
			writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "This website is already blocked", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to add blocked site", r))
		return
	}

	h.events.Publish(r.Context(), userID, models.WSEvent{
		Type:    models.EventBlocklistChanged,
		Payload: models.BlocklistChangedEvent{UserID: userID, Kind: "sites"},
	})
	writeJSON(w, http.StatusCreated, site)
}

func (h *BlockedSiteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	siteID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid site ID", r))
		return
	}

	deleted, err := h.repo.Delete(r.Context(), siteID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to remove blocked site", r))
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Site not found", r))
		return
	}

	h.events.Publish(r.Context(), userID, models.WSEvent{
		Type:    models.EventBlocklistChanged,
		Payload: models.BlocklistChangedEvent{UserID: userID, Kind: "sites"},
	})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Site removed successfully"})
}
