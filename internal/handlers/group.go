package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/models"
)

type groupRepository interface {
	Create(ctx context.Context, g *models.Group) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Group, error)
	ListAvailable(ctx context.Context, userID uuid.UUID, search string) ([]*models.Group, error)
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error)
	AddMember(ctx context.Context, groupID, userID uuid.UUID) error
	Populate(ctx context.Context, groups ...*models.Group) error
}

type GroupHandler struct {
	repo   groupRepository
	events eventPublisher
}

func NewGroupHandler(repo groupRepository, events eventPublisher) *GroupHandler {
	if events == nil {
		events = noopPublisher{}
	}
	return &GroupHandler{repo: repo, events: events}
}

func (h *GroupHandler) MyGroups(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	groups, err := h.repo.ListForUser(r.Context(), userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch groups", r))
		return
	}

	if err := h.repo.Populate(r.Context(), groups...); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch groups", r))
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req models.CreateGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"name": "Group name is required"}, r))
		return
	}

	group := &models.Group{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CreatorID:   userID,
	}

	if err := h.repo.Create(r.Context(), group); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create group", r))
		return
	}

	if err := h.repo.Populate(r.Context(), group); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to create group", r))
		return
	}

	writeJSON(w, http.StatusCreated, group)
}

func (h *GroupHandler) Available(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	search := r.URL.Query().Get("search")

	groups, err := h.repo.ListAvailable(r.Context(), userID, search)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch groups", r))
		return
	}

	if err := h.repo.Populate(r.Context(), groups...); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to fetch groups", r))
		return
	}

	writeJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	groupID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid group ID", r))
		return
	}

	group, err := h.repo.GetByID(r.Context(), groupID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Group not found", r))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to join group", r))
		return
	}

	member, err := h.repo.IsMember(r.Context(), groupID, userID)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to join group", r))
		return
	}
	if member {
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", "Already a member of this group", r))
		return
	}

	if err := h.repo.AddMember(r.Context(), groupID, userID); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to join group", r))
		return
	}

	if err := h.repo.Populate(r.Context(), group); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to join group", r))
		return
	}

	h.events.Publish(r.Context(), userID, models.WSEvent{Type: models.EventGroupJoined, Payload: group})
	writeJSON(w, http.StatusOK, group)
}
