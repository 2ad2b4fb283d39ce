package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/focusplus/backend/internal/models"
	"github.com/focusplus/backend/internal/services"
)

type authService interface {
	Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*models.AuthResponse, error)
	Logout(ctx context.Context, refreshToken string) error
}

type AuthHandler struct {
	authService authService
}

func NewAuthHandler(authService authService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	auth, err := h.authService.Register(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, auth)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	auth, err := h.authService.Login(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, auth)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	auth, err := h.authService.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, auth)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.authService.Logout(r.Context(), req.RefreshToken); err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out successfully"})
}

// Shared helpers

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResp(code, message string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func errorRespWithFields(code, message string, fields map[string]string, r *http.Request) models.ErrorResponse {
	return models.ErrorResponse{
		Error: models.APIError{
			Code:      code,
			Message:   message,
			Fields:    fields,
			RequestID: r.Header.Get("X-Request-ID"),
		},
	}
}

func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch e := err.(type) {
	case *services.ValidationError:
		writeJSON(w, http.StatusBadRequest, errorRespWithFields("VALIDATION_ERROR", "Validation failed", e.Fields, r))
	case *services.ConflictError:
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", e.Message, r))
	case *services.NotFoundError:
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", e.Message, r))
	case *services.UnauthorizedError:
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", e.Message, r))
	case *services.ForbiddenError:
		writeJSON(w, http.StatusForbidden, errorResp("FORBIDDEN", e.Message, r))
	case *services.RateLimitError:
		writeJSON(w, http.StatusTooManyRequests, errorResp("RATE_LIMITED", e.Message, r))
	case *services.UpstreamError:
		writeJSON(w, http.StatusBadGateway, errorResp("UPSTREAM_ERROR", e.Message, r))
	default:
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "An unexpected error occurred", r))
	}
}
