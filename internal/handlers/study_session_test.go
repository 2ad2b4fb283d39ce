package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/models"
)

type fakeSessionRepo struct {
	sessions map[uuid.UUID]*models.StudySession
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]*models.StudySession)}
}

func (f *fakeSessionRepo) Start(ctx context.Context, userID uuid.UUID) (*models.StudySession, error) {
	for _, s := range f.sessions {
		if s.UserID == userID && s.EndedAt == nil {
			now := time.Now()
			s.EndedAt = &now
			s.Completed = true
			s.DurationMinutes = models.SessionDuration(s.StartedAt, now)
		}
	}
	s := &models.StudySession{
		ID:        uuid.New(),
		UserID:    userID,
		StartedAt: time.Now(),
	}
	f.sessions[s.ID] = s
	return s, nil
}

func (f *fakeSessionRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) End(ctx context.Context, id uuid.UUID) (*models.StudySession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	if s.EndedAt == nil {
		now := time.Now()
		s.EndedAt = &now
		s.DurationMinutes = models.SessionDuration(s.StartedAt, now)
	}
	s.Completed = true
	copied := *s
	return &copied, nil
}

func (f *fakeSessionRepo) ListSince(ctx context.Context, userID uuid.UUID, since time.Time) ([]*models.StudySession, error) {
	out := make([]*models.StudySession, 0)
	for _, s := range f.sessions {
		if s.UserID == userID && !s.StartedAt.Before(since) {
			out = append(out, s)
		}
	}
	return out, nil
}

func sessionRouter(repo sessionRepository) http.Handler {
	h := NewStudySessionHandler(repo, nil)
	r := chi.NewRouter()
	r.Post("/study-sessions/start", h.Start)
	r.Put("/study-sessions/end/{id}", h.End)
	r.Get("/study-sessions/today", h.Today)
	return r
}

func authedRequest(method, target string, userID uuid.UUID) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestStartSession_ReturnsOpenSession(t *testing.T) {
	repo := newFakeSessionRepo()
	r := sessionRouter(repo)
	userID := uuid.New()

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(http.MethodPost, "/study-sessions/start", userID))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}

	var session models.StudySession
	if err := json.NewDecoder(rr.Body).Decode(&session); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if session.Completed {
		t.Error("Expected new session to not be completed")
	}
	if session.EndedAt != nil {
		t.Error("Expected new session to have no end time")
	}
	if session.UserID != userID {
		t.Errorf("Expected session owned by %s, got %s", userID, session.UserID)
	}
}

func TestStartSession_ClosesPreviousOpenSession(t *testing.T) {
	repo := newFakeSessionRepo()
	r := sessionRouter(repo)
	userID := uuid.New()

	first := httptest.NewRecorder()
	r.ServeHTTP(first, authedRequest(http.MethodPost, "/study-sessions/start", userID))

	var firstSession models.StudySession
	json.NewDecoder(first.Body).Decode(&firstSession)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, authedRequest(http.MethodPost, "/study-sessions/start", userID))

	stored := repo.sessions[firstSession.ID]
	if stored.EndedAt == nil || !stored.Completed {
		t.Error("Expected previous open session to be closed by a new start")
	}
}

func TestEndSession_CompletesSession(t *testing.T) {
	repo := newFakeSessionRepo()
	r := sessionRouter(repo)
	userID := uuid.New()

	started, _ := repo.Start(context.Background(), userID)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(http.MethodPut, "/study-sessions/end/"+started.ID.String(), userID))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var session models.StudySession
	if err := json.NewDecoder(rr.Body).Decode(&session); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if !session.Completed {
		t.Error("Expected ended session to be completed")
	}
	if session.EndedAt == nil {
		t.Error("Expected ended session to have an end time")
	}
	if session.DurationMinutes < 0 {
		t.Errorf("Expected non-negative duration, got %d", session.DurationMinutes)
	}
}

func TestEndSession_DurationIsFlooredWholeMinutes(t *testing.T) {
	tests := []struct {
		name    string
		elapsed time.Duration
		want    int
	}{
		{"under a minute is zero", 45 * time.Second, 0},
		{"ninety seconds is one", 90 * time.Second, 1},
		{"two and a half minutes is two", 150 * time.Second, 2},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			repo := newFakeSessionRepo()
			r := sessionRouter(repo)
			userID := uuid.New()

			started, _ := repo.Start(context.Background(), userID)
			repo.sessions[started.ID].StartedAt = time.Now().Add(-tc.elapsed)

			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, authedRequest(http.MethodPut, "/study-sessions/end/"+started.ID.String(), userID))

			if rr.Code != http.StatusOK {
				t.Fatalf("Expected status 200, got %d", rr.Code)
			}

			var session models.StudySession
			if err := json.NewDecoder(rr.Body).Decode(&session); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if session.DurationMinutes != tc.want {
				t.Errorf("Expected %d minute(s) for %v elapsed, got %d", tc.want, tc.elapsed, session.DurationMinutes)
			}
		})
	}
}

func TestEndSession_IsIdempotent(t *testing.T) {
	repo := newFakeSessionRepo()
	r := sessionRouter(repo)
	userID := uuid.New()

	started, _ := repo.Start(context.Background(), userID)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, authedRequest(http.MethodPut, "/study-sessions/end/"+started.ID.String(), userID))

	var firstEnd models.StudySession
	json.NewDecoder(first.Body).Decode(&firstEnd)

	second := httptest.NewRecorder()
	r.ServeHTTP(second, authedRequest(http.MethodPut, "/study-sessions/end/"+started.ID.String(), userID))

	var secondEnd models.StudySession
	json.NewDecoder(second.Body).Decode(&secondEnd)

	if !firstEnd.EndedAt.Equal(*secondEnd.EndedAt) {
		t.Error("Expected second end to keep the stored end time")
	}
	if firstEnd.DurationMinutes != secondEnd.DurationMinutes {
		t.Error("Expected second end to keep the stored duration")
	}
}

func TestEndSession_NotFound(t *testing.T) {
	repo := newFakeSessionRepo()
	r := sessionRouter(repo)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(http.MethodPut, "/study-sessions/end/"+uuid.NewString(), uuid.New()))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}
}

func TestEndSession_ForbiddenForOtherUser(t *testing.T) {
	repo := newFakeSessionRepo()
	r := sessionRouter(repo)
	owner := uuid.New()
	intruder := uuid.New()

	started, _ := repo.Start(context.Background(), owner)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(http.MethodPut, "/study-sessions/end/"+started.ID.String(), intruder))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected status 403, got %d", rr.Code)
	}

	stored := repo.sessions[started.ID]
	if stored.EndedAt != nil || stored.Completed {
		t.Error("Expected forbidden end to leave the record unmutated")
	}
}

func TestTodaySessions_OnlyReturnsOwn(t *testing.T) {
	repo := newFakeSessionRepo()
	r := sessionRouter(repo)
	userA := uuid.New()
	userB := uuid.New()

	repo.Start(context.Background(), userA)
	repo.Start(context.Background(), userB)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, authedRequest(http.MethodGet, "/study-sessions/today", userA))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var sessions []models.StudySession
	if err := json.NewDecoder(rr.Body).Decode(&sessions); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(sessions) != 1 {
		t.Fatalf("Expected 1 session, got %d", len(sessions))
	}
	if sessions[0].UserID != userA {
		t.Errorf("Expected session owned by %s, got %s", userA, sessions[0].UserID)
	}
}
