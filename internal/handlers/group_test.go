package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/focusplus/backend/internal/middleware"
	"github.com/focusplus/backend/internal/models"
)

type fakeGroupRepo struct {
	groups  map[uuid.UUID]*models.Group
	members map[uuid.UUID][]uuid.UUID
	users   map[uuid.UUID]models.UserRef
}

func newFakeGroupRepo() *fakeGroupRepo {
	return &fakeGroupRepo{
		groups:  make(map[uuid.UUID]*models.Group),
		members: make(map[uuid.UUID][]uuid.UUID),
		users:   make(map[uuid.UUID]models.UserRef),
	}
}

func (f *fakeGroupRepo) addUser(username string) uuid.UUID {
	id := uuid.New()
	f.users[id] = models.UserRef{ID: id, Username: username, Email: username + "@example.com"}
	return id
}

func (f *fakeGroupRepo) Create(ctx context.Context, g *models.Group) error {
	g.ID = uuid.New()
	g.CreatedAt = time.Now()
	f.groups[g.ID] = g
	f.members[g.ID] = []uuid.UUID{g.CreatorID}
	return nil
}

func (f *fakeGroupRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Group, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	copied := *g
	return &copied, nil
}

func (f *fakeGroupRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]*models.Group, error) {
	out := make([]*models.Group, 0)
	for id, g := range f.groups {
		if g.CreatorID == userID || f.isMember(id, userID) {
			copied := *g
			out = append(out, &copied)
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeGroupRepo) ListAvailable(ctx context.Context, userID uuid.UUID, search string) ([]*models.Group, error) {
	out := make([]*models.Group, 0)
	for id, g := range f.groups {
		if f.isMember(id, userID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(g.Name), strings.ToLower(search)) {
			continue
		}
		copied := *g
		out = append(out, &copied)
	}
	sortNewestFirst(out)
	return out, nil
}

func (f *fakeGroupRepo) IsMember(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	return f.isMember(groupID, userID), nil
}

func (f *fakeGroupRepo) AddMember(ctx context.Context, groupID, userID uuid.UUID) error {
	if !f.isMember(groupID, userID) {
		f.members[groupID] = append(f.members[groupID], userID)
	}
	return nil
}

func (f *fakeGroupRepo) Populate(ctx context.Context, groups ...*models.Group) error {
	for _, g := range groups {
		g.Creator = f.users[g.CreatorID]
		refs := make([]models.UserRef, 0)
		for _, id := range f.members[g.ID] {
			refs = append(refs, f.users[id])
		}
		g.Members = refs
	}
	return nil
}

func (f *fakeGroupRepo) isMember(groupID, userID uuid.UUID) bool {
	for _, id := range f.members[groupID] {
		if id == userID {
			return true
		}
	}
	return false
}

func sortNewestFirst(groups []*models.Group) {
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].CreatedAt.After(groups[j].CreatedAt)
	})
}

func groupRouter(repo groupRepository) http.Handler {
	h := NewGroupHandler(repo, nil)
	r := chi.NewRouter()
	r.Get("/groups/my-groups", h.MyGroups)
	r.Post("/groups/create", h.Create)
	r.Get("/groups/available", h.Available)
	r.Post("/groups/join/{id}", h.Join)
	return r
}

func jsonRequest(method, target string, userID uuid.UUID, body interface{}) *http.Request {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, target, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	ctx := context.WithValue(req.Context(), middleware.UserIDKey, userID)
	return req.WithContext(ctx)
}

func TestCreateGroup_CreatorIsSoleMember(t *testing.T) {
	repo := newFakeGroupRepo()
	r := groupRouter(repo)
	creator := repo.addUser("alice")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(http.MethodPost, "/groups/create", creator,
		models.CreateGroupRequest{Name: "Math101", Description: "Calculus study group"}))

	if rr.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d", rr.Code)
	}

	var group models.Group
	if err := json.NewDecoder(rr.Body).Decode(&group); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if group.Creator.ID != creator {
		t.Errorf("Expected creator %s, got %s", creator, group.Creator.ID)
	}
	if len(group.Members) != 1 || group.Members[0].ID != creator {
		t.Errorf("Expected members=[creator], got %v", group.Members)
	}
}

func TestCreateGroup_RequiresName(t *testing.T) {
	repo := newFakeGroupRepo()
	r := groupRouter(repo)
	creator := repo.addUser("alice")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(http.MethodPost, "/groups/create", creator,
		models.CreateGroupRequest{Name: "   "}))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected status 400, got %d", rr.Code)
	}
}

func TestJoinGroup_AlreadyMemberConflict(t *testing.T) {
	repo := newFakeGroupRepo()
	r := groupRouter(repo)
	creator := repo.addUser("alice")

	group := &models.Group{Name: "Math101", CreatorID: creator}
	repo.Create(context.Background(), group)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(http.MethodPost, "/groups/join/"+group.ID.String(), creator, nil))

	if rr.Code != http.StatusConflict {
		t.Fatalf("Expected status 409, got %d", rr.Code)
	}
	if len(repo.members[group.ID]) != 1 {
		t.Error("Expected members set unchanged after conflicting join")
	}
}

func TestJoinGroup_NotFound(t *testing.T) {
	repo := newFakeGroupRepo()
	r := groupRouter(repo)
	user := repo.addUser("bob")

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(http.MethodPost, "/groups/join/"+uuid.NewString(), user, nil))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected status 404, got %d", rr.Code)
	}
}

func TestAvailableGroups_ExcludesMembershipAndFiltersByName(t *testing.T) {
	repo := newFakeGroupRepo()
	r := groupRouter(repo)
	alice := repo.addUser("alice")
	bob := repo.addUser("bob")

	study := &models.Group{Name: "Study Buddies", CreatorID: alice}
	repo.Create(context.Background(), study)
	chess := &models.Group{Name: "Chess Club", CreatorID: alice}
	repo.Create(context.Background(), chess)
	joined := &models.Group{Name: "Stu Crew", CreatorID: bob}
	repo.Create(context.Background(), joined)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, jsonRequest(http.MethodGet, "/groups/available?search=stu", bob, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d", rr.Code)
	}

	var groups []models.Group
	if err := json.NewDecoder(rr.Body).Decode(&groups); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	if len(groups) != 1 {
		t.Fatalf("Expected exactly one match, got %d", len(groups))
	}
	if groups[0].Name != "Study Buddies" {
		t.Errorf("Expected 'Study Buddies', got %q", groups[0].Name)
	}
}

func TestGroupLifecycle_CreateSeeJoin(t *testing.T) {
	repo := newFakeGroupRepo()
	r := groupRouter(repo)
	alice := repo.addUser("alice")
	bob := repo.addUser("bob")

	// Alice creates Math101
	create := httptest.NewRecorder()
	r.ServeHTTP(create, jsonRequest(http.MethodPost, "/groups/create", alice,
		models.CreateGroupRequest{Name: "Math101"}))

	var created models.Group
	json.NewDecoder(create.Body).Decode(&created)

	// Bob sees it as available
	avail := httptest.NewRecorder()
	r.ServeHTTP(avail, jsonRequest(http.MethodGet, "/groups/available", bob, nil))

	var available []models.Group
	json.NewDecoder(avail.Body).Decode(&available)
	if len(available) != 1 || available[0].ID != created.ID {
		t.Fatalf("Expected Bob to see Math101 as available, got %v", available)
	}

	// Bob joins
	join := httptest.NewRecorder()
	r.ServeHTTP(join, jsonRequest(http.MethodPost, "/groups/join/"+created.ID.String(), bob, nil))
	if join.Code != http.StatusOK {
		t.Fatalf("Expected status 200 on join, got %d", join.Code)
	}

	// Now it is in Bob's groups and no longer available
	mine := httptest.NewRecorder()
	r.ServeHTTP(mine, jsonRequest(http.MethodGet, "/groups/my-groups", bob, nil))

	var myGroups []models.Group
	json.NewDecoder(mine.Body).Decode(&myGroups)
	if len(myGroups) != 1 || myGroups[0].ID != created.ID {
		t.Fatalf("Expected Math101 in Bob's groups, got %v", myGroups)
	}

	availAfter := httptest.NewRecorder()
	r.ServeHTTP(availAfter, jsonRequest(http.MethodGet, "/groups/available", bob, nil))

	var availableAfter []models.Group
	json.NewDecoder(availAfter.Body).Decode(&availableAfter)
	if len(availableAfter) != 0 {
		t.Errorf("Expected no available groups after joining, got %v", availableAfter)
	}
}
