package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todo_app/internal/app/service"
	"todo_app/internal/common"
	"todo_app/internal/common/security"
	"todo_app/internal/domain/model"
	"todo_app/internal/domain/repository"
)

// Minimal in-memory repositories so the full middleware/handler/service
// stack is exercised without PostgreSQL.

type stubUserRepo struct {
	users map[string]*model.User
}

func (r *stubUserRepo) Create(_ context.Context, user *model.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

type stubTodoRepo struct {
	users *stubUserRepo
	todos map[string]*model.Todo
	seq   int
}

func (r *stubTodoRepo) Create(_ context.Context, todo *model.Todo) error {
	r.seq++
	todo.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	todo.UpdatedAt = todo.CreatedAt
	cp := *todo
	r.todos[todo.ID] = &cp
	return nil
}

func (r *stubTodoRepo) find(id string) (*model.Todo, error) {
	t, ok := r.todos[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	if owner, ok := r.users.users[t.UserID]; ok {
		cp.Owner = &model.TodoOwner{Name: owner.Name, Email: owner.Email, Role: owner.Role}
	}
	return &cp, nil
}

func (r *stubTodoRepo) FindByID(_ context.Context, id string) (*model.Todo, error) {
	return r.find(id)
}

func (r *stubTodoRepo) list(filter func(*model.Todo) bool) []model.Todo {
	out := []model.Todo{}
	for id, t := range r.todos {
		if filter(t) {
			cp, _ := r.find(id)
			out = append(out, *cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *stubTodoRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Todo, error) {
	return r.list(func(t *model.Todo) bool { return t.UserID == ownerID }), nil
}

func (r *stubTodoRepo) ListAll(_ context.Context) ([]model.Todo, error) {
	return r.list(func(*model.Todo) bool { return true }), nil
}

func (r *stubTodoRepo) Update(_ context.Context, id string, patch repository.TodoPatch) error {
	t, ok := r.todos[id]
	if !ok {
		return common.ErrNotFound
	}
	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = patch.Description
	}
	if patch.Status != nil {
		t.Status = *patch.Status
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (r *stubTodoRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.todos[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}

type fixture struct {
	router http.Handler
	tokens *security.TokenAuth
	users  *stubUserRepo
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	users := &stubUserRepo{users: make(map[string]*model.User)}
	todos := &stubTodoRepo{users: users, todos: make(map[string]*model.Todo)}
	tokens := security.NewTokenAuth([]byte("test-secret"), time.Hour)
	authService := service.NewAuthService(users, tokens, nil)
	todoService := service.NewTodoService(todos)
	return &fixture{
		router: NewRouter(tokens, authService, todoService, nil, 1000),
		tokens: tokens,
		users:  users,
	}
}

// tokenFor provisions a user row for the given role and returns a bearer
// token for it. Manager and admin rows exist only via seeding in
// production, mirrored here by writing to the repository directly.
func (f *fixture) tokenFor(t *testing.T, id string, role model.Role) string {
	t.Helper()
	email := id + "@example.com"
	f.users.users[id] = &model.User{ID: id, Email: email, Name: id, Role: role}
	token, err := f.tokens.GenerateToken(model.Identity{ID: id, Email: email, Role: role})
	require.NoError(t, err)
	return token
}

func (f *fixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.RemoteAddr = "10.0.0.1:12345"
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeTodo(t *testing.T, rec *httptest.ResponseRecorder) model.Todo {
	t.Helper()
	var todo model.Todo
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todo))
	return todo
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignupFlow(t *testing.T) {
	f := newFixture(t)
	body := map[string]string{"name": "Alice", "email": "alice@example.com", "password": "password123"}

	rec := f.do(t, http.MethodPost, "/api/v1/auth/signup", "", body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp struct {
		User  model.User `json:"user"`
		Token string     `json:"token"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, model.RoleUser, resp.User.Role)
	require.NotEmpty(t, resp.Token)
	assert.NotContains(t, rec.Body.String(), "password")

	// Duplicate email conflicts and creates no second row.
	rec = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Len(t, f.users.users, 1)

	// Missing fields fail validation.
	rec = f.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{"email": "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// The issued token passes verification.
	rec = f.do(t, http.MethodGet, "/api/v1/auth/verify", resp.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginFlow(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/v1/auth/signup", "",
		map[string]string{"name": "Alice", "email": "alice@example.com", "password": "password123"})

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "password123"})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestVerifyRequiresToken(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/auth/verify", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/auth/verify", "garbage.token.value", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestTodosRequireAuthentication(t *testing.T) {
	f := newFixture(t)
	for _, method := range []string{http.MethodGet, http.MethodPost} {
		rec := f.do(t, method, "/api/v1/todos", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, method)
	}
}

func TestCreateTodo(t *testing.T) {
	f := newFixture(t)
	userTok := f.tokenFor(t, "user-a", model.RoleUser)

	rec := f.do(t, http.MethodPost, "/api/v1/todos", userTok, map[string]string{"title": "Task"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	todo := decodeTodo(t, rec)
	assert.Equal(t, model.StatusDraft, todo.Status)
	assert.Equal(t, "user-a", todo.UserID)

	// Missing title.
	rec = f.do(t, http.MethodPost, "/api/v1/todos", userTok, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Managers and admins are not producers.
	for _, role := range []model.Role{model.RoleManager, model.RoleAdmin} {
		tok := f.tokenFor(t, "actor-"+string(role), role)
		rec := f.do(t, http.MethodPost, "/api/v1/todos", tok, map[string]string{"title": "Task"})
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}
}

func TestTodoVisibilityAndDeletion(t *testing.T) {
	f := newFixture(t)
	aTok := f.tokenFor(t, "user-a", model.RoleUser)
	bTok := f.tokenFor(t, "user-b", model.RoleUser)
	mgrTok := f.tokenFor(t, "mgr-1", model.RoleManager)
	admTok := f.tokenFor(t, "adm-1", model.RoleAdmin)

	rec := f.do(t, http.MethodPost, "/api/v1/todos", aTok, map[string]string{"title": "Draft task"})
	require.Equal(t, http.StatusCreated, rec.Code)
	todo := decodeTodo(t, rec)
	path := "/api/v1/todos/" + todo.ID

	// Another user can neither view nor delete; a manager views but
	// cannot delete.
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodGet, path, bTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, path, bTok, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, path, mgrTok, nil).Code)
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, path, mgrTok, nil).Code)

	// Admin delete succeeds; the todo is then gone.
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, path, admTok, nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, path, aTok, nil).Code)

	// Unknown id is 404, not 403.
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/v1/todos/missing", aTok, nil).Code)
}

func TestOwnerDeleteOnlyWhileDraft(t *testing.T) {
	f := newFixture(t)
	aTok := f.tokenFor(t, "user-a", model.RoleUser)
	admTok := f.tokenFor(t, "adm-1", model.RoleAdmin)

	rec := f.do(t, http.MethodPost, "/api/v1/todos", aTok, map[string]string{"title": "Task"})
	require.Equal(t, http.StatusCreated, rec.Code)
	todo := decodeTodo(t, rec)
	path := "/api/v1/todos/" + todo.ID

	rec = f.do(t, http.MethodPatch, path, aTok, map[string]string{"status": "completed"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, model.StatusCompleted, decodeTodo(t, rec).Status)

	// Out of draft the owner may no longer delete; the admin still may.
	assert.Equal(t, http.StatusForbidden, f.do(t, http.MethodDelete, path, aTok, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodDelete, path, admTok, nil).Code)
}

func TestUpdateDeniedForNonOwners(t *testing.T) {
	f := newFixture(t)
	aTok := f.tokenFor(t, "user-a", model.RoleUser)

	rec := f.do(t, http.MethodPost, "/api/v1/todos", aTok, map[string]string{"title": "Task"})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/v1/todos/" + decodeTodo(t, rec).ID

	for _, role := range []model.Role{model.RoleUser, model.RoleManager, model.RoleAdmin} {
		tok := f.tokenFor(t, "other-"+string(role), role)
		rec := f.do(t, http.MethodPatch, path, tok, map[string]string{"title": "hijack"})
		assert.Equal(t, http.StatusForbidden, rec.Code, role)
	}
}

func TestListScoping(t *testing.T) {
	f := newFixture(t)
	aTok := f.tokenFor(t, "user-a", model.RoleUser)
	bTok := f.tokenFor(t, "user-b", model.RoleUser)
	mgrTok := f.tokenFor(t, "mgr-1", model.RoleManager)

	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/todos", aTok, map[string]string{"title": "a1"}).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/todos", aTok, map[string]string{"title": "a2"}).Code)
	require.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/v1/todos", bTok, map[string]string{"title": "b1"}).Code)

	var todos []model.Todo
	rec := f.do(t, http.MethodGet, "/api/v1/todos", aTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	assert.Len(t, todos, 2)

	// Manager sees every todo from every user, unfiltered.
	rec = f.do(t, http.MethodGet, "/api/v1/todos", mgrTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &todos))
	assert.Len(t, todos, 3)
}

func TestGetTodoIncludesPermissions(t *testing.T) {
	f := newFixture(t)
	aTok := f.tokenFor(t, "user-a", model.RoleUser)

	rec := f.do(t, http.MethodPost, "/api/v1/todos", aTok, map[string]string{"title": "Task"})
	require.Equal(t, http.StatusCreated, rec.Code)
	path := "/api/v1/todos/" + decodeTodo(t, rec).ID

	rec = f.do(t, http.MethodGet, path, aTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var detail struct {
		Permissions struct {
			CanUpdate    bool `json:"canUpdate"`
			CanDelete    bool `json:"canDelete"`
			CanDeleteAny bool `json:"canDeleteAny"`
		} `json:"permissions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &detail))
	assert.True(t, detail.Permissions.CanUpdate)
	assert.True(t, detail.Permissions.CanDelete)
	assert.False(t, detail.Permissions.CanDeleteAny)
}
