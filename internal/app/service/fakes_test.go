package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"todo_app/internal/common"
	"todo_app/internal/domain/model"
	"todo_app/internal/domain/repository"
)

// In-memory repository fakes used across the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	users map[string]*model.User // by ID
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*model.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
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

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *memUserRepo) delete(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.users, id)
}

type memTodoRepo struct {
	mu     sync.Mutex
	todos  map[string]*model.Todo
	owners map[string]model.TodoOwner // by user ID, for the join fake
	seq    int
}

func newMemTodoRepo() *memTodoRepo {
	return &memTodoRepo{
		todos:  make(map[string]*model.Todo),
		owners: make(map[string]model.TodoOwner),
	}
}

func (r *memTodoRepo) registerOwner(userID string, owner model.TodoOwner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.owners[userID] = owner
}

func (r *memTodoRepo) Create(_ context.Context, todo *model.Todo) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	todo.CreatedAt = time.Now().Add(time.Duration(r.seq) * time.Millisecond)
	todo.UpdatedAt = todo.CreatedAt
	cp := *todo
	r.todos[todo.ID] = &cp
	return nil
}

func (r *memTodoRepo) find(id string) (*model.Todo, error) {
	t, ok := r.todos[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *t
	if owner, ok := r.owners[t.UserID]; ok {
		o := owner
		cp.Owner = &o
	}
	return &cp, nil
}

func (r *memTodoRepo) FindByID(_ context.Context, id string) (*model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.find(id)
}

func (r *memTodoRepo) list(filter func(*model.Todo) bool) []model.Todo {
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

func (r *memTodoRepo) ListByOwner(_ context.Context, ownerID string) ([]model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(t *model.Todo) bool { return t.UserID == ownerID }), nil
}

func (r *memTodoRepo) ListAll(_ context.Context) ([]model.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(*model.Todo) bool { return true }), nil
}

func (r *memTodoRepo) Update(_ context.Context, id string, patch repository.TodoPatch) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.todos[id]
	if !ok {
		return common.ErrNotFound
	}
	if patch.Empty() {
		return fmt.Errorf("empty todo patch: %w", common.ErrBadRequest)
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

func (r *memTodoRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.todos, id)
	return nil
}
