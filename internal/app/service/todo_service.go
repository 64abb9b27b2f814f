package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"todo_app/internal/common"
	"todo_app/internal/common/validator"
	"todo_app/internal/domain/model"
	"todo_app/internal/domain/policy"
	"todo_app/internal/domain/repository"
)

type TodoService struct {
	todoRepo repository.TodoRepository
}

func NewTodoService(todoRepo repository.TodoRepository) *TodoService {
	return &TodoService{todoRepo: todoRepo}
}

type CreateTodoRequest struct {
	Title       string           `json:"title"`
	Description *string          `json:"description,omitempty"`
	Status      model.TodoStatus `json:"status,omitempty"`
}

type UpdateTodoRequest struct {
	Title       *string           `json:"title,omitempty"`
	Description *string           `json:"description,omitempty"`
	Status      *model.TodoStatus `json:"status,omitempty"`
}

// TodoDetail is a todo plus the actor's capabilities on it, for
// presentation logic.
type TodoDetail struct {
	model.Todo
	Permissions policy.Permissions `json:"permissions"`
}

// loadAndAuthorize is the single gate every id-scoped operation goes
// through: load the todo (absent resource stays ErrNotFound), then ask the
// policy predicate; a denial is ErrForbidden.
func (s *TodoService) loadAndAuthorize(ctx context.Context, id string, allowed func(todo *model.Todo) bool) (*model.Todo, error) {
	todo, err := s.todoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !allowed(todo) {
		return nil, common.ErrForbidden
	}
	return todo, nil
}

// List returns the todos the actor may enumerate: everything for managers
// and admins, own todos for users.
func (s *TodoService) List(ctx context.Context, actor model.Identity) ([]model.Todo, error) {
	if policy.ListScopeFor(actor.Role) == policy.ScopeAll {
		return s.todoRepo.ListAll(ctx)
	}
	return s.todoRepo.ListByOwner(ctx, actor.ID)
}

func (s *TodoService) Create(ctx context.Context, actor model.Identity, req CreateTodoRequest) (*model.Todo, error) {
	if !policy.CanCreate(actor.Role) {
		return nil, fmt.Errorf("role %s cannot create todos: %w", actor.Role, common.ErrForbidden)
	}

	if req.Status == "" {
		req.Status = model.StatusDraft
	}
	v := validator.New()
	v.CheckCond(req.Title != "", "title", "must be provided")
	v.CheckCond(req.Status.Valid(), "status", "must be one of draft, in_progress, completed")
	if err := v.ToError(); err != nil {
		return nil, err
	}

	todo := &model.Todo{
		ID:          uuid.NewString(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		UserID:      actor.ID,
	}
	if err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo: %w", err)
	}
	// Re-read to pick up the join-fetched owner attributes.
	return s.todoRepo.FindByID(ctx, todo.ID)
}

func (s *TodoService) Get(ctx context.Context, actor model.Identity, id string) (*TodoDetail, error) {
	todo, err := s.loadAndAuthorize(ctx, id, func(t *model.Todo) bool {
		return policy.CanView(actor.Role, t.UserID, actor.ID)
	})
	if err != nil {
		return nil, err
	}
	return &TodoDetail{
		Todo:        *todo,
		Permissions: policy.Summary(actor.Role, todo.UserID, actor.ID, todo.Status),
	}, nil
}

func (s *TodoService) Update(ctx context.Context, actor model.Identity, id string, req UpdateTodoRequest) (*model.Todo, error) {
	v := validator.New()
	v.CheckCond(req.Title == nil || *req.Title != "", "title", "must not be empty")
	v.CheckCond(req.Status == nil || req.Status.Valid(), "status", "must be one of draft, in_progress, completed")
	v.CheckCond(req.Title != nil || req.Description != nil || req.Status != nil, "body", "must contain at least one field")
	if err := v.ToError(); err != nil {
		return nil, err
	}

	todo, err := s.loadAndAuthorize(ctx, id, func(t *model.Todo) bool {
		return policy.CanUpdate(actor.Role, t.UserID, actor.ID)
	})
	if err != nil {
		return nil, err
	}

	patch := repository.TodoPatch{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
	}
	if err := s.todoRepo.Update(ctx, todo.ID, patch); err != nil {
		return nil, fmt.Errorf("failed to update todo: %w", err)
	}
	return s.todoRepo.FindByID(ctx, todo.ID)
}

func (s *TodoService) Delete(ctx context.Context, actor model.Identity, id string) error {
	todo, err := s.loadAndAuthorize(ctx, id, func(t *model.Todo) bool {
		return policy.CanDelete(actor.Role, t.UserID, actor.ID, t.Status)
	})
	if err != nil {
		return err
	}
	return s.todoRepo.Delete(ctx, todo.ID)
}
