package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"todo_app/internal/common"
	"todo_app/internal/domain/model"
)

// TodoPatch is a partial update; nil fields are left untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	Status      *model.TodoStatus
}

func (p TodoPatch) Empty() bool {
	return p.Title == nil && p.Description == nil && p.Status == nil
}

type TodoRepository interface {
	Create(ctx context.Context, todo *model.Todo) error
	FindByID(ctx context.Context, id string) (*model.Todo, error)
	ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error)
	ListAll(ctx context.Context) ([]model.Todo, error)
	Update(ctx context.Context, id string, patch TodoPatch) error
	Delete(ctx context.Context, id string) error
}

type pgTodoRepository struct {
	db *sql.DB
}

func NewPgTodoRepository(db *sql.DB) TodoRepository {
	return &pgTodoRepository{db: db}
}

// Every read joins the owning user's public attributes so callers get
// ownership data in one round trip.
const todoSelect = `SELECT t.id, t.title, t.description, t.status, t.user_id, t.created_at, t.updated_at,
	       u.name, u.email, u.role
	  FROM todos t
	  JOIN users u ON t.user_id = u.id`

func (r *pgTodoRepository) Create(ctx context.Context, todo *model.Todo) error {
	query := `INSERT INTO todos (id, title, description, status, user_id)
	          VALUES ($1, $2, $3, $4, $5)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		todo.ID, todo.Title, todo.Description, string(todo.Status), todo.UserID,
	).Scan(&todo.CreatedAt, &todo.UpdatedAt)
	if err != nil {
		return fmt.Errorf("pgTodoRepository.Create: %w", err)
	}
	return nil
}

func scanTodo(row interface{ Scan(...any) error }) (*model.Todo, error) {
	todo := &model.Todo{Owner: &model.TodoOwner{}}
	err := row.Scan(
		&todo.ID, &todo.Title, &todo.Description, &todo.Status, &todo.UserID,
		&todo.CreatedAt, &todo.UpdatedAt,
		&todo.Owner.Name, &todo.Owner.Email, &todo.Owner.Role,
	)
	if err != nil {
		return nil, err
	}
	return todo, nil
}

func (r *pgTodoRepository) FindByID(ctx context.Context, id string) (*model.Todo, error) {
	todo, err := scanTodo(r.db.QueryRowContext(ctx, todoSelect+` WHERE t.id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("pgTodoRepository.FindByID: %w", err)
	}
	return todo, nil
}

func (r *pgTodoRepository) ListByOwner(ctx context.Context, ownerID string) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx, todoSelect+` WHERE t.user_id = $1 ORDER BY t.created_at DESC`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("pgTodoRepository.ListByOwner: %w", err)
	}
	return collectTodos(rows, "pgTodoRepository.ListByOwner")
}

func (r *pgTodoRepository) ListAll(ctx context.Context) ([]model.Todo, error) {
	rows, err := r.db.QueryContext(ctx, todoSelect+` ORDER BY t.created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("pgTodoRepository.ListAll: %w", err)
	}
	return collectTodos(rows, "pgTodoRepository.ListAll")
}

func collectTodos(rows *sql.Rows, op string) ([]model.Todo, error) {
	defer rows.Close()
	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		todos = append(todos, *todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return todos, nil
}

// Update applies the non-nil patch fields and bumps updated_at. There is
// no optimistic concurrency; last write wins.
func (r *pgTodoRepository) Update(ctx context.Context, id string, patch TodoPatch) error {
	sets := []string{}
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}
	if patch.Title != nil {
		sets = append(sets, "title = "+arg(*patch.Title))
	}
	if patch.Description != nil {
		sets = append(sets, "description = "+arg(*patch.Description))
	}
	if patch.Status != nil {
		sets = append(sets, "status = "+arg(string(*patch.Status)))
	}
	if len(sets) == 0 {
		return fmt.Errorf("empty todo patch: %w", common.ErrBadRequest)
	}
	sets = append(sets, "updated_at = now()")

	query := "UPDATE todos SET " + strings.Join(sets, ", ") + " WHERE id = " + arg(id)
	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("pgTodoRepository.Update: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTodoRepository.Update: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgTodoRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM todos WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("pgTodoRepository.Delete: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("pgTodoRepository.Delete: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}
