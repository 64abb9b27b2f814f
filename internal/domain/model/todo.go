package model

import (
	"time"
)

type TodoStatus string

const (
	StatusDraft      TodoStatus = "draft"
	StatusInProgress TodoStatus = "in_progress"
	StatusCompleted  TodoStatus = "completed"
)

// Valid reports whether s is one of the three known statuses.
func (s TodoStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

type Todo struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description *string    `json:"description"`
	Status      TodoStatus `json:"status"`
	UserID      string     `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Owner       *TodoOwner `json:"user,omitempty"` // Join-fetched for display
}

// TodoOwner is the owning user's public attributes, join-fetched on every
// todo read so ownership checks and display never need a second lookup.
type TodoOwner struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
