// Package policy decides, from actor and resource attributes alone, whether
// a todo operation is permitted. Every function is pure and total: no I/O,
// no errors, a definite answer for any input. Unknown roles deny everything.
package policy

import (
	"todo_app/internal/domain/model"
)

// Scope is the subset of todos a role may enumerate.
type Scope int

const (
	ScopeOwn Scope = iota // only todos owned by the actor
	ScopeAll              // every todo in the system
)

// CanView reports whether the actor may read a todo owned by ownerID.
// Managers and admins may read anything; users only their own.
func CanView(role model.Role, ownerID, actorID string) bool {
	switch role {
	case model.RoleManager, model.RoleAdmin:
		return true
	case model.RoleUser:
		return ownerID == actorID
	}
	return false
}

// CanCreate reports whether the role may create todos. Only users produce
// todos; managers and admins are reviewers.
func CanCreate(role model.Role) bool {
	return role == model.RoleUser
}

// CanUpdate reports whether the actor may modify a todo owned by ownerID.
// Only the owning user may, and only if the actor holds the user role.
func CanUpdate(role model.Role, ownerID, actorID string) bool {
	if role == model.RoleUser {
		return ownerID == actorID
	}
	return false
}

// CanDelete reports whether the actor may remove a todo. Admins may delete
// anything; a user may delete an owned todo still in draft; managers never
// delete.
func CanDelete(role model.Role, ownerID, actorID string, status model.TodoStatus) bool {
	switch role {
	case model.RoleAdmin:
		return true
	case model.RoleUser:
		return ownerID == actorID && status == model.StatusDraft
	}
	return false
}

// ListScopeFor returns the enumeration scope for a role.
func ListScopeFor(role model.Role) Scope {
	switch role {
	case model.RoleManager, model.RoleAdmin:
		return ScopeAll
	}
	return ScopeOwn
}

// Permissions is the capability flag set consumed by presentation logic.
type Permissions struct {
	CanViewAll   bool `json:"canViewAll"`
	CanCreate    bool `json:"canCreate"`
	CanUpdate    bool `json:"canUpdate"`
	CanDelete    bool `json:"canDelete"`
	CanDeleteAny bool `json:"canDeleteAny"`
}

// Summary collapses the per-action predicates into Permissions for one
// (actor, todo) pair. It is derived from the predicates above so the two
// can never disagree. CanDelete covers the owner-draft path; CanDeleteAny
// is the admin's unconditional delete right.
func Summary(role model.Role, ownerID, actorID string, status model.TodoStatus) Permissions {
	return Permissions{
		CanViewAll:   ListScopeFor(role) == ScopeAll,
		CanCreate:    CanCreate(role),
		CanUpdate:    CanUpdate(role, ownerID, actorID),
		CanDelete:    role != model.RoleAdmin && CanDelete(role, ownerID, actorID, status),
		CanDeleteAny: role == model.RoleAdmin && CanDelete(role, ownerID, actorID, status),
	}
}
