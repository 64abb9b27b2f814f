// Command seed applies the schema and loads the demo accounts and sample
// todos. Signup only ever produces user-role accounts, so this is also the
// way manager and admin accounts come to exist.
package main

import (
	"context"
	"database/sql"
	"log"

	"todo_app/internal/common/security"
	"todo_app/internal/domain/model"
	"todo_app/internal/platform/config"
	"todo_app/internal/platform/database"
)

const demoPassword = "password123"

type seedUser struct {
	id    string
	email string
	name  string
	role  model.Role
}

var seedUsers = []seedUser{
	{"550e8400-e29b-41d4-a716-446655440000", "user@example.com", "Regular User", model.RoleUser},
	{"550e8400-e29b-41d4-a716-446655440001", "manager@example.com", "Manager User", model.RoleManager},
	{"550e8400-e29b-41d4-a716-446655440002", "admin@example.com", "Admin User", model.RoleAdmin},
}

type seedTodo struct {
	id          string
	title       string
	description string
	status      model.TodoStatus
	userID      string
}

var seedTodos = []seedTodo{
	{"660e8400-e29b-41d4-a716-446655440000", "Complete project", "Finish the todo app", model.StatusInProgress, seedUsers[0].id},
	{"660e8400-e29b-41d4-a716-446655440001", "Write documentation", "Document the access rules", model.StatusDraft, seedUsers[0].id},
	{"660e8400-e29b-41d4-a716-446655440002", "Review code", "Review team member code", model.StatusCompleted, seedUsers[1].id},
	{"660e8400-e29b-41d4-a716-446655440003", "Deploy application", "Deploy to production server", model.StatusInProgress, seedUsers[2].id},
}

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	defer db.Close()

	ctx := context.Background()
	if err := database.Migrate(ctx, db); err != nil {
		log.Fatalf("Schema migration failed: %v", err)
	}

	if err := seed(ctx, db); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("Database setup completed successfully!")
	log.Println("Test accounts (password: " + demoPassword + "):")
	for _, u := range seedUsers {
		log.Printf("  %-7s %s", u.role, u.email)
	}
}

func seed(ctx context.Context, db *sql.DB) error {
	hash, err := security.HashPassword(demoPassword)
	if err != nil {
		return err
	}

	for _, u := range seedUsers {
		_, err := db.ExecContext(ctx,
			`INSERT INTO users (id, email, name, hashed_password, role)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			u.id, u.email, u.name, hash, string(u.role))
		if err != nil {
			return err
		}
	}

	for _, t := range seedTodos {
		_, err := db.ExecContext(ctx,
			`INSERT INTO todos (id, title, description, status, user_id)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (id) DO NOTHING`,
			t.id, t.title, t.description, string(t.status), t.userID)
		if err != nil {
			return err
		}
	}
	return nil
}
