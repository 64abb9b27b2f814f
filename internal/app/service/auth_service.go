package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"

	"todo_app/internal/common"
	"todo_app/internal/common/security"
	"todo_app/internal/common/validator"
	"todo_app/internal/domain/model"
	"todo_app/internal/domain/repository"
	"todo_app/internal/platform/mail"
)

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *security.TokenAuth
	mailer   *mail.Mailer // nil when SMTP is not configured
}

func NewAuthService(userRepo repository.UserRepository, tokens *security.TokenAuth, mailer *mail.Mailer) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens, mailer: mailer}
}

type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type AuthResponse struct {
	User  *model.User `json:"user"`
	Token string      `json:"token"`
}

// Signup registers a new account. Every signup gets the user role; manager
// and admin accounts are provisioned out of band (see cmd/seed). A
// duplicate email surfaces as common.ErrConflict.
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	v := validator.New()
	v.CheckName(req.Name)
	v.CheckEmail(req.Email)
	v.CheckPassword(req.Password)
	if err := v.ToError(); err != nil {
		return nil, err
	}

	hashedPassword, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Email:          req.Email,
		Name:           req.Name,
		HashedPassword: hashedPassword,
		Role:           model.RoleUser,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.GenerateToken(model.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	if s.mailer != nil {
		go func() {
			if err := s.mailer.SendWelcome(user.Email, user.Name); err != nil {
				log.Printf("WARN: failed to send welcome mail to %s: %v", user.Email, err)
			}
		}()
	}

	user.HashedPassword = "" // Clear before returning
	return &AuthResponse{User: user, Token: token}, nil
}

// Login authenticates by email and password. Unknown email and bad
// password both come back as common.ErrUnauthorized so the response never
// reveals which one failed.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, common.ErrBadRequest
	}

	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !security.CheckPasswordHash(req.Password, user.HashedPassword) {
		return nil, common.ErrUnauthorized
	}

	token, err := s.tokens.GenerateToken(model.Identity{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	user.HashedPassword = ""
	return &AuthResponse{User: user, Token: token}, nil
}

// ResolveIdentity returns the identity embedded in a token, or nil on any
// verification failure.
func (s *AuthService) ResolveIdentity(tokenString string) *model.Identity {
	return s.tokens.ResolveIdentity(tokenString)
}

// Verify loads the current public user row for an authenticated actor. A
// token can outlive its user row, so a missing row is an auth failure,
// not a 404.
func (s *AuthService) Verify(ctx context.Context, actorID string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	user.HashedPassword = ""
	return user, nil
}
