package security

import (
	"context"
	"errors"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"

	"todo_app/internal/domain/model"
)

// TokenAuth issues and verifies the bearer tokens carrying an Identity.
// Tokens are self-contained (id, email, role) and expire after a fixed
// window; expiry is the only invalidation path, there is no revocation.
type TokenAuth struct {
	ja     *jwtauth.JWTAuth
	expiry time.Duration
}

func NewTokenAuth(secret []byte, expiry time.Duration) *TokenAuth {
	return &TokenAuth{
		ja:     jwtauth.New("HS256", secret, nil),
		expiry: expiry,
	}
}

// JWTAuth exposes the underlying verifier for jwtauth middleware wiring.
func (t *TokenAuth) JWTAuth() *jwtauth.JWTAuth {
	return t.ja
}

func (t *TokenAuth) GenerateToken(identity model.Identity) (string, error) {
	claims := jwt.MapClaims{
		"user_id": identity.ID,
		"email":   identity.Email,
		"role":    string(identity.Role),
		"exp":     time.Now().Add(t.expiry).Unix(),
		"iat":     time.Now().Unix(),
	}
	_, tokenString, err := t.ja.Encode(claims)
	return tokenString, err
}

// ResolveIdentity verifies signature and expiry and returns the embedded
// identity, or nil on any failure so callers treat every bad token the
// same way.
func (t *TokenAuth) ResolveIdentity(tokenString string) *model.Identity {
	token, err := jwtauth.VerifyToken(t.ja, tokenString)
	if err != nil || token == nil {
		return nil
	}
	claims, err := token.AsMap(context.Background())
	if err != nil {
		return nil
	}
	identity, err := IdentityFromClaims(claims)
	if err != nil {
		return nil
	}
	return identity
}

// Helper functions to extract claims, used in middleware and services.
func GetUserIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["user_id"].(string)
	if !ok {
		return "", errors.New("user_id claim is missing or not a string")
	}
	return id, nil
}

func GetEmailFromClaims(claims jwt.MapClaims) (string, error) {
	email, ok := claims["email"].(string)
	if !ok {
		return "", errors.New("email claim is missing or not a string")
	}
	return email, nil
}

func GetUserRoleFromClaims(claims jwt.MapClaims) (model.Role, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	if !model.Role(role).Valid() {
		return "", errors.New("role claim is not a known role")
	}
	return model.Role(role), nil
}

// IdentityFromClaims rebuilds the actor's Identity from verified claims.
func IdentityFromClaims(claims jwt.MapClaims) (*model.Identity, error) {
	id, err := GetUserIDFromClaims(claims)
	if err != nil {
		return nil, err
	}
	email, err := GetEmailFromClaims(claims)
	if err != nil {
		return nil, err
	}
	role, err := GetUserRoleFromClaims(claims)
	if err != nil {
		return nil, err
	}
	return &model.Identity{ID: id, Email: email, Role: role}, nil
}
