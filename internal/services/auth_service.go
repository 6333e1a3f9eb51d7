package services

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"petsitter-app/internal/models"
	"petsitter-app/internal/utils"
)

type AuthService struct {
	users   UserRepository
	jwtUtil *utils.JWTUtil
	cache   Cache
}

func NewAuthService(users UserRepository, jwtUtil *utils.JWTUtil, cache Cache) *AuthService {
	return &AuthService{users: users, jwtUtil: jwtUtil, cache: cache}
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	User        *models.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, user *models.User) (*AuthResponse, error) {
	existing, err := s.users.FindByEmail(ctx, user.Email)
	if err != nil && err != models.ErrNotFound {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: user with this email already exists", models.ErrConflict)
	}

	if err := user.HashPassword(); err != nil {
		return nil, err
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{AccessToken: token, User: user}, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}

	if err := user.ComparePassword(password); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", models.ErrUnauthorized)
	}

	if !user.IsActive {
		return nil, fmt.Errorf("%w: account is deactivated", models.ErrUnauthorized)
	}

	token, err := s.jwtUtil.GenerateToken(user.ID.Hex(), string(user.Role))
	if err != nil {
		return nil, err
	}

	return &AuthResponse{AccessToken: token, User: user}, nil
}

// Logout blacklists the token's jti until its natural expiry.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	token, err := s.jwtUtil.ValidateToken(tokenString)
	if err != nil || !token.Valid {
		return fmt.Errorf("%w: invalid token", models.ErrUnauthorized)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return fmt.Errorf("%w: invalid token claims", models.ErrUnauthorized)
	}

	jti, ok := claims["jti"].(string)
	if !ok {
		return fmt.Errorf("%w: missing jti in token", models.ErrUnauthorized)
	}

	exp, ok := claims["exp"].(float64)
	if !ok {
		return fmt.Errorf("%w: invalid token expiration", models.ErrUnauthorized)
	}

	ttl := time.Until(time.Unix(int64(exp), 0))
	if ttl <= 0 {
		return nil
	}

	return s.cache.Set(ctx, fmt.Sprintf("blacklist:%s", jti), true, ttl)
}
