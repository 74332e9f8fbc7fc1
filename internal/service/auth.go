package service

import (
	"context"
	"errors"
	"fmt"

	"inkwell/internal/model"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

//go:generate mockgen -source=auth.go -destination=./user_storage_mock.go -package=service
type UserStorage interface {
	// CreateUser returns ErrConflict when the email or username is taken.
	CreateUser(ctx context.Context, user model.User) (model.User, error)
	GetUserByID(ctx context.Context, userID string) (model.User, error)
	GetUserByEmail(ctx context.Context, email string) (model.User, error)
}

// AuthService verifies credentials and issues bearer tokens.
type AuthService struct {
	userStorage UserStorage
	tokens      *TokenManager
}

type AuthResult struct {
	User  model.User
	Token string
}

func NewAuthService(userStorage UserStorage, tokens *TokenManager) *AuthService {
	return &AuthService{
		userStorage: userStorage,
		tokens:      tokens,
	}
}

func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (AuthResult, error) {
	if err := validator.New().Struct(req); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return AuthResult{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.userStorage.CreateUser(ctx, model.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: string(hash),
	})
	if err != nil {
		return AuthResult{}, err
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) Login(ctx context.Context, req LoginRequest) (AuthResult, error) {
	if err := validator.New().Struct(req); err != nil {
		return AuthResult{}, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	user, err := s.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return AuthResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
		}
		return AuthResult{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return AuthResult{}, fmt.Errorf("%w: invalid credentials", ErrUnauthenticated)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return AuthResult{}, err
	}
	return AuthResult{User: user, Token: token}, nil
}
