package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"inkwell/internal/model"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func testTokenManager() *TokenManager {
	return NewTokenManager("test-secret", time.Hour)
}

func TestAuthService_Register(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		req     RegisterRequest
		setup   func(m *MockUserStorage)
		wantErr error
	}{
		{
			name:    "invalid email",
			req:     RegisterRequest{Username: "alice", Email: "not-an-email", Password: "secret1"},
			setup:   func(_ *MockUserStorage) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name:    "short password",
			req:     RegisterRequest{Username: "alice", Email: "a@example.com", Password: "123"},
			setup:   func(_ *MockUserStorage) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "duplicate email",
			req:  RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret1"},
			setup: func(m *MockUserStorage) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					Return(model.User{}, ErrConflict)
			},
			wantErr: ErrConflict,
		},
		{
			name: "success",
			req:  RegisterRequest{Username: "alice", Email: "a@example.com", Password: "secret1"},
			setup: func(m *MockUserStorage) {
				m.EXPECT().
					CreateUser(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, u model.User) (model.User, error) {
						// stored hash must verify against the raw password
						require.NotEqual(t, "secret1", u.PasswordHash)
						require.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))
						u.ID = "u1"
						return u, nil
					})
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := NewMockUserStorage(ctrl)
			tt.setup(m)

			tokens := testTokenManager()
			svc := NewAuthService(m, tokens)

			got, err := svc.Register(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			require.Equal(t, "u1", got.User.ID)

			userID, err := tokens.Parse(got.Token)
			require.NoError(t, err)
			require.Equal(t, "u1", userID)
		})
	}
}

func TestAuthService_Login(t *testing.T) {
	t.Parallel()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret1"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := model.User{ID: "u1", Username: "alice", Email: "a@example.com", PasswordHash: string(hash)}

	tests := []struct {
		name    string
		req     LoginRequest
		setup   func(m *MockUserStorage)
		wantErr error
	}{
		{
			name:    "missing password",
			req:     LoginRequest{Email: "a@example.com"},
			setup:   func(_ *MockUserStorage) {},
			wantErr: ErrInvalidRequest,
		},
		{
			name: "unknown email",
			req:  LoginRequest{Email: "b@example.com", Password: "secret1"},
			setup: func(m *MockUserStorage) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "b@example.com").
					Return(model.User{}, ErrNotFound)
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name: "wrong password",
			req:  LoginRequest{Email: "a@example.com", Password: "wrong-1"},
			setup: func(m *MockUserStorage) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "a@example.com").
					Return(stored, nil)
			},
			wantErr: ErrUnauthenticated,
		},
		{
			name: "storage failure is not unauthenticated",
			req:  LoginRequest{Email: "a@example.com", Password: "secret1"},
			setup: func(m *MockUserStorage) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "a@example.com").
					Return(model.User{}, errors.New("db fail"))
			},
			wantErr: errors.New("db fail"),
		},
		{
			name: "success",
			req:  LoginRequest{Email: "a@example.com", Password: "secret1"},
			setup: func(m *MockUserStorage) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "a@example.com").
					Return(stored, nil)
			},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			m := NewMockUserStorage(ctrl)
			tt.setup(m)

			tokens := testTokenManager()
			svc := NewAuthService(m, tokens)

			got, err := svc.Login(context.Background(), tt.req)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, ErrUnauthenticated) {
					require.ErrorIs(t, err, ErrUnauthenticated)
				} else if errors.Is(tt.wantErr, ErrInvalidRequest) {
					require.ErrorIs(t, err, ErrInvalidRequest)
				} else {
					require.NotErrorIs(t, err, ErrUnauthenticated)
				}
				return
			}

			require.NoError(t, err)
			require.Equal(t, "u1", got.User.ID)

			userID, err := tokens.Parse(got.Token)
			require.NoError(t, err)
			require.Equal(t, "u1", userID)
		})
	}
}
