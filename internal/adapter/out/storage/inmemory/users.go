package inmemory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"inkwell/internal/model"
	"inkwell/internal/service"

	"github.com/google/uuid"
)

type UserStorage struct {
	mu    sync.RWMutex
	users map[string]model.User
}

func NewUserStorage() *UserStorage {
	return &UserStorage{users: make(map[string]model.User)}
}

func (s *UserStorage) CreateUser(_ context.Context, in model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == in.Email {
			return model.User{}, fmt.Errorf("%w: email already registered", service.ErrConflict)
		}
		if u.Username == in.Username {
			return model.User{}, fmt.Errorf("%w: username already taken", service.ErrConflict)
		}
	}

	in.ID = uuid.NewString()
	if in.CreatedAt.IsZero() {
		in.CreatedAt = time.Now()
	}
	s.users[in.ID] = in
	return in, nil
}

func (s *UserStorage) GetUserByID(_ context.Context, userID string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return model.User{}, service.ErrNotFound
	}
	return u, nil
}

func (s *UserStorage) GetUserByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, service.ErrNotFound
}

func (s *UserStorage) GetUsersByIDs(_ context.Context, userIDs []string) (map[string]model.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.User, len(userIDs))
	for _, id := range userIDs {
		if u, ok := s.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}
