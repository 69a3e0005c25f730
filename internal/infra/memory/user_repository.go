package memory

import (
	"context"
	"sync"

	"trivia-quiz/internal/domain"
)

// UserRepository is an in-memory implementation of app.UserRepository (useful for tests/demos).
// FailSave, when set, is returned by Save without touching the stored document.
type UserRepository struct {
	mu       sync.Mutex
	users    []domain.User
	saves    int
	FailSave error
}

func NewUserRepository(users ...domain.User) *UserRepository {
	return &UserRepository{users: cloneUsers(users)}
}

func (r *UserRepository) Load(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUsers(r.users), nil
}

func (r *UserRepository) Save(_ context.Context, users []domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailSave != nil {
		return r.FailSave
	}
	r.users = cloneUsers(users)
	r.saves++
	return nil
}

// Saves reports how many successful writes the repository has received.
func (r *UserRepository) Saves() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func cloneUsers(users []domain.User) []domain.User {
	out := make([]domain.User, len(users))
	for i := range users {
		out[i] = users[i].Clone()
	}
	return out
}
