package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"
	"trivia-quiz/internal/domain"
)

// UserRepository persists the whole user collection as one document.
// Save must replace the stored document entirely; Load returns users in stored order.
type UserRepository interface {
	Load(ctx context.Context) ([]domain.User, error)
	Save(ctx context.Context, users []domain.User) error
}

// SettingsUpdate carries the optional fields of a settings change.
type SettingsUpdate struct {
	Password  *string
	BirthDate *time.Time
}

// UserStore owns every User record. Each mutation is written through to the
// repository before it becomes visible; a failed write leaves the previous
// state in place.
type UserStore struct {
	repo UserRepository
	cost int

	mu    sync.RWMutex
	users []domain.User
	index map[string]int

	dummyHash []byte
}

// StoreOption customises a UserStore.
type StoreOption func(*UserStore)

// WithBcryptCost sets the bcrypt cost used for new password hashes.
func WithBcryptCost(cost int) StoreOption {
	return func(s *UserStore) { s.cost = cost }
}

// OpenUserStore loads the stored collection once.
func OpenUserStore(ctx context.Context, repo UserRepository, opts ...StoreOption) (*UserStore, error) {
	s := &UserStore{repo: repo, cost: bcrypt.DefaultCost}
	for _, opt := range opts {
		opt(s)
	}

	users, err := repo.Load(ctx)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Err: err}
	}
	index, err := buildIndex(users)
	if err != nil {
		return nil, &domain.PersistenceError{Op: "load", Err: err}
	}
	s.users = users
	s.index = index

	// compared against for unknown logins
	s.dummyHash, err = bcrypt.GenerateFromPassword([]byte("trivia-quiz"), s.cost)
	if err != nil {
		return nil, fmt.Errorf("init password hashing: %w", err)
	}
	return s, nil
}

// Register creates a user with an empty history and persists it.
func (s *UserStore) Register(ctx context.Context, login, password string, birthDate time.Time) (domain.User, error) {
	var problems []string
	if strings.TrimSpace(login) == "" {
		problems = append(problems, "login is required")
	}
	problems = append(problems, passwordProblems(password)...)
	if len(problems) > 0 {
		return domain.User{}, &domain.ValidationError{Problems: problems}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.index[login]; ok {
		return domain.User{}, domain.ErrDuplicateLogin
	}
	user := domain.User{
		Login:     login,
		Password:  string(hash),
		BirthDate: birthDate,
		Results:   []domain.Result{},
	}
	next := append(s.cloneLocked(), user)
	if err := s.commitLocked(ctx, "register", next); err != nil {
		return domain.User{}, err
	}
	return user.Clone(), nil
}

// Authenticate returns the user only when both login and password match.
// Unknown logins and wrong passwords yield the same error.
func (s *UserStore) Authenticate(login, password string) (domain.User, error) {
	s.mu.RLock()
	i, ok := s.index[login]
	var user domain.User
	if ok {
		user = s.users[i].Clone()
	}
	s.mu.RUnlock()

	if !ok {
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return domain.User{}, domain.ErrAuthentication
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)) != nil {
		return domain.User{}, domain.ErrAuthentication
	}
	return user, nil
}

// UpdateSettings changes the password and/or birth date of login and persists.
func (s *UserStore) UpdateSettings(ctx context.Context, login string, update SettingsUpdate) error {
	var hash []byte
	if update.Password != nil {
		if problems := passwordProblems(*update.Password); len(problems) > 0 {
			return &domain.ValidationError{Problems: problems}
		}
		var err error
		hash, err = bcrypt.GenerateFromPassword([]byte(*update.Password), s.cost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[login]
	if !ok {
		return domain.ErrUserNotFound
	}
	next := s.cloneLocked()
	if hash != nil {
		next[i].Password = string(hash)
	}
	if update.BirthDate != nil {
		next[i].BirthDate = *update.BirthDate
	}
	return s.commitLocked(ctx, "update settings", next)
}

// AppendResult adds result to the end of login's history and persists.
func (s *UserStore) AppendResult(ctx context.Context, login string, result domain.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[login]
	if !ok {
		return domain.ErrUserNotFound
	}
	next := s.cloneLocked()
	next[i].Results = append(next[i].Results, result)
	return s.commitLocked(ctx, "append result", next)
}

// User returns a copy of the user stored under login.
func (s *UserStore) User(login string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[login]
	if !ok {
		return domain.User{}, false
	}
	return s.users[i].Clone(), true
}

// AllUsers returns a copy of every user in stored order.
func (s *UserStore) AllUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cloneLocked()
}

// Len returns the number of registered users.
func (s *UserStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.users)
}

// commitLocked writes next through to the repository and swaps it in on success.
func (s *UserStore) commitLocked(ctx context.Context, op string, next []domain.User) error {
	index, err := buildIndex(next)
	if err != nil {
		return &domain.PersistenceError{Op: op, Err: err}
	}
	if err := s.repo.Save(ctx, next); err != nil {
		return &domain.PersistenceError{Op: op, Err: err}
	}
	s.users = next
	s.index = index
	return nil
}

func (s *UserStore) cloneLocked() []domain.User {
	out := make([]domain.User, len(s.users), len(s.users)+1)
	for i := range s.users {
		out[i] = s.users[i].Clone()
	}
	return out
}

func buildIndex(users []domain.User) (map[string]int, error) {
	index := make(map[string]int, len(users))
	for i, u := range users {
		if _, dup := index[u.Login]; dup {
			return nil, fmt.Errorf("duplicate login %q in stored data", u.Login)
		}
		index[u.Login] = i
	}
	return index, nil
}

// bcrypt rejects longer input.
const maxPasswordBytes = 72

func passwordProblems(password string) []string {
	switch {
	case password == "":
		return []string{"password is required"}
	case len(password) > maxPasswordBytes:
		return []string{fmt.Sprintf("password must be at most %d bytes", maxPasswordBytes)}
	}
	return nil
}
