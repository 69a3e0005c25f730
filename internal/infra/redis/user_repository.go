package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"trivia-quiz/internal/domain"
)

// DefaultKey is where the user document lives when no key is configured.
const DefaultKey = "trivia:users"

// UserRepository stores the whole user collection as one JSON value.
// Saves run in MULTI/EXEC so the document and its timestamp change together:
//
//	SET {key}            <json document>
//	SET {key}:saved_at   <RFC3339 time>
type UserRepository struct {
	client *redis.Client
	key    string
	clock  func() time.Time
}

func NewUserRepository(client *redis.Client, key string) *UserRepository {
	if key == "" {
		key = DefaultKey
	}
	return &UserRepository{client: client, key: key, clock: time.Now}
}

func (r *UserRepository) Load(ctx context.Context) ([]domain.User, error) {
	raw, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get users: %w", err)
	}
	var users []domain.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, fmt.Errorf("unmarshal users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Save(ctx context.Context, users []domain.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return fmt.Errorf("marshal users: %w", err)
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, r.key, raw, 0)
		pipe.Set(ctx, r.savedAtKey(), r.clock().UTC().Format(time.RFC3339Nano), 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("set users: %w", err)
	}
	return nil
}

// SavedAt reports when the document was last written. The zero time means
// nothing has been saved yet.
func (r *UserRepository) SavedAt(ctx context.Context) (time.Time, error) {
	raw, err := r.client.Get(ctx, r.savedAtKey()).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("get saved_at: %w", err)
	}
	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse saved_at: %w", err)
	}
	return t, nil
}

func (r *UserRepository) savedAtKey() string {
	return r.key + ":saved_at"
}
