package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
	"trivia-quiz/internal/domain"
)

// UserRepository keeps the user collection in one JSON or YAML document on
// disk, picked by file extension. Saves go to a temp file that is synced and
// renamed over the target, so readers see either the old or the new document.
type UserRepository struct {
	path string
}

func NewUserRepository(path string) *UserRepository {
	return &UserRepository{path: path}
}

// Load returns no users when the file does not exist yet.
func (r *UserRepository) Load(_ context.Context) ([]domain.User, error) {
	data, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return []domain.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return []domain.User{}, nil
	}

	var users []domain.User
	if r.isYAML() {
		err = yaml.Unmarshal(data, &users)
	} else {
		err = json.Unmarshal(data, &users)
	}
	if err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Save(_ context.Context, users []domain.User) error {
	var (
		data []byte
		err  error
	)
	if r.isYAML() {
		data, err = yaml.Marshal(users)
	} else {
		data, err = json.MarshalIndent(users, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("encode users: %w", err)
	}
	return writeAtomic(r.path, data)
}

func (r *UserRepository) isYAML() bool {
	ext := strings.ToLower(filepath.Ext(r.path))
	return ext == ".yaml" || ext == ".yml"
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return fmt.Errorf("chmod temp: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace users file: %w", err)
	}
	return syncDir(dir)
}

// syncDir makes the rename durable.
func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return fmt.Errorf("open dir: %w", err)
	}
	defer d.Close()
	if err := d.Sync(); err != nil {
		return fmt.Errorf("sync dir: %w", err)
	}
	return nil
}
