package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// Key is the fixed name the token is stored under in every backend.
const Key = "token"

// Storage persists the token between runs. Load returns "" when nothing is stored.
type Storage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// FileStorage keeps {"token": "..."} in a single JSON file.
type FileStorage struct {
	path string
}

func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

func (f *FileStorage) Load(_ context.Context) (string, error) {
	b, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read session file: %w", err)
	}
	var doc map[string]string
	if err := json.Unmarshal(b, &doc); err != nil {
		return "", fmt.Errorf("decode session file: %w", err)
	}
	return doc[Key], nil
}

func (f *FileStorage) Save(_ context.Context, token string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}
	b, err := json.Marshal(map[string]string{Key: token})
	if err != nil {
		return err
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename session file: %w", err)
	}
	return nil
}

func (f *FileStorage) Clear(_ context.Context) error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// RedisStorage keeps the token in a single redis string.
type RedisStorage struct {
	rdb redis.Cmdable
	key string
}

// NewRedisStorage stores under key, or Key when key is empty.
func NewRedisStorage(rdb redis.Cmdable, key string) *RedisStorage {
	if key == "" {
		key = Key
	}
	return &RedisStorage{rdb: rdb, key: key}
}

func (r *RedisStorage) Load(ctx context.Context) (string, error) {
	tok, err := r.rdb.Get(ctx, r.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redis get %s: %w", r.key, err)
	}
	return tok, nil
}

func (r *RedisStorage) Save(ctx context.Context, token string) error {
	if err := r.rdb.Set(ctx, r.key, token, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", r.key, err)
	}
	return nil
}

func (r *RedisStorage) Clear(ctx context.Context) error {
	if err := r.rdb.Del(ctx, r.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", r.key, err)
	}
	return nil
}

// MemoryStorage forgets everything on exit.
type MemoryStorage struct {
	token string
}

func (m *MemoryStorage) Load(context.Context) (string, error)   { return m.token, nil }
func (m *MemoryStorage) Save(_ context.Context, t string) error { m.token = t; return nil }
func (m *MemoryStorage) Clear(context.Context) error            { m.token = ""; return nil }
