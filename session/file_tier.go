package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// ErrFileTierUnavailable wraps filesystem failures from [FileTier].
var ErrFileTierUnavailable = errors.New("session file tier unavailable")

// FileTier is a durable Tier backed by a single JSON file. It is the default
// durable tier for single-machine clients; writes go through a temp file and
// rename so a crash never leaves a torn record.
type FileTier struct {
	mu   sync.Mutex
	path string
}

// NewFileTier returns a file-backed tier at path. The parent directory is
// created on first write, not here.
func NewFileTier(path string) *FileTier {
	return &FileTier{path: path}
}

func (t *FileTier) Get(_ context.Context, key string) (string, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	values, err := t.read()
	if err != nil {
		return "", err
	}
	return values[key], nil
}

func (t *FileTier) Set(_ context.Context, key, value string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	values, err := t.read()
	if err != nil {
		return err
	}
	values[key] = value
	return t.write(values)
}

func (t *FileTier) Delete(_ context.Context, keys ...string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	values, err := t.read()
	if err != nil {
		return err
	}
	for _, key := range keys {
		delete(values, key)
	}
	if len(values) == 0 {
		if err := os.Remove(t.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrFileTierUnavailable, err)
		}
		return nil
	}
	return t.write(values)
}

func (t *FileTier) read() (map[string]string, error) {
	data, err := os.ReadFile(t.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFileTierUnavailable, err)
	}

	values := map[string]string{}
	if err := json.Unmarshal(data, &values); err != nil {
		// A torn or hand-edited file reads as empty; the store clears it on
		// the next write or delete.
		return map[string]string{}, nil
	}
	return values, nil
}

func (t *FileTier) write(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrFileTierUnavailable, err)
	}

	if err := os.MkdirAll(filepath.Dir(t.path), 0o700); err != nil {
		return fmt.Errorf("%w: %v", ErrFileTierUnavailable, err)
	}

	tmp := t.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("%w: %v", ErrFileTierUnavailable, err)
	}
	if err := os.Rename(tmp, t.path); err != nil {
		return fmt.Errorf("%w: %v", ErrFileTierUnavailable, err)
	}
	return nil
}
