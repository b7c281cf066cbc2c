package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/Freeeeeet/course_select/internal/model"
)

// Two durable entries survive restarts: the identity JSON and the raw token.
// They mirror the browser build's "user" and "jwt" local-storage keys.
const (
	identityFile = "user.json"
	tokenFile    = "jwt"
)

// Local persists the logged-in identity under a config-owned directory
type Local struct {
	dir string
}

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	return &Local{dir: dir}, nil
}

// SaveSession writes both entries. Called only after a successful login.
func (l *Local) SaveSession(identity model.Identity, token string) error {
	raw, err := json.Marshal(identity)
	if err != nil {
		return fmt.Errorf("encode identity: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, identityFile), raw, 0o600); err != nil {
		return fmt.Errorf("write identity: %w", err)
	}
	if err := os.WriteFile(filepath.Join(l.dir, tokenFile), []byte(token), 0o600); err != nil {
		return fmt.Errorf("write token: %w", err)
	}
	return nil
}

// LoadSession reads the persisted identity and token. Returns (nil, "") when
// either entry is missing, a session needs both.
func (l *Local) LoadSession() (*model.Identity, string, error) {
	raw, err := os.ReadFile(filepath.Join(l.dir, identityFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read identity: %w", err)
	}

	var identity model.Identity
	if err := json.Unmarshal(raw, &identity); err != nil {
		return nil, "", fmt.Errorf("decode identity: %w", err)
	}

	token, err := os.ReadFile(filepath.Join(l.dir, tokenFile))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("read token: %w", err)
	}
	if len(token) == 0 {
		return nil, "", nil
	}

	return &identity, string(token), nil
}

// Clear erases both entries, missing files are fine
func (l *Local) Clear() error {
	for _, name := range []string{identityFile, tokenFile} {
		err := os.Remove(filepath.Join(l.dir, name))
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", name, err)
		}
	}
	return nil
}
