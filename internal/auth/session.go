// Package auth stores provider login sessions (cookies and headers) so that
// boards which gate listings behind a login can be scraped with a real
// session. Sessions live in the OS keyring, with a file fallback for
// headless environments.
package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/zalando/go-keyring"
)

const (
	// KeyringService is the service name for keyring storage.
	KeyringService = "funnel-cli"
	// FallbackDir is the directory for file-based session storage.
	FallbackDir = ".funnel/sessions"
)

// Session is a stored provider login: cookies plus any extra headers the
// provider wants echoed back.
type Session struct {
	Provider  string            `json:"provider"`
	Domain    string            `json:"domain"`
	Cookies   []Cookie          `json:"cookies"`
	Headers   map[string]string `json:"headers,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	ExpiresAt time.Time         `json:"expires_at,omitempty"`
}

// Cookie is one browser cookie belonging to a session.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Domain   string  `json:"domain"`
	Path     string  `json:"path"`
	Expires  float64 `json:"expires"`
	HTTPOnly bool    `json:"httpOnly"`
	Secure   bool    `json:"secure"`
}

// useFileStorage decides whether to bypass the keyring. CI and container
// environments usually have no keyring daemon.
var fileStorageCache *bool

func useFileStorage() bool {
	if fileStorageCache != nil {
		return *fileStorageCache
	}

	if os.Getenv("CODESPACES") != "" || os.Getenv("CI") != "" {
		result := true
		fileStorageCache = &result
		return true
	}

	testKey := "_test_keyring_access_"
	err := keyring.Set(KeyringService, testKey, "test")
	result := err != nil
	fileStorageCache = &result
	if !result {
		keyring.Delete(KeyringService, testKey)
	}
	return result
}

func sessionDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(home, FallbackDir)
	return dir, os.MkdirAll(dir, 0700)
}

func sessionPath(provider string) (string, error) {
	dir, err := sessionDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, provider+".json"), nil
}

// Save stores a session for the provider.
func Save(session *Session) error {
	if session.Provider == "" {
		return fmt.Errorf("session provider cannot be empty")
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to serialize session: %w", err)
	}

	if useFileStorage() {
		path, err := sessionPath(session.Provider)
		if err != nil {
			return err
		}
		return os.WriteFile(path, data, 0600)
	}

	if err := keyring.Set(KeyringService, session.Provider, string(data)); err != nil {
		return fmt.Errorf("failed to save to keyring: %w", err)
	}
	return nil
}

// Load retrieves the stored session for a provider. Expired sessions are an
// error so the caller can prompt for a fresh import.
func Load(provider string) (*Session, error) {
	if provider == "" {
		return nil, fmt.Errorf("session provider cannot be empty")
	}

	var data string
	if useFileStorage() {
		path, err := sessionPath(provider)
		if err != nil {
			return nil, err
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load session file: %w", err)
		}
		data = string(raw)
	} else {
		var err error
		data, err = keyring.Get(KeyringService, provider)
		if err != nil {
			return nil, fmt.Errorf("failed to load from keyring: %w", err)
		}
	}

	var session Session
	if err := json.Unmarshal([]byte(data), &session); err != nil {
		return nil, fmt.Errorf("failed to deserialize session: %w", err)
	}

	if !session.ExpiresAt.IsZero() && time.Now().After(session.ExpiresAt) {
		return nil, fmt.Errorf("session for %s expired", provider)
	}
	return &session, nil
}

// Delete removes a provider's stored session.
func Delete(provider string) error {
	if provider == "" {
		return fmt.Errorf("session provider cannot be empty")
	}

	if useFileStorage() {
		path, err := sessionPath(provider)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete session file: %w", err)
		}
		return nil
	}

	if err := keyring.Delete(KeyringService, provider); err != nil {
		return fmt.Errorf("failed to delete from keyring: %w", err)
	}
	return nil
}

// List returns the providers that have a stored session. Keyring backends
// cannot enumerate keys, so listing is only supported with file storage.
func List() ([]string, error) {
	if !useFileStorage() {
		return nil, fmt.Errorf("session listing requires file-based storage")
	}

	dir, err := sessionDir()
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var providers []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		providers = append(providers, strings.TrimSuffix(e.Name(), ".json"))
	}
	return providers, nil
}
