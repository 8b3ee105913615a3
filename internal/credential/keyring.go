// Package credential stores the API token in the system keyring.
package credential

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName = "notekeeper"

	// TokenKey is the keyring entry holding the API token.
	TokenKey = "api-token"

	// TokenEnv overrides the keyring when set.
	TokenEnv = "NOTEKEEPER_API_TOKEN"
)

// Store reads and writes credentials in a keyring.
type Store struct {
	open func() (keyring.Keyring, error)
	env  func(string) string
}

// New returns a Store backed by the system keyring.
func New() *Store {
	return &Store{open: openKeyring, env: os.Getenv}
}

// NewWithKeyring returns a Store backed by ring, mainly for tests with
// keyring.NewArrayKeyring.
func NewWithKeyring(ring keyring.Keyring, env func(string) string) *Store {
	if env == nil {
		env = func(string) string { return "" }
	}
	return &Store{
		open: func() (keyring.Keyring, error) { return ring, nil },
		env:  env,
	}
}

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/notekeeper/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("notekeeper-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// Get retrieves a credential value by key.
func (s *Store) Get(key string) (string, error) {
	ring, err := s.open()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key.
func (s *Store) Set(key string, value string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:   key,
		Data:  []byte(value),
		Label: "notekeeper " + key,
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key. A missing key is not an error.
func (s *Store) Delete(key string) error {
	ring, err := s.open()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}

// Token returns the API token: the environment variable when set,
// otherwise the keyring entry. No token at all is not an error; the
// backend may not require one.
func (s *Store) Token() (string, error) {
	if tok := strings.TrimSpace(s.env(TokenEnv)); tok != "" {
		return tok, nil
	}

	tok, err := s.Get(TokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(tok), nil
}

// SetToken stores the API token in the keyring. An empty token removes it.
func (s *Store) SetToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return s.Delete(TokenKey)
	}
	return s.Set(TokenKey, token)
}
