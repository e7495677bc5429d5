// Package credentials stores the GitHub token in the operating system keychain.
package credentials

import (
	"errors"
	"fmt"
	"sync"

	"github.com/zalando/go-keyring"
)

// Account is the keychain account every tool stores its token under
const Account = "github"

// Store reads and writes a secret per keychain service
type Store interface {
	// Get returns the stored token, or "" when none is stored.
	Get() (string, error)
	Set(token string) error
	Delete() error
}

// Keychain stores the token in the OS keychain under Service/Account
type Keychain struct {
	Service string
}

// NewKeychain returns a keychain store for service
func NewKeychain(service string) *Keychain {
	return &Keychain{Service: service}
}

func (k *Keychain) Get() (string, error) {
	token, err := keyring.Get(k.Service, Account)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading token from keychain: %w", err)
	}
	return token, nil
}

func (k *Keychain) Set(token string) error {
	if err := keyring.Set(k.Service, Account, token); err != nil {
		return fmt.Errorf("storing token in keychain: %w", err)
	}
	return nil
}

func (k *Keychain) Delete() error {
	err := keyring.Delete(k.Service, Account)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("deleting token from keychain: %w", err)
	}
	return nil
}

// Memory keeps the token in process memory
type Memory struct {
	mu    sync.Mutex
	token string
	// Sets counts the writes, so callers can check a token was only stored when it changed.
	Sets int
}

// NewMemory returns a memory store holding token
func NewMemory(token string) *Memory {
	return &Memory{token: token}
}

func (m *Memory) Get() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token, nil
}

func (m *Memory) Set(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = token
	m.Sets++
	return nil
}

func (m *Memory) Delete() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.token = ""
	return nil
}

// StoreIfChanged writes token only when it differs from the stored one
func StoreIfChanged(store Store, previous, token string) error {
	if token == "" || token == previous {
		return nil
	}
	return store.Set(token)
}
