package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// keyringService identifies seedline entries in the OS keyring
const keyringService = "seedline-cli"

// KeyringStorage persists session values in the operating system
// keyring (Keychain on macOS, Secret Service on Linux, Credential
// Manager on Windows) so tokens never touch the filesystem.
type KeyringStorage struct {
	service string
}

func NewKeyringStorage() *KeyringStorage {
	return &KeyringStorage{service: keyringService}
}

func (k *KeyringStorage) Get(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("failed to read %s from keyring: %w", key, err)
	}

	return value, nil
}

func (k *KeyringStorage) Set(key, value string) error {
	if err := keyring.Set(k.service, key, value); err != nil {
		return fmt.Errorf("failed to write %s to keyring: %w", key, err)
	}

	return nil
}

func (k *KeyringStorage) Delete(key string) error {
	if err := keyring.Delete(k.service, key); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}

	return nil
}
