package session

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

const keyringService = "pantry-cli"

// KeyringStorage keeps values in the OS keychain/credential manager.
// Keys are namespaced per backend so tokens for different servers don't collide.
type KeyringStorage struct {
	namespace string
}

func NewKeyringStorage(namespace string) *KeyringStorage {
	return &KeyringStorage{namespace: namespace}
}

func (k *KeyringStorage) key(key string) string {
	return fmt.Sprintf("%s-%s", key, k.namespace)
}

func (k *KeyringStorage) Load(key string) (string, error) {
	v, err := keyring.Get(keyringService, k.key(key))
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to load %s from keyring: %w", key, err)
	}
	return v, nil
}

func (k *KeyringStorage) Save(key, value string) error {
	if err := keyring.Set(keyringService, k.key(key), value); err != nil {
		return fmt.Errorf("failed to save %s to keyring: %w", key, err)
	}
	return nil
}

func (k *KeyringStorage) Delete(key string) error {
	if err := keyring.Delete(keyringService, k.key(key)); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return nil // Already deleted
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", key, err)
	}
	return nil
}
