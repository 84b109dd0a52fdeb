package auth

import (
	"errors"
	"fmt"

	"github.com/zalando/go-keyring"
)

// ErrSecretTooLarge is returned when the platform keychain cannot hold a
// value, which happens with 4096-bit PEM keys on Windows and some macOS
// versions. Point private-key-file at the key instead.
var ErrSecretTooLarge = errors.New("secret too large for the OS keychain")

// KeyringStore keeps secrets in the OS keychain under one service name.
type KeyringStore struct {
	service string
}

// NewKeyringStore returns a store for service, defaulting to ServiceName.
func NewKeyringStore(service string) *KeyringStore {
	if service == "" {
		service = ServiceName
	}
	return &KeyringStore{service: service}
}

func (k *KeyringStore) SetSecret(key, value string) error {
	return k.wrap(key, keyring.Set(k.service, key, value))
}

func (k *KeyringStore) GetSecret(key string) (string, error) {
	value, err := keyring.Get(k.service, key)
	if err != nil {
		return "", k.wrap(key, err)
	}
	return value, nil
}

func (k *KeyringStore) DeleteSecret(key string) error {
	return k.wrap(key, keyring.Delete(k.service, key))
}

func (k *KeyringStore) wrap(key string, err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, keyring.ErrNotFound):
		return ErrSecretNotFound
	case errors.Is(err, keyring.ErrSetDataTooBig):
		return fmt.Errorf("keychain %s/%s: %w", k.service, key, ErrSecretTooLarge)
	}
	return fmt.Errorf("keychain %s/%s: %w", k.service, key, err)
}
