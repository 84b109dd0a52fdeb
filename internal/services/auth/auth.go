// Package auth resolves TransIP credentials and keeps them in the OS keychain.
package auth

import "errors"

// ServiceName is the keychain service every entry is stored under.
const ServiceName = "transip-dns"

// Keychain entries written by `auth login`.
const (
	KeyLogin      = "transip-login"
	KeyPrivateKey = "transip-privatekey"
)

var (
	// ErrSecretNotFound is returned by a Store for a key it does not hold.
	ErrSecretNotFound     = errors.New("secret not found")
	ErrMissingCredentials = errors.New("missing TransIP credentials")
)

// Store persists secrets by key.
type Store interface {
	SetSecret(key string, value string) error
	GetSecret(key string) (string, error)
	DeleteSecret(key string) error
}

// DefaultStore returns the standard secret store backed by the OS keychain.
func DefaultStore() Store {
	return NewKeyringStore(ServiceName)
}
