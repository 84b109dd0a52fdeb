package auth

import (
	"errors"
	"fmt"
	"strings"
)

// Stored describes what the keychain currently holds for transip-dns.
type Stored struct {
	Login         string
	HasLogin      bool
	HasPrivateKey bool

	// Err is set when the keychain itself could not be read.
	Err error
}

// Complete reports whether both the login and the private key are stored.
func (s Stored) Complete() bool {
	return s.HasLogin && s.HasPrivateKey
}

// Inspect reads the stored login and checks for a private key without
// returning it.
func Inspect(store Store) Stored {
	var st Stored

	login, err := store.GetSecret(KeyLogin)
	switch {
	case err == nil:
		st.Login, st.HasLogin = login, true
	case !errors.Is(err, ErrSecretNotFound):
		st.Err = err
		return st
	}

	_, err = store.GetSecret(KeyPrivateKey)
	switch {
	case err == nil:
		st.HasPrivateKey = true
	case !errors.Is(err, ErrSecretNotFound):
		st.Err = err
	}
	return st
}

// SaveCredentials stores the login and PEM private key.
func SaveCredentials(store Store, login, privateKeyPEM string) error {
	login = strings.TrimSpace(login)
	privateKeyPEM = strings.TrimSpace(privateKeyPEM)
	if login == "" {
		return fmt.Errorf("%w: login cannot be empty", ErrMissingCredentials)
	}
	if privateKeyPEM == "" {
		return fmt.Errorf("%w: private key cannot be empty", ErrMissingCredentials)
	}

	if err := store.SetSecret(KeyLogin, login); err != nil {
		return fmt.Errorf("failed to store login: %w", err)
	}
	if err := store.SetSecret(KeyPrivateKey, privateKeyPEM); err != nil {
		return fmt.Errorf("failed to store private key: %w", err)
	}
	return nil
}

// ForgetCredentials removes both entries. Entries that were never stored are
// not an error.
func ForgetCredentials(store Store) error {
	var errs []error
	for _, key := range []string{KeyLogin, KeyPrivateKey} {
		if err := store.DeleteSecret(key); err != nil && !errors.Is(err, ErrSecretNotFound) {
			errs = append(errs, fmt.Errorf("failed to delete %s: %w", key, err))
		}
	}
	return errors.Join(errs...)
}
