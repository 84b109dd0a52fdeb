package auth

import "sync"

// MockStore is an in-memory Store for tests. Err, when set, is returned by
// every call.
type MockStore struct {
	Err error

	mu      sync.Mutex
	secrets map[string]string
}

func NewMockStore() *MockStore {
	return &MockStore{secrets: map[string]string{}}
}

func (m *MockStore) SetSecret(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.secrets[key] = value
	return nil
}

func (m *MockStore) GetSecret(key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	value, ok := m.secrets[key]
	if !ok {
		return "", ErrSecretNotFound
	}
	return value, nil
}

func (m *MockStore) DeleteSecret(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.secrets[key]; !ok {
		return ErrSecretNotFound
	}
	delete(m.secrets, key)
	return nil
}
