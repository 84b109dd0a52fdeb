package auth

import (
	"errors"
	"testing"
)

func TestInspect(t *testing.T) {
	store := NewMockStore()

	if st := Inspect(store); st.HasLogin || st.HasPrivateKey || st.Err != nil {
		t.Errorf("empty store: got %+v", st)
	}

	if err := SaveCredentials(store, " user ", "pem"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	st := Inspect(store)
	if !st.Complete() || st.Login != "user" {
		t.Errorf("after save: got %+v", st)
	}
}

func TestInspect_KeychainError(t *testing.T) {
	store := NewMockStore()
	store.Err = errors.New("keychain locked")

	st := Inspect(store)
	if st.Err == nil {
		t.Error("expected keychain error to be reported")
	}
}

func TestSaveCredentials_RejectsEmpty(t *testing.T) {
	store := NewMockStore()
	if err := SaveCredentials(store, "", "pem"); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("empty login: got %v", err)
	}
	if err := SaveCredentials(store, "user", "  "); !errors.Is(err, ErrMissingCredentials) {
		t.Errorf("empty key: got %v", err)
	}
	if _, err := store.GetSecret(KeyLogin); !errors.Is(err, ErrSecretNotFound) {
		t.Error("nothing should be stored after a rejected save")
	}
}

func TestForgetCredentials(t *testing.T) {
	store := NewMockStore()
	_ = store.SetSecret(KeyLogin, "user")

	if err := ForgetCredentials(store); err != nil {
		t.Fatalf("ForgetCredentials: %v", err)
	}
	if st := Inspect(store); st.HasLogin || st.HasPrivateKey {
		t.Errorf("after forget: got %+v", st)
	}
	if err := ForgetCredentials(store); err != nil {
		t.Errorf("second forget should be a no-op, got %v", err)
	}
}
