package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"nathanbeddoewebdev/transip-dns/internal/config"
	"nathanbeddoewebdev/transip-dns/internal/dns/providers/transiptest"
	"nathanbeddoewebdev/transip-dns/internal/services/auth"

	"github.com/google/go-cmp/cmp"
	"github.com/zalando/go-keyring"
)

func execAuth(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	err = cmd.Execute()
	return outBuf.String(), errBuf.String(), err
}

func writeKeyFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transip.pem")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write key file: %v", err)
	}
	return path
}

func TestLogin_StoresCredentials(t *testing.T) {
	keyring.MockInit()
	pemData := transiptest.PrivateKeyPEM(t)
	path := writeKeyFile(t, pemData)

	stdout, _, err := execAuth(t, "login", "--username", "jdoe", "--private-key-file", path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(stdout, "Saved credentials for jdoe") {
		t.Errorf("unexpected output: %s", stdout)
	}

	store := auth.DefaultStore()
	if got, _ := store.GetSecret(auth.KeyLogin); got != "jdoe" {
		t.Errorf("stored login = %q, want jdoe", got)
	}
	if got, _ := store.GetSecret(auth.KeyPrivateKey); got != strings.TrimSpace(pemData) {
		t.Error("stored private key does not match the file contents")
	}
}

func TestLogin_RejectsInvalidKey(t *testing.T) {
	keyring.MockInit()
	path := writeKeyFile(t, "not a key")

	_, _, err := execAuth(t, "login", "-u", "jdoe", "-f", path)
	if err == nil {
		t.Fatal("expected error for invalid key file")
	}
	if st := auth.Inspect(auth.DefaultStore()); st.HasLogin {
		t.Error("nothing should be stored after a rejected login")
	}
}

func TestLogin_VerifyAgainstAPI(t *testing.T) {
	keyring.MockInit()
	srv := transiptest.New(t)
	t.Setenv(auth.EnvAPIURL, srv.URL)
	path := writeKeyFile(t, transiptest.PrivateKeyPEM(t))

	_, stderr, err := execAuth(t, "login", "-u", "jdoe", "-f", path, "--verify")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if srv.AuthCalls() != 1 {
		t.Errorf("auth calls = %d, want 1", srv.AuthCalls())
	}
	if !strings.Contains(stderr, "accepted") {
		t.Errorf("expected verification message, got: %s", stderr)
	}
}

// isolateSources keeps the developer's environment and config file out of
// credential resolution.
func isolateSources(t *testing.T) {
	t.Helper()
	for _, k := range []string{auth.EnvUsername, auth.EnvPrivateKey, auth.EnvPrivateKeyFile} {
		t.Setenv(k, "")
	}
	config.SetPath(filepath.Join(t.TempDir(), "config.yaml"))
	t.Cleanup(config.ResetPath)
}

func TestStatusAndLogout(t *testing.T) {
	keyring.MockInit()
	isolateSources(t)
	if err := auth.SaveCredentials(auth.DefaultStore(), "jdoe", "pem"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}

	stdout, _, err := execAuth(t, "status", "-o", "text")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	for _, re := range []string{`keychain login: +jdoe`, `keychain private key: +stored`, `effective login: +jdoe \(from keychain\)`} {
		if !regexp.MustCompile(re).MatchString(stdout) {
			t.Errorf("status output does not match %q:\n%s", re, stdout)
		}
	}

	if _, _, err := execAuth(t, "logout"); err != nil {
		t.Fatalf("logout: %v", err)
	}

	stdout, _, err = execAuth(t, "status", "-o", "text")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if strings.Count(stdout, "not stored") != 2 {
		t.Errorf("expected both entries removed, got: %s", stdout)
	}
	if !regexp.MustCompile(`effective login: +none \(`).MatchString(stdout) {
		t.Errorf("expected no effective login, got: %s", stdout)
	}
}

func TestStatus_EnvironmentWinsJSON(t *testing.T) {
	keyring.MockInit()
	isolateSources(t)
	if err := auth.SaveCredentials(auth.DefaultStore(), "jdoe", "pem"); err != nil {
		t.Fatalf("SaveCredentials: %v", err)
	}
	t.Setenv(auth.EnvUsername, "ci-bot")

	// Running the parent on its own reports status.
	stdout, _, err := execAuth(t, "-o", "json")
	if err != nil {
		t.Fatalf("status: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal([]byte(stdout), &got); err != nil {
		t.Fatalf("invalid json: %v\n%s", err, stdout)
	}
	want := map[string]any{
		"keychain_login":       "jdoe",
		"keychain_private_key": true,
		"effective_login":      "ci-bot",
		"effective_source":     "env",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}
}

func TestStatus_KeychainError(t *testing.T) {
	keyring.MockInitWithError(errors.New("locked"))
	t.Cleanup(keyring.MockInit)
	isolateSources(t)

	_, _, err := execAuth(t, "status", "-o", "text")
	if err == nil || !strings.Contains(err.Error(), "locked") {
		t.Errorf("err = %v, want keychain error", err)
	}
}

func TestLogin_KeyTooLargeForKeychain(t *testing.T) {
	keyring.MockInitWithError(keyring.ErrSetDataTooBig)
	t.Cleanup(keyring.MockInit)
	path := writeKeyFile(t, transiptest.PrivateKeyPEM(t))

	_, _, err := execAuth(t, "login", "-u", "jdoe", "-f", path)
	if !errors.Is(err, auth.ErrSecretTooLarge) {
		t.Fatalf("err = %v, want ErrSecretTooLarge", err)
	}
	if !strings.Contains(err.Error(), "config set private-key-file "+path) {
		t.Errorf("missing private-key-file hint: %v", err)
	}
}
