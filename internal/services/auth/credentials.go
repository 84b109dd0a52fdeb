package auth

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Environment variables consulted after the command-line flags.
const (
	EnvUsername       = "TRANS_IP_USERNAME"
	EnvPrivateKey     = "TRANS_IP_PRIVATE_KEY"
	EnvPrivateKeyFile = "TRANS_IP_PRIVATE_KEY_FILE"

	// EnvAPIURL overrides the TransIP API endpoint.
	EnvAPIURL = "TRANS_IP_API_URL"
)

// Credentials identify a TransIP account: the login name and the PEM
// encoded private key generated in the TransIP control panel.
type Credentials struct {
	Login      string
	PrivateKey string

	// Source names where the login was found ("flag", "env", "config" or "keychain").
	Source string
}

// Sources lists every place credentials can come from, highest precedence first.
type Sources struct {
	// Flags.
	Login          string
	PrivateKey     string
	PrivateKeyFile string

	// Getenv reads the environment. Nil disables the environment.
	Getenv func(string) string

	// Config file values.
	ConfigLogin          string
	ConfigPrivateKeyFile string

	// Store is the keychain. Nil disables it.
	Store Store

	// ReadFile reads private key files. Defaults to os.ReadFile.
	ReadFile func(string) ([]byte, error)
}

type candidate struct {
	source  string
	value   string
	keyFile string
}

// ResolveCredentials picks the login and private key independently, each from
// the first source that has one: flags, then environment, then config file,
// then keychain. It fails with ErrMissingCredentials when either is absent.
func ResolveCredentials(src Sources) (Credentials, error) {
	getenv := src.Getenv
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	readFile := src.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}

	stored := func(key string) (string, error) {
		if src.Store == nil {
			return "", nil
		}
		v, err := src.Store.GetSecret(key)
		if errors.Is(err, ErrSecretNotFound) {
			return "", nil
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s from keychain: %w", key, err)
		}
		return v, nil
	}

	var creds Credentials

	for _, c := range []candidate{
		{source: "flag", value: src.Login},
		{source: "env", value: getenv(EnvUsername)},
		{source: "config", value: src.ConfigLogin},
	} {
		if v := strings.TrimSpace(c.value); v != "" {
			creds.Login, creds.Source = v, c.source
			break
		}
	}
	if creds.Login == "" {
		v, err := stored(KeyLogin)
		if err != nil {
			return Credentials{}, err
		}
		if v = strings.TrimSpace(v); v != "" {
			creds.Login, creds.Source = v, "keychain"
		}
	}

	for _, c := range []candidate{
		{source: "flag", value: src.PrivateKey},
		{source: "flag", keyFile: src.PrivateKeyFile},
		{source: "env", value: getenv(EnvPrivateKey)},
		{source: "env", keyFile: getenv(EnvPrivateKeyFile)},
		{source: "config", keyFile: src.ConfigPrivateKeyFile},
	} {
		if strings.TrimSpace(c.value) != "" {
			creds.PrivateKey = c.value
			break
		}
		if path := strings.TrimSpace(c.keyFile); path != "" {
			data, err := readFile(expandHome(path))
			if err != nil {
				return Credentials{}, fmt.Errorf("failed to read private key file (%s): %w", c.source, err)
			}
			creds.PrivateKey = string(data)
			break
		}
	}
	if strings.TrimSpace(creds.PrivateKey) == "" {
		v, err := stored(KeyPrivateKey)
		if err != nil {
			return Credentials{}, err
		}
		creds.PrivateKey = v
	}

	switch {
	case creds.Login == "" && strings.TrimSpace(creds.PrivateKey) == "":
		return Credentials{}, fmt.Errorf("%w: no username or private key (use --username and --private-key-file, %s, or run 'transip-dns auth login')", ErrMissingCredentials, EnvUsername)
	case creds.Login == "":
		return Credentials{}, fmt.Errorf("%w: no username (use --username, %s, or run 'transip-dns auth login')", ErrMissingCredentials, EnvUsername)
	case strings.TrimSpace(creds.PrivateKey) == "":
		return Credentials{}, fmt.Errorf("%w: no private key (use --private-key-file, %s, or run 'transip-dns auth login')", ErrMissingCredentials, EnvPrivateKeyFile)
	}
	return creds, nil
}

// expandHome replaces a leading "~/" with the user's home directory.
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return home + path[1:]
}
