package providers

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// parsePrivateKey decodes a PEM-encoded RSA private key in either PKCS#8
// ("PRIVATE KEY", the format TransIP hands out) or PKCS#1 ("RSA PRIVATE KEY").
func parsePrivateKey(pemData string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(strings.TrimSpace(pemData)))
	if block == nil {
		return nil, errors.New("private key is not PEM encoded")
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		key, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("invalid PKCS#1 private key: %w", err)
		}
		return key, nil
	case "PRIVATE KEY":
		parsed, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("invalid PKCS#8 private key: %w", err)
		}
		key, ok := parsed.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("private key is %T, want RSA", parsed)
		}
		return key, nil
	}
	return nil, fmt.Errorf("unsupported PEM block %q", block.Type)
}

// sign returns the base64 RSA-SHA512 (PKCS#1 v1.5) signature of body.
func sign(body []byte, key *rsa.PrivateKey) (string, error) {
	digest := sha512.Sum512(body)
	sig, err := rsa.SignPKCS1v15(rand.Reader, key, crypto.SHA512, digest[:])
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(sig), nil
}

// newNonce returns a fresh 32-character hex nonce from a random UUID.
func newNonce() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ValidatePrivateKey reports whether pemData holds an RSA private key that
// Authenticate can sign with.
func ValidatePrivateKey(pemData string) error {
	_, err := parsePrivateKey(pemData)
	return err
}
