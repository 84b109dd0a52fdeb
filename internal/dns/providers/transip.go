package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/services/auth"

	"github.com/go-logr/logr"
)

const (
	transipBaseURL   = "https://api.transip.nl/v6"
	transipTimeout   = 30 * time.Second
	maxResponseBytes = 10 << 20
)

// Compile-time checks that Session and Connector satisfy the domain interfaces.
var (
	_ domain.Directory = (*Session)(nil)
	_ domain.Connector = (*Connector)(nil)
)

// TransIPClient talks to the TransIP REST API v6.
// It holds no credentials; Authenticate returns a Session carrying the token.
type TransIPClient struct {
	baseURL string
	client  *http.Client
	log     logr.Logger

	expiration string
	label      string
	readOnly   bool
	globalKey  bool
}

// ClientOption configures a TransIPClient.
type ClientOption func(*TransIPClient)

// WithBaseURL overrides the API endpoint.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *TransIPClient) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient replaces the HTTP client used for all requests.
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *TransIPClient) {
		c.client = client
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(log logr.Logger) ClientOption {
	return func(c *TransIPClient) {
		c.log = log
	}
}

// WithTokenExpiration requests a token lifetime such as "30 minutes" or "1 month".
// Empty leaves the provider default.
func WithTokenExpiration(expiration string) ClientOption {
	return func(c *TransIPClient) {
		c.expiration = strings.TrimSpace(expiration)
	}
}

// WithTokenLabel sets the label the token is listed under in the control panel.
// TransIP requires labels to be unique among active tokens.
func WithTokenLabel(label string) ClientOption {
	return func(c *TransIPClient) {
		c.label = strings.TrimSpace(label)
	}
}

// WithReadOnly requests a token that cannot modify anything.
func WithReadOnly(readOnly bool) ClientOption {
	return func(c *TransIPClient) {
		c.readOnly = readOnly
	}
}

// WithGlobalKey requests a token usable from any address, bypassing the
// account's IP whitelist.
func WithGlobalKey(global bool) ClientOption {
	return func(c *TransIPClient) {
		c.globalKey = global
	}
}

// NewTransIPClient returns a client for the production TransIP API.
func NewTransIPClient(opts ...ClientOption) *TransIPClient {
	c := &TransIPClient{
		baseURL: transipBaseURL,
		client:  &http.Client{Timeout: transipTimeout},
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// --- API request/response types ---

// transipAuthRequest is the signed body of POST /auth.
type transipAuthRequest struct {
	Login          string `json:"login"`
	Nonce          string `json:"nonce"`
	ReadOnly       bool   `json:"read_only,omitempty"`
	ExpirationTime string `json:"expiration_time,omitempty"`
	Label          string `json:"label,omitempty"`
	GlobalKey      bool   `json:"global_key,omitempty"`
}

// transipDNSEntry maps to the TransIP DnsEntry object.
type transipDNSEntry struct {
	Name    string `json:"name"`
	Expire  int    `json:"expire"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// transipErrorBody is the shape of every TransIP error response.
type transipErrorBody struct {
	Error string `json:"error"`
}

// --- HTTP helpers ---

// do sends a request with the given body and decodes a JSON response into out.
// Network failures wrap domain.ErrTransport; non-2xx responses are mapped by statusError.
func (c *TransIPClient) do(ctx context.Context, method, path string, header http.Header, body []byte, out any) error {
	var bodyReader io.Reader
	if body != nil {
		bodyReader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("transip: failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, values := range header {
		req.Header[key] = values
	}

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: transip: %s %s: %w", domain.ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%w: transip: failed to read response: %w", domain.ErrTransport, err)
	}

	c.log.V(1).Info("transip request", "method", method, "path", path,
		"status", resp.StatusCode, "duration", time.Since(start).String())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("transip: failed to decode response: %w", err)
	}
	return nil
}

// statusError maps an HTTP status and TransIP error body to domain sentinels.
func statusError(status int, body []byte) error {
	msg := http.StatusText(status)
	var apiErr transipErrorBody
	if json.Unmarshal(body, &apiErr) == nil && apiErr.Error != "" {
		msg = apiErr.Error
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case status == http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case status == http.StatusTooManyRequests || status >= 500:
		return fmt.Errorf("%w: transip: %s (status %d)", domain.ErrTransport, msg, status)
	}
	return fmt.Errorf("transip: %s (status %d)", msg, status)
}

// --- Authentication ---

// Authenticate exchanges a signed login request for a session token.
//
// The request body carries the login and a fresh nonce; its exact bytes are
// signed with the account's private key (RSA, SHA-512) and the base64
// signature is sent in the Signature header. Every failure, including
// transport errors, wraps domain.ErrUnauthorized. Nothing is retried.
func (c *TransIPClient) Authenticate(ctx context.Context, login, privateKeyPEM string) (*Session, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return nil, fmt.Errorf("%w: login is required", domain.ErrUnauthorized)
	}

	key, err := parsePrivateKey(privateKeyPEM)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrUnauthorized, err)
	}

	body, err := json.Marshal(transipAuthRequest{
		Login:          login,
		Nonce:          newNonce(),
		ReadOnly:       c.readOnly,
		ExpirationTime: c.expiration,
		Label:          c.label,
		GlobalKey:      c.globalKey,
	})
	if err != nil {
		return nil, fmt.Errorf("transip: failed to encode auth request: %w", err)
	}

	signature, err := sign(body, key)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign auth request: %w", domain.ErrUnauthorized, err)
	}

	var out struct {
		Token string `json:"token"`
	}
	header := http.Header{"Signature": []string{signature}}
	if err := c.do(ctx, http.MethodPost, "/auth", header, body, &out); err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			return nil, fmt.Errorf("failed to authenticate %q: %w", login, err)
		}
		return nil, fmt.Errorf("failed to authenticate %q: %w: %w", login, domain.ErrUnauthorized, err)
	}
	if out.Token == "" {
		return nil, fmt.Errorf("failed to authenticate %q: %w: no token in response", login, domain.ErrUnauthorized)
	}

	c.log.V(1).Info("authenticated", "login", login)
	return &Session{client: c, token: out.Token}, nil
}

// --- Session ---

// Session is an authenticated TransIP API session. Every call carries the
// bearer token obtained by Authenticate. A Session is never refreshed: once
// the token expires, calls fail with domain.ErrUnauthorized.
type Session struct {
	client *TransIPClient
	token  string
}

func (s *Session) authHeader() http.Header {
	return http.Header{"Authorization": []string{"Bearer " + s.token}}
}

func dnsPath(domainName string) string {
	return "/domains/" + url.PathEscape(domainName) + "/dns"
}

// ListRecords returns all DNS entries of the given domain.
func (s *Session) ListRecords(ctx context.Context, domainName string) ([]domain.Record, error) {
	var out struct {
		DNSEntries []transipDNSEntry `json:"dnsEntries"`
	}
	if err := s.client.do(ctx, http.MethodGet, dnsPath(domainName), s.authHeader(), nil, &out); err != nil {
		return nil, fmt.Errorf("failed to list records for %q: %w", domainName, err)
	}

	records := make([]domain.Record, 0, len(out.DNSEntries))
	for _, e := range out.DNSEntries {
		records = append(records, toDomainRecord(domainName, e))
	}
	return records, nil
}

// ApplyRecord updates a single DNS entry. The full tuple is sent because
// TransIP matches the existing entry on name, expire and type.
func (s *Session) ApplyRecord(ctx context.Context, record domain.Record) error {
	body, err := json.Marshal(struct {
		DNSEntry transipDNSEntry `json:"dnsEntry"`
	}{
		DNSEntry: transipDNSEntry{
			Name:    record.Name,
			Expire:  record.Expire,
			Type:    string(record.Type),
			Content: record.Content,
		},
	})
	if err != nil {
		return fmt.Errorf("transip: failed to encode record: %w", err)
	}

	if err := s.client.do(ctx, http.MethodPatch, dnsPath(record.Domain), s.authHeader(), body, nil); err != nil {
		return fmt.Errorf("failed to update %s: %w", record.Key(), err)
	}
	return nil
}

// --- Connector ---

// Connector authenticates on first use and reuses the resulting Session for
// the rest of the process.
type Connector struct {
	client      *TransIPClient
	credentials auth.Credentials

	mu      sync.Mutex
	session *Session
}

// NewConnector returns a Connector that authenticates client with credentials.
func NewConnector(client *TransIPClient, credentials auth.Credentials) *Connector {
	return &Connector{client: client, credentials: credentials}
}

// Connect returns the process-wide Session, authenticating if none exists yet.
// A failed attempt is not remembered, so a later call tries again.
func (c *Connector) Connect(ctx context.Context) (domain.Directory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return c.session, nil
	}

	session, err := c.client.Authenticate(ctx, c.credentials.Login, c.credentials.PrivateKey)
	if err != nil {
		return nil, err
	}
	c.session = session
	return session, nil
}

// --- Conversion helpers ---

// toDomainRecord converts a TransIP DNS entry to a domain.Record.
func toDomainRecord(domainName string, e transipDNSEntry) domain.Record {
	return domain.Record{
		Domain:  domainName,
		Name:    e.Name,
		Type:    domain.RecordType(e.Type),
		Expire:  e.Expire,
		Content: e.Content,
	}
}
