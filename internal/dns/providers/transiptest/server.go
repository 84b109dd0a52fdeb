// Package transiptest provides an in-process fake of the TransIP API for
// tests of code that sits above the providers package.
package transiptest

import (
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha512"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
)

// Token is the bearer token handed out by every successful /auth call.
const Token = "transiptest-token"

var (
	keyOnce sync.Once
	key     *rsa.PrivateKey
)

type entry struct {
	Name    string `json:"name"`
	Expire  int    `json:"expire"`
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Server is a fake TransIP API backed by an in-memory zone per domain.
type Server struct {
	URL string

	mu        sync.Mutex
	zones     map[string][]entry
	rejected  map[string]bool
	patches   []domain.Record
	authCalls int
	listCalls int
}

// New starts a Server that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		zones:    map[string][]entry{},
		rejected: map[string]bool{},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", s.handleAuth)
	mux.HandleFunc("GET /domains/{domain}/dns", s.handleList)
	mux.HandleFunc("PATCH /domains/{domain}/dns", s.handlePatch)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	s.URL = srv.URL
	return s
}

// PrivateKeyPEM returns the PKCS#8 key the server accepts signatures from.
// The key is generated once per test binary.
func PrivateKeyPEM(t testing.TB) string {
	t.Helper()
	der, err := x509.MarshalPKCS8PrivateKey(signingKey())
	if err != nil {
		t.Fatalf("transiptest: marshal key: %v", err)
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der}))
}

func signingKey() *rsa.PrivateKey {
	keyOnce.Do(func() {
		k, err := rsa.GenerateKey(rand.Reader, 2048)
		if err != nil {
			panic(err)
		}
		key = k
	})
	return key
}

// SetZone replaces the records of the domain named in each record.
func (s *Server) SetZone(domainName string, records ...domain.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := make([]entry, 0, len(records))
	for _, r := range records {
		entries = append(entries, entry{Name: r.Name, Expire: r.Expire, Type: string(r.Type), Content: r.Content})
	}
	s.zones[domainName] = entries
}

// Zone returns the current records of a domain.
func (s *Server) Zone(domainName string) []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Record, 0, len(s.zones[domainName]))
	for _, e := range s.zones[domainName] {
		out = append(out, domain.Record{Domain: domainName, Name: e.Name, Type: domain.RecordType(e.Type), Expire: e.Expire, Content: e.Content})
	}
	return out
}

// RejectUpdates makes every PATCH for the named record fail with 406.
func (s *Server) RejectUpdates(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rejected[name] = true
}

// Patches returns every record the server was asked to update, in arrival order.
func (s *Server) Patches() []domain.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Record(nil), s.patches...)
}

// AuthCalls returns how many times /auth was called.
func (s *Server) AuthCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.authCalls
}

// ListCalls returns how many zone listings were served.
func (s *Server) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAuth(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)

	s.mu.Lock()
	s.authCalls++
	s.mu.Unlock()

	sig, err := base64.StdEncoding.DecodeString(r.Header.Get("Signature"))
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}
	digest := sha512.Sum512(body)
	if rsa.VerifyPKCS1v15(&signingKey().PublicKey, crypto.SHA512, digest[:], sig) != nil {
		writeError(w, http.StatusUnauthorized, "Invalid signature")
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"token": Token})
}

func authorized(w http.ResponseWriter, r *http.Request) bool {
	if r.Header.Get("Authorization") != "Bearer "+Token {
		writeError(w, http.StatusUnauthorized, "Your access token has expired.")
		return false
	}
	return true
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	if !authorized(w, r) {
		return
	}
	s.mu.Lock()
	s.listCalls++
	entries, ok := s.zones[r.PathValue("domain")]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Domain not found")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dnsEntries": entries})
}

func (s *Server) handlePatch(w http.ResponseWriter, r *http.Request) {
	if !authorized(w, r) {
		return
	}
	var body struct {
		DNSEntry entry `json:"dnsEntry"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	domainName := r.PathValue("domain")
	e := body.DNSEntry

	s.mu.Lock()
	defer s.mu.Unlock()
	s.patches = append(s.patches, domain.Record{Domain: domainName, Name: e.Name, Type: domain.RecordType(e.Type), Expire: e.Expire, Content: e.Content})

	if s.rejected[e.Name] {
		writeError(w, http.StatusNotAcceptable, "This DNS entry cannot be updated")
		return
	}

	entries := s.zones[domainName]
	for i := range entries {
		if entries[i].Name == e.Name && entries[i].Type == e.Type && entries[i].Expire == e.Expire {
			entries[i].Content = e.Content
			w.WriteHeader(http.StatusNoContent)
			return
		}
	}
	writeError(w, http.StatusNotFound, "DNS entry not found")
}
