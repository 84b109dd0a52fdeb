package publicip

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/netip"
	"strings"
	"time"
)

const (
	httpTimeout  = 10 * time.Second
	maxBodyBytes = 256
)

// Compile-time check that HTTPSource satisfies Source.
var _ Source = (*HTTPSource)(nil)

// HTTPSource discovers the public address from a plain-text "what is my IP"
// endpoint. Each family has its own single-stack endpoint.
type HTTPSource struct {
	name   string
	urls   map[Family]string
	client *http.Client
}

// NewIpifySource returns a source backed by api.ipify.org / api6.ipify.org.
func NewIpifySource() *HTTPSource {
	return NewHTTPSource("ipify", map[Family]string{
		IPv4: "https://api.ipify.org",
		IPv6: "https://api6.ipify.org",
	})
}

// NewIcanhazipSource returns a source backed by ipv4/ipv6.icanhazip.com.
func NewIcanhazipSource() *HTTPSource {
	return NewHTTPSource("icanhazip", map[Family]string{
		IPv4: "https://ipv4.icanhazip.com",
		IPv6: "https://ipv6.icanhazip.com",
	})
}

// NewHTTPSource returns a source querying the given per-family URLs.
func NewHTTPSource(name string, urls map[Family]string) *HTTPSource {
	return &HTTPSource{
		name:   name,
		urls:   urls,
		client: &http.Client{Timeout: httpTimeout},
	}
}

// Name returns the source identifier used in logs and metrics.
func (s *HTTPSource) Name() string { return s.name }

// Lookup fetches the endpoint for family f and parses the body as an address.
func (s *HTTPSource) Lookup(ctx context.Context, f Family) (netip.Addr, error) {
	url, ok := s.urls[f]
	if !ok {
		return netip.Addr{}, fmt.Errorf("%s: no endpoint configured for %s", s.name, f)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: failed to build request: %w", s.name, err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := s.client.Do(req)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: request failed: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return netip.Addr{}, fmt.Errorf("%s: unexpected status %d from %s", s.name, resp.StatusCode, url)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: failed to read response: %w", s.name, err)
	}

	addr, err := netip.ParseAddr(strings.TrimSpace(string(body)))
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: invalid address in response: %w", s.name, err)
	}
	addr, err = validate(f, addr)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: %w", s.name, err)
	}
	return addr, nil
}
