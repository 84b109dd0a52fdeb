package publicip

import (
	"context"
	"fmt"
	"net/netip"
	"strings"
	"time"

	"github.com/miekg/dns"
)

const dnsTimeout = 5 * time.Second

// Compile-time check that DNSSource satisfies Source.
var _ Source = (*DNSSource)(nil)

// DNSSource discovers the public address by asking a resolver that echoes
// the querying address back, e.g. OpenDNS for myip.opendns.com.
//
// The query for each family is sent to a nameserver reachable only over
// that family, so the answer reflects the address used for that family.
type DNSSource struct {
	name     string
	question string
	txt      bool
	servers  map[Family]string
	client   *dns.Client
}

// NewOpenDNSSource returns a source querying myip.opendns.com (A / AAAA)
// at the OpenDNS resolvers.
func NewOpenDNSSource() *DNSSource {
	return &DNSSource{
		name:     "opendns",
		question: "myip.opendns.com.",
		servers: map[Family]string{
			IPv4: "208.67.222.222:53",
			IPv6: "[2620:119:35::35]:53",
		},
		client: &dns.Client{Net: "udp", Timeout: dnsTimeout},
	}
}

// NewGoogleDNSSource returns a source querying o-o.myaddr.l.google.com (TXT)
// at Google's authoritative nameserver.
func NewGoogleDNSSource() *DNSSource {
	return &DNSSource{
		name:     "google",
		question: "o-o.myaddr.l.google.com.",
		txt:      true,
		servers: map[Family]string{
			IPv4: "216.239.32.10:53",
			IPv6: "[2001:4860:4802:32::a]:53",
		},
		client: &dns.Client{Net: "udp", Timeout: dnsTimeout},
	}
}

// Name returns the source identifier used in logs and metrics.
func (s *DNSSource) Name() string { return s.name }

// Lookup queries the nameserver for family f and returns the echoed address.
func (s *DNSSource) Lookup(ctx context.Context, f Family) (netip.Addr, error) {
	server, ok := s.servers[f]
	if !ok {
		return netip.Addr{}, fmt.Errorf("%s: no nameserver configured for %s", s.name, f)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(s.question), s.qtype(f))
	msg.RecursionDesired = false

	resp, _, err := s.client.ExchangeContext(ctx, msg, server)
	if err != nil {
		return netip.Addr{}, fmt.Errorf("%s: query %s failed: %w", s.name, server, err)
	}
	if resp.Rcode != dns.RcodeSuccess {
		return netip.Addr{}, fmt.Errorf("%s: query %s returned %s", s.name, server, dns.RcodeToString[resp.Rcode])
	}

	for _, rr := range resp.Answer {
		addr, ok := answerAddr(rr)
		if !ok {
			continue
		}
		if valid, err := validate(f, addr); err == nil {
			return valid, nil
		}
	}
	return netip.Addr{}, fmt.Errorf("%s: no %s address in answer from %s", s.name, f, server)
}

func (s *DNSSource) qtype(f Family) uint16 {
	if s.txt {
		return dns.TypeTXT
	}
	if f == IPv6 {
		return dns.TypeAAAA
	}
	return dns.TypeA
}

// answerAddr extracts an address from an A, AAAA or TXT answer.
func answerAddr(rr dns.RR) (netip.Addr, bool) {
	switch rr := rr.(type) {
	case *dns.A:
		return netip.AddrFromSlice(rr.A)
	case *dns.AAAA:
		return netip.AddrFromSlice(rr.AAAA)
	case *dns.TXT:
		for _, txt := range rr.Txt {
			if addr, err := netip.ParseAddr(strings.TrimSpace(txt)); err == nil {
				return addr, true
			}
		}
	}
	return netip.Addr{}, false
}
