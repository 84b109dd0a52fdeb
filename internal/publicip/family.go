// Package publicip discovers the public IPv4 and IPv6 addresses of the
// current machine by asking external services what address our requests
// arrive from.
package publicip

import (
	"fmt"
	"net/netip"
	"strings"
)

// Family is an IP address family.
type Family uint8

const (
	IPv4 Family = 1 << iota
	IPv6
)

// AllFamilies lists every family in resolution order.
var AllFamilies = []Family{IPv4, IPv6}

func (f Family) String() string {
	switch f {
	case IPv4:
		return "ipv4"
	case IPv6:
		return "ipv6"
	default:
		return fmt.Sprintf("family(%d)", uint8(f))
	}
}

// ParseFamily parses "ipv4"/"4"/"v4" and "ipv6"/"6"/"v6", case-insensitively.
func ParseFamily(s string) (Family, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "ipv4", "v4", "4", "a":
		return IPv4, nil
	case "ipv6", "v6", "6", "aaaa":
		return IPv6, nil
	}
	return 0, fmt.Errorf("unknown address family %q (valid: ipv4, ipv6)", s)
}

// Families is a set of address families.
type Families uint8

// NewFamilies returns the set containing fs.
func NewFamilies(fs ...Family) Families {
	var s Families
	for _, f := range fs {
		s = s.Add(f)
	}
	return s
}

// Add returns the set with f included.
func (s Families) Add(f Family) Families { return s | Families(f) }

// Has reports whether f is in the set.
func (s Families) Has(f Family) bool { return s&Families(f) != 0 }

// Without returns the families of s that are not in other.
func (s Families) Without(other Families) Families { return s &^ other }

// Empty reports whether the set has no members.
func (s Families) Empty() bool { return s == 0 }

// List returns the members in resolution order (IPv4 first).
func (s Families) List() []Family {
	out := make([]Family, 0, 2)
	for _, f := range AllFamilies {
		if s.Has(f) {
			out = append(out, f)
		}
	}
	return out
}

func (s Families) String() string {
	names := make([]string, 0, 2)
	for _, f := range s.List() {
		names = append(names, f.String())
	}
	return "[" + strings.Join(names, ",") + "]"
}

// Addresses holds at most one address per family.
// The zero value holds none.
type Addresses struct {
	IPv4 netip.Addr
	IPv6 netip.Addr
}

// Get returns the address for f and whether it is set.
func (a Addresses) Get(f Family) (netip.Addr, bool) {
	switch f {
	case IPv4:
		return a.IPv4, a.IPv4.IsValid()
	case IPv6:
		return a.IPv6, a.IPv6.IsValid()
	}
	return netip.Addr{}, false
}

// Set stores addr for f.
func (a *Addresses) Set(f Family, addr netip.Addr) {
	switch f {
	case IPv4:
		a.IPv4 = addr
	case IPv6:
		a.IPv6 = addr
	}
}

// Families returns the set of families that hold an address.
func (a Addresses) Families() Families {
	var s Families
	for _, f := range AllFamilies {
		if _, ok := a.Get(f); ok {
			s = s.Add(f)
		}
	}
	return s
}

// Merge returns a copy of a with every family missing from a taken from other.
func (a Addresses) Merge(other Addresses) Addresses {
	for _, f := range AllFamilies {
		if _, ok := a.Get(f); ok {
			continue
		}
		if addr, ok := other.Get(f); ok {
			a.Set(f, addr)
		}
	}
	return a
}

// EqualFor reports whether a and other hold the same address for every family in fams.
func (a Addresses) EqualFor(other Addresses, fams Families) bool {
	for _, f := range fams.List() {
		x, xok := a.Get(f)
		y, yok := other.Get(f)
		if xok != yok || x != y {
			return false
		}
	}
	return true
}

func (a Addresses) String() string {
	parts := make([]string, 0, 2)
	for _, f := range AllFamilies {
		if addr, ok := a.Get(f); ok {
			parts = append(parts, f.String()+"="+addr.String())
		}
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, " ")
}

// sharedAddressSpace is the carrier-grade NAT range of RFC 6598.
var sharedAddressSpace = netip.MustParsePrefix("100.64.0.0/10")

// validate checks that addr is a usable public address of family f,
// unmapping IPv4-in-IPv6 forms. Private, carrier-grade NAT and
// non-global addresses are rejected.
func validate(f Family, addr netip.Addr) (netip.Addr, error) {
	addr = addr.Unmap()
	switch f {
	case IPv4:
		if !addr.Is4() {
			return netip.Addr{}, fmt.Errorf("%s is not an IPv4 address", addr)
		}
	case IPv6:
		if !addr.Is6() {
			return netip.Addr{}, fmt.Errorf("%s is not an IPv6 address", addr)
		}
	}
	if !addr.IsGlobalUnicast() {
		return netip.Addr{}, fmt.Errorf("%s is not a global unicast address", addr)
	}
	if addr.IsPrivate() || sharedAddressSpace.Contains(addr) {
		return netip.Addr{}, fmt.Errorf("%s is not a public address", addr)
	}
	return addr, nil
}
