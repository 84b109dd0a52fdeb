package services

import (
	"fmt"
	"slices"
	"strings"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/util"
)

// normalizeDomain lowercases and strips any trailing dot from a domain name.
func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimRight(strings.TrimSpace(d), "."))
}

// normalizeDomains normalizes, validates and de-duplicates domain names,
// keeping the first occurrence of each.
func normalizeDomains(domains []string) ([]string, error) {
	if len(domains) == 0 {
		return nil, fmt.Errorf("at least one domain name is required")
	}

	out := make([]string, 0, len(domains))
	for _, d := range domains {
		d = normalizeDomain(d)
		if err := util.ValidateDomainName(d); err != nil {
			return nil, err
		}
		if !slices.Contains(out, d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// NormalizeTypes upper-cases record type filters so "a" matches "A".
func NormalizeTypes(types []string) []domain.RecordType {
	if len(types) == 0 {
		return nil
	}
	out := make([]domain.RecordType, 0, len(types))
	for _, t := range types {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			out = append(out, domain.RecordType(t))
		}
	}
	return out
}
