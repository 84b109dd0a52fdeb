package util

import (
	"fmt"
	"regexp"
	"strings"
)

// validLabel matches a single DNS label: alphanumerics and hyphens, not
// starting or ending with a hyphen.
var validLabel = regexp.MustCompile(`^[a-zA-Z0-9]([a-zA-Z0-9\-]*[a-zA-Z0-9])?$`)

// ValidateDomainName checks that name is a registrable domain as TransIP
// expects it in API paths:
//   - At most 253 characters
//   - At least two labels separated by periods
//   - Each label 1-63 characters of a-z, A-Z, 0-9 and hyphens
//   - No label starts or ends with a hyphen
func ValidateDomainName(name string) error {
	if name == "" {
		return fmt.Errorf("domain name is required")
	}
	if len(name) > 253 {
		return fmt.Errorf("domain name must be at most 253 characters, got %d", len(name))
	}

	labels := strings.Split(name, ".")
	if len(labels) < 2 {
		return fmt.Errorf("domain name %q must contain at least one period", name)
	}

	for _, label := range labels {
		if label == "" {
			return fmt.Errorf("domain name %q contains an empty label", name)
		}
		if len(label) > 63 {
			return fmt.Errorf("domain name %q has a label longer than 63 characters", name)
		}
		if !validLabel.MatchString(label) {
			return fmt.Errorf("domain name %q contains invalid label %q (only a-z, A-Z, 0-9 and inner hyphens are allowed)", name, label)
		}
	}

	return nil
}
