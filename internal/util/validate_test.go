package util

import (
	"strings"
	"testing"
)

func TestValidateDomainName_Valid(t *testing.T) {
	valid := []string{
		"example.nl",
		"x.nl",
		"my-site.example.com",
		"EXAMPLE.COM",
		"123.be",
		"xn--bcher-kva.de",
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			if err := ValidateDomainName(name); err != nil {
				t.Errorf("expected %q to be valid, got error: %v", name, err)
			}
		})
	}
}

func TestValidateDomainName_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		wantMsg string
	}{
		{"", "required"},
		{"localhost", "at least one period"},
		{"example..nl", "empty label"},
		{".example.nl", "empty label"},
		{"-bad.nl", "invalid label"},
		{"bad-.nl", "invalid label"},
		{"under_score.nl", "invalid label"},
		{"white space.nl", "invalid label"},
		{strings.Repeat("a", 64) + ".nl", "longer than 63"},
		{strings.Repeat("a.", 127) + "nl", "at most 253"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDomainName(tt.name)
			if err == nil {
				t.Errorf("expected %q to be invalid, got nil", tt.name)
				return
			}
			if got := err.Error(); !strings.Contains(got, tt.wantMsg) {
				t.Errorf("expected error containing %q, got %q", tt.wantMsg, got)
			}
		})
	}
}
