package services

import (
	"errors"
	"net/netip"
	"testing"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/publicip"

	"github.com/google/go-cmp/cmp"
)

func addrs(v4, v6 string) publicip.Addresses {
	var a publicip.Addresses
	if v4 != "" {
		a.IPv4 = netip.MustParseAddr(v4)
	}
	if v6 != "" {
		a.IPv6 = netip.MustParseAddr(v6)
	}
	return a
}

func TestRequiredFamilies(t *testing.T) {
	tests := []struct {
		name    string
		records []domain.Record
		want    publicip.Families
	}{
		{"none", nil, publicip.NewFamilies()},
		{"a only", []domain.Record{rec("x.nl", "@", domain.RecordTypeA, ""), rec("x.nl", "w", domain.RecordTypeA, "")}, publicip.NewFamilies(publicip.IPv4)},
		{"aaaa only", []domain.Record{rec("x.nl", "@", domain.RecordTypeAAAA, "")}, publicip.NewFamilies(publicip.IPv6)},
		{"both", []domain.Record{rec("x.nl", "@", domain.RecordTypeA, ""), rec("x.nl", "@", domain.RecordTypeAAAA, "")}, publicip.NewFamilies(publicip.IPv4, publicip.IPv6)},
		{"non-address", []domain.Record{rec("x.nl", "@", domain.RecordTypeTXT, "")}, publicip.NewFamilies()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequiredFamilies(tt.records); got != tt.want {
				t.Errorf("RequiredFamilies = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDiff_AddressScenario(t *testing.T) {
	records := []domain.Record{rec("x.nl", "@", domain.RecordTypeA, "1.1.1.1")}

	got, err := Diff(records, "", addrs("2.2.2.2", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Change{{Record: records[0], OldContent: "1.1.1.1", NewContent: "2.2.2.2"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiff_Unchanged(t *testing.T) {
	records := []domain.Record{rec("x.nl", "@", domain.RecordTypeA, "1.1.1.1")}

	got, err := Diff(records, "", addrs("1.1.1.1", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no changes, got %d", len(got))
	}
}

func TestDiff_ExplicitContentWinsForEveryType(t *testing.T) {
	records := []domain.Record{
		rec("x.nl", "@", domain.RecordTypeA, "1.1.1.1"),
		rec("x.nl", "@", domain.RecordTypeTXT, "old"),
		rec("x.nl", "www", domain.RecordTypeCNAME, "target"),
	}

	// Resolved addresses must be ignored when content is explicit.
	got, err := Diff(records, "target", addrs("9.9.9.9", ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []domain.Change{
		{Record: records[0], OldContent: "1.1.1.1", NewContent: "target"},
		{Record: records[1], OldContent: "old", NewContent: "target"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Diff mismatch (-want +got):\n%s", diff)
	}
}

func TestDiff_AmbiguousContent(t *testing.T) {
	records := []domain.Record{
		rec("x.nl", "@", domain.RecordTypeA, "1.1.1.1"),
		rec("x.nl", "@", domain.RecordTypeTXT, "v=spf1"),
	}

	got, err := Diff(records, "", addrs("2.2.2.2", ""))
	if got != nil {
		t.Errorf("expected no changes, got %v", got)
	}
	if !errors.Is(err, domain.ErrAmbiguousContent) {
		t.Fatalf("expected ErrAmbiguousContent, got: %v", err)
	}
	var ambiguous *domain.AmbiguousContentError
	if !errors.As(err, &ambiguous) {
		t.Fatalf("expected *AmbiguousContentError, got %T", err)
	}
	if ambiguous.Record.Key() != records[1].Key() {
		t.Errorf("error names %s, want %s", ambiguous.Record.Key(), records[1].Key())
	}
}

func TestDiff_MissingFamily(t *testing.T) {
	records := []domain.Record{rec("x.nl", "@", domain.RecordTypeAAAA, "2001:db8::1")}

	_, err := Diff(records, "", addrs("2.2.2.2", ""))
	if !errors.Is(err, domain.ErrAddressResolution) {
		t.Errorf("expected ErrAddressResolution, got: %v", err)
	}
}

func TestDiff_Idempotent(t *testing.T) {
	records := []domain.Record{
		rec("x.nl", "@", domain.RecordTypeA, "1.1.1.1"),
		rec("x.nl", "@", domain.RecordTypeAAAA, "2001:db8::1"),
		rec("x.nl", "home", domain.RecordTypeA, "2.2.2.2"),
	}
	resolved := addrs("2.2.2.2", "2001:db8::2")

	changes, err := Diff(records, "", resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(changes))
	}

	after := make([]domain.Record, len(records))
	copy(after, records)
	for _, c := range changes {
		for i := range after {
			if after[i].Key() == c.Key() {
				after[i] = c.Target()
			}
		}
	}

	again, err := Diff(after, "", resolved)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected no changes after applying, got %d", len(again))
	}
}
