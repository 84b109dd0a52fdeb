package services

import (
	"errors"
	"fmt"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/publicip"
)

// RequiredFamilies returns the address families needed to compute content
// for records: IPv4 for A records, IPv6 for AAAA records.
func RequiredFamilies(records []domain.Record) publicip.Families {
	var fams publicip.Families
	for _, r := range records {
		if f, ok := familyOf(r.Type); ok {
			fams = fams.Add(f)
		}
	}
	return fams
}

func familyOf(t domain.RecordType) (publicip.Family, bool) {
	switch t {
	case domain.RecordTypeA:
		return publicip.IPv4, true
	case domain.RecordTypeAAAA:
		return publicip.IPv6, true
	}
	return 0, false
}

// contentFor returns the content record should have. Explicit content wins
// for every type; otherwise A and AAAA records take the resolved address of
// their family.
func contentFor(record domain.Record, explicit string, addrs publicip.Addresses) (string, error) {
	if explicit != "" {
		return explicit, nil
	}

	f, ok := familyOf(record.Type)
	if !ok {
		return "", &domain.AmbiguousContentError{Record: record}
	}
	addr, ok := addrs.Get(f)
	if !ok {
		return "", fmt.Errorf("%w: no %s address for %s", domain.ErrAddressResolution, f, record.Key())
	}
	return addr.String(), nil
}

// Diff computes the changes that bring records to their desired content.
// An empty explicit content means none was supplied.
//
// Records already holding the desired content produce no change. If the
// content of any record cannot be determined, Diff returns no changes at
// all and an error naming every such record.
func Diff(records []domain.Record, explicit string, addrs publicip.Addresses) ([]domain.Change, error) {
	var (
		changes []domain.Change
		errs    []error
	)
	for _, r := range records {
		content, err := contentFor(r, explicit, addrs)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if c, ok := domain.NewChange(r, content); ok {
			changes = append(changes, c)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return changes, nil
}
