package services

import (
	"slices"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
)

// Select returns the records whose name is in names and whose type is in
// types, preserving input order. An empty filter matches every record.
// Names are compared exactly; "@" denotes the domain apex.
func Select(records []domain.Record, names []string, types []domain.RecordType) []domain.Record {
	out := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if len(names) > 0 && !slices.Contains(names, r.Name) {
			continue
		}
		if len(types) > 0 && !slices.Contains(types, r.Type) {
			continue
		}
		out = append(out, r)
	}
	return out
}
