package domain

import "context"

// Directory is an authenticated view of the provider's DNS records.
type Directory interface {
	// ListRecords returns all DNS records for the given domain.
	ListRecords(ctx context.Context, domain string) ([]Record, error)

	// ApplyRecord writes the full record tuple (name, expire, type, content)
	// to its domain. The provider replaces the entry matching the identity.
	ApplyRecord(ctx context.Context, record Record) error
}

// Connector opens an authenticated Directory.
//
// Implementations authenticate once and hand out the same session to
// every later caller within the process.
type Connector interface {
	Connect(ctx context.Context) (Directory, error)
}
