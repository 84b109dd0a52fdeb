package domain

// RecordType represents a DNS record type.
type RecordType string

const (
	RecordTypeA     RecordType = "A"
	RecordTypeAAAA  RecordType = "AAAA"
	RecordTypeCNAME RecordType = "CNAME"
	RecordTypeAlias RecordType = "ALIAS"
	RecordTypeTXT   RecordType = "TXT"
	RecordTypeNS    RecordType = "NS"
	RecordTypeMX    RecordType = "MX"
	RecordTypeSRV   RecordType = "SRV"
	RecordTypeTLSA  RecordType = "TLSA"
	RecordTypeCAA   RecordType = "CAA"
	RecordTypeSSHFP RecordType = "SSHFP"
	RecordTypeNAPTR RecordType = "NAPTR"
)

// Record represents a single DNS entry as held by the provider.
//
// Records are never created locally: they are fetched from the provider
// and only their content is ever mutated.
type Record struct {
	// Domain is the registered domain the entry belongs to (e.g. "example.nl").
	Domain string `json:"domainName"`

	// Name is the record label relative to the domain ("@" for the apex,
	// "www", "*" for a wildcard).
	Name string `json:"name"`

	// Type is the DNS record type (A, AAAA, CNAME, etc.).
	Type RecordType `json:"type"`

	// Expire is the TTL of the entry in seconds.
	Expire int `json:"expire"`

	// Content is the current record value.
	Content string `json:"content"`
}

// Key identifies a record within the provider: (domain, name, type).
type Key struct {
	Domain string
	Name   string
	Type   RecordType
}

// String renders the key as "name.domain TYPE", using the bare domain for apex records.
func (k Key) String() string {
	host := k.Domain
	if k.Name != "" && k.Name != "@" {
		host = k.Name + "." + k.Domain
	}
	return host + " " + string(k.Type)
}

// Key returns the identity of the record.
func (r Record) Key() Key {
	return Key{Domain: r.Domain, Name: r.Name, Type: r.Type}
}

// WithContent returns a copy of the record carrying the given content.
func (r Record) WithContent(content string) Record {
	r.Content = content
	return r
}

// IsAddress reports whether the record holds an IP address (A or AAAA).
func (r Record) IsAddress() bool {
	return r.Type == RecordTypeA || r.Type == RecordTypeAAAA
}
