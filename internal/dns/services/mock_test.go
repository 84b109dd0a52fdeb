package services

import (
	"context"
	"fmt"
	"net/netip"
	"sync"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/publicip"
)

// --- Mock directory ---

type mockDirectory struct {
	mu       sync.Mutex
	records  map[string][]domain.Record
	listErr  map[string]error
	applyErr map[domain.Key]error

	listCalls int
	applied   []domain.Record
}

func newMockDirectory() *mockDirectory {
	return &mockDirectory{
		records:  map[string][]domain.Record{},
		listErr:  map[string]error{},
		applyErr: map[domain.Key]error{},
	}
}

func (m *mockDirectory) ListRecords(_ context.Context, d string) ([]domain.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	if err := m.listErr[d]; err != nil {
		return nil, err
	}
	recs, ok := m.records[d]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, d)
	}
	return append([]domain.Record(nil), recs...), nil
}

func (m *mockDirectory) ApplyRecord(_ context.Context, r domain.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.applyErr[r.Key()]; err != nil {
		return err
	}
	m.applied = append(m.applied, r)
	for i, existing := range m.records[r.Domain] {
		if existing.Key() == r.Key() {
			m.records[r.Domain][i] = r
		}
	}
	return nil
}

func (m *mockDirectory) appliedKeys() map[domain.Key]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.Key]string, len(m.applied))
	for _, r := range m.applied {
		out[r.Key()] = r.Content
	}
	return out
}

// --- Mock connector ---

type mockConnector struct {
	dir   domain.Directory
	err   error
	calls int
}

func (m *mockConnector) Connect(context.Context) (domain.Directory, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.dir, nil
}

// --- Mock resolver ---

type mockResolver struct {
	mu    sync.Mutex
	addrs publicip.Addresses
	err   error
	calls map[publicip.Family]int
}

func newMockResolver(v4, v6 string) *mockResolver {
	m := &mockResolver{calls: map[publicip.Family]int{}}
	if v4 != "" {
		m.addrs.IPv4 = netip.MustParseAddr(v4)
	}
	if v6 != "" {
		m.addrs.IPv6 = netip.MustParseAddr(v6)
	}
	return m
}

func (m *mockResolver) Resolve(_ context.Context, fams publicip.Families) (publicip.Addresses, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out publicip.Addresses
	for _, f := range fams.List() {
		m.calls[f]++
		if addr, ok := m.addrs.Get(f); ok {
			out.Set(f, addr)
		}
	}
	if m.err != nil {
		return out, m.err
	}
	for _, f := range fams.List() {
		if _, ok := out.Get(f); !ok {
			return out, fmt.Errorf("%w: %s", domain.ErrAddressResolution, f)
		}
	}
	return out, nil
}

func (m *mockResolver) callCount(f publicip.Family) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[f]
}

func (m *mockResolver) totalCalls() int {
	return m.callCount(publicip.IPv4) + m.callCount(publicip.IPv6)
}

func rec(d, name string, t domain.RecordType, content string) domain.Record {
	return domain.Record{Domain: d, Name: name, Type: t, Expire: 300, Content: content}
}
