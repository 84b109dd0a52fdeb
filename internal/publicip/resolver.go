package publicip

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"strings"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/metrics"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// Source answers what public address our traffic of a family originates from.
type Source interface {
	// Name returns a short identifier used in logs and metrics.
	Name() string

	// Lookup returns the public address for family f.
	Lookup(ctx context.Context, f Family) (netip.Addr, error)
}

// SourceMode selects which kinds of Source a Resolver consults.
type SourceMode string

const (
	// SourceAuto tries DNS sources first and falls back to HTTP.
	SourceAuto SourceMode = "auto"
	// SourceDNS consults DNS sources only.
	SourceDNS SourceMode = "dns"
	// SourceHTTP consults HTTP sources only.
	SourceHTTP SourceMode = "http"
)

// ParseSourceMode parses a source mode name. An empty string means SourceAuto.
func ParseSourceMode(s string) (SourceMode, error) {
	switch mode := SourceMode(strings.ToLower(strings.TrimSpace(s))); mode {
	case "":
		return SourceAuto, nil
	case SourceAuto, SourceDNS, SourceHTTP:
		return mode, nil
	}
	return "", fmt.Errorf("unknown address source %q (valid: auto, dns, http)", s)
}

// SourcesFor returns the default sources for mode, in the order they are tried.
func SourcesFor(mode SourceMode) []Source {
	dnsSources := []Source{NewOpenDNSSource(), NewGoogleDNSSource()}
	httpSources := []Source{NewIpifySource(), NewIcanhazipSource()}

	switch mode {
	case SourceDNS:
		return dnsSources
	case SourceHTTP:
		return httpSources
	default:
		return append(dnsSources, httpSources...)
	}
}

// Resolver resolves the public address of each requested family.
type Resolver struct {
	sources []Source
	log     logr.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithSources replaces the sources consulted, in order.
func WithSources(sources ...Source) Option {
	return func(r *Resolver) {
		r.sources = sources
	}
}

// WithLogger sets the logger used for per-source diagnostics.
func WithLogger(log logr.Logger) Option {
	return func(r *Resolver) {
		r.log = log
	}
}

// NewResolver returns a Resolver using the SourceAuto sources unless overridden.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		sources: SourcesFor(SourceAuto),
		log:     logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve determines the public address of every family in fams. Families
// are resolved concurrently; families not in fams are never queried.
// If any requested family cannot be resolved the whole call fails with an
// error wrapping domain.ErrAddressResolution.
func (r *Resolver) Resolve(ctx context.Context, fams Families) (Addresses, error) {
	list := fams.List()
	found := make([]netip.Addr, len(list))
	errs := make([]error, len(list))

	var g errgroup.Group
	for i, f := range list {
		g.Go(func() error {
			found[i], errs[i] = r.resolveFamily(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	var out Addresses
	for i, f := range list {
		if errs[i] != nil {
			continue
		}
		out.Set(f, found[i])
	}
	if err := errors.Join(errs...); err != nil {
		return out, err
	}
	return out, nil
}

// resolveFamily tries each source in order and returns the first answer.
func (r *Resolver) resolveFamily(ctx context.Context, f Family) (netip.Addr, error) {
	if len(r.sources) == 0 {
		return netip.Addr{}, fmt.Errorf("%w: %s: no address sources configured", domain.ErrAddressResolution, f)
	}

	var failures []error
	for _, src := range r.sources {
		addr, err := src.Lookup(ctx, f)
		metrics.AddressLookup(f.String(), src.Name(), err)
		if err == nil {
			r.log.V(1).Info("resolved public address", "family", f.String(), "source", src.Name(), "address", addr.String())
			return addr, nil
		}
		r.log.V(1).Info("address source failed", "family", f.String(), "source", src.Name(), "error", err.Error())
		failures = append(failures, err)

		if ctx.Err() != nil {
			break
		}
	}
	return netip.Addr{}, fmt.Errorf("%w: %s: %w", domain.ErrAddressResolution, f, errors.Join(failures...))
}
