// Package services provides the DNS reconciliation layer.
//
// A Reconciler fetches the records of one or more domains, selects the ones
// the caller asked for, works out their desired content (explicit or the
// machine's public address) and applies the resulting changes. CLI commands
// and the scheduler drive it; neither talks to the provider directly.
package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/metrics"
	"nathanbeddoewebdev/transip-dns/internal/publicip"

	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// AddressResolver resolves the public address of the requested families.
type AddressResolver interface {
	Resolve(ctx context.Context, fams publicip.Families) (publicip.Addresses, error)
}

// Request describes one reconciliation cycle.
type Request struct {
	Domains []string
	Names   []string
	Types   []domain.RecordType

	// Content is applied verbatim to every selected record. Empty means
	// A and AAAA records take the public address of their family.
	Content string

	DryRun bool

	// Known holds addresses already resolved for this cycle. Families
	// present here are not resolved again.
	Known publicip.Addresses
}

// Result is the outcome of a reconciliation cycle.
type Result struct {
	Records   []domain.Record
	Selected  []domain.Record
	Changes   []domain.Change
	Addresses publicip.Addresses
	Content   string

	// Applied is true when every change was written (vacuously so when
	// there were none). Always false for a dry run.
	Applied bool

	AppliedChanges []domain.Change
	Failed         []domain.ChangeFailure
}

// Reconciler runs reconciliation cycles against a remote directory.
type Reconciler struct {
	connector domain.Connector
	resolver  AddressResolver
	log       logr.Logger
}

// Option configures a Reconciler.
type Option func(*Reconciler)

// WithLogger sets the logger used for cycle progress.
func WithLogger(log logr.Logger) Option {
	return func(r *Reconciler) {
		r.log = log
	}
}

// NewReconciler returns a Reconciler that opens sessions through connector
// and resolves public addresses through resolver.
func NewReconciler(connector domain.Connector, resolver AddressResolver, opts ...Option) *Reconciler {
	r := &Reconciler{
		connector: connector,
		resolver:  resolver,
		log:       logr.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListRecords returns the records of every domain, in the order the domains
// were given.
func (r *Reconciler) ListRecords(ctx context.Context, domains []string) ([]domain.Record, error) {
	domains, err := normalizeDomains(domains)
	if err != nil {
		return nil, err
	}

	dir, err := r.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return r.fetch(ctx, dir, domains)
}

// fetch lists all domains concurrently. Any failure fails the whole fetch;
// siblings are not cancelled.
func (r *Reconciler) fetch(ctx context.Context, dir domain.Directory, domains []string) ([]domain.Record, error) {
	perDomain := make([][]domain.Record, len(domains))
	errs := make([]error, len(domains))

	var g errgroup.Group
	for i, d := range domains {
		g.Go(func() error {
			perDomain[i], errs[i] = dir.ListRecords(ctx, d)
			return nil
		})
	}
	_ = g.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}

	var records []domain.Record
	for i, d := range domains {
		r.log.V(1).Info("fetched records", "domain", d, "count", len(perDomain[i]))
		records = append(records, perDomain[i]...)
	}
	return records, nil
}

// Reconcile runs one cycle: fetch, select, resolve, diff and, unless
// req.DryRun is set, apply.
//
// When some changes fail to apply, Reconcile returns the result together
// with a *domain.PartialApplyError; the result lists what was applied.
// Any other error aborts the cycle before anything is written and the
// result is nil.
func (r *Reconciler) Reconcile(ctx context.Context, req Request) (*Result, error) {
	res, err := r.reconcile(ctx, req)
	metrics.CycleCompleted(CycleOutcome(req.DryRun, res, err), time.Now())
	return res, err
}

// CycleOutcome names how a Reconcile call ended, using the metrics outcome
// labels.
func CycleOutcome(dryRun bool, res *Result, err error) string {
	var partial *domain.PartialApplyError
	switch {
	case errors.As(err, &partial):
		return metrics.OutcomePartial
	case err != nil:
		return metrics.OutcomeError
	case dryRun:
		return metrics.OutcomeDryRun
	case res != nil && len(res.AppliedChanges) > 0:
		return metrics.OutcomeApplied
	}
	return metrics.OutcomeUnchanged
}

func (r *Reconciler) reconcile(ctx context.Context, req Request) (*Result, error) {
	domains, err := normalizeDomains(req.Domains)
	if err != nil {
		return nil, err
	}

	dir, err := r.connector.Connect(ctx)
	if err != nil {
		return nil, err
	}

	records, err := r.fetch(ctx, dir, domains)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Records:   records,
		Selected:  Select(records, req.Names, req.Types),
		Addresses: req.Known,
		Content:   req.Content,
	}

	if req.Content == "" {
		missing := RequiredFamilies(res.Selected).Without(req.Known.Families())
		if !missing.Empty() {
			resolved, err := r.resolver.Resolve(ctx, missing)
			if err != nil {
				return nil, err
			}
			res.Addresses = req.Known.Merge(resolved)
		}
	}

	res.Changes, err = Diff(res.Selected, req.Content, res.Addresses)
	if err != nil {
		return nil, err
	}

	r.log.V(1).Info("computed changes", "selected", len(res.Selected), "changes", len(res.Changes), "dryRun", req.DryRun)

	if req.DryRun {
		return res, nil
	}

	if err := r.apply(ctx, dir, res); err != nil {
		return res, err
	}
	res.Applied = true
	return res, nil
}

// apply writes every change concurrently. Failures are collected rather
// than cancelling the remaining writes.
func (r *Reconciler) apply(ctx context.Context, dir domain.Directory, res *Result) error {
	errs := make([]error, len(res.Changes))

	var g errgroup.Group
	for i, c := range res.Changes {
		g.Go(func() error {
			errs[i] = dir.ApplyRecord(ctx, c.Target())
			return nil
		})
	}
	_ = g.Wait()

	for i, c := range res.Changes {
		if errs[i] != nil {
			r.log.Error(errs[i], "failed to update record", "record", c.Key().String())
			res.Failed = append(res.Failed, domain.ChangeFailure{Change: c, Err: errs[i]})
			continue
		}
		r.log.Info("updated record", "record", c.Key().String(), "old", c.OldContent, "new", c.NewContent)
		res.AppliedChanges = append(res.AppliedChanges, c)
	}

	metrics.ChangesApplied(len(res.AppliedChanges), len(res.Failed))

	if len(res.Failed) > 0 {
		return &domain.PartialApplyError{
			Applied: slices.Clone(res.AppliedChanges),
			Failed:  slices.Clone(res.Failed),
		}
	}
	return nil
}

// Describe returns a one-line summary of a result for logs.
func (res *Result) Describe() string {
	switch {
	case len(res.Changes) == 0:
		return fmt.Sprintf("%d record(s) selected, nothing to update", len(res.Selected))
	case !res.Applied && len(res.Failed) == 0:
		return fmt.Sprintf("%d record(s) selected, %d would change", len(res.Selected), len(res.Changes))
	}
	return fmt.Sprintf("%d record(s) selected, %d updated, %d failed", len(res.Selected), len(res.AppliedChanges), len(res.Failed))
}
