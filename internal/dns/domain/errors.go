package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for classifying failures of a reconciliation cycle.
// Providers and services wrap these so the CLI can handle error
// categories uniformly:
//
//	return fmt.Errorf("failed to list records for %q: %w", d, domain.ErrNotFound)
var (
	// ErrUnauthorized indicates bad credentials, a rejected signature,
	// or an invalid or expired session token.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates the domain is unknown to the provider.
	ErrNotFound = errors.New("resource not found")

	// ErrTransport indicates a network failure, timeout, throttling
	// or server-side (5xx) error.
	ErrTransport = errors.New("transport error")

	// ErrAddressResolution indicates the public address for a required
	// family could not be determined.
	ErrAddressResolution = errors.New("address resolution failed")

	// ErrAmbiguousContent indicates a record whose content cannot be
	// inferred because no explicit content was supplied and it is not
	// an address record.
	ErrAmbiguousContent = errors.New("ambiguous content")
)

// AmbiguousContentError names the record that has no inferable content.
type AmbiguousContentError struct {
	Record Record
}

func (e *AmbiguousContentError) Error() string {
	return fmt.Sprintf("%s: cannot infer content for %s record %s, supply explicit content",
		ErrAmbiguousContent, e.Record.Type, e.Record.Key())
}

// Is reports whether target is ErrAmbiguousContent.
func (e *AmbiguousContentError) Is(target error) bool {
	return target == ErrAmbiguousContent
}

// ChangeFailure pairs a Change with the error returned when applying it.
type ChangeFailure struct {
	Change Change
	Err    error
}

// PartialApplyError reports that one or more Changes could not be applied.
// Applied lists the changes that did succeed in the same cycle.
type PartialApplyError struct {
	Applied []Change
	Failed  []ChangeFailure
}

func (e *PartialApplyError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "failed to apply %d of %d change(s)", len(e.Failed), len(e.Failed)+len(e.Applied))
	for _, f := range e.Failed {
		fmt.Fprintf(&b, "; %s: %v", f.Change.Key(), f.Err)
	}
	return b.String()
}

// Unwrap exposes the underlying errors so errors.Is can match sentinels
// such as ErrUnauthorized on any of the failed changes.
func (e *PartialApplyError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, f := range e.Failed {
		errs = append(errs, f.Err)
	}
	return errs
}
