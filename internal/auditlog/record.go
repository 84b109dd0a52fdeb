package auditlog

import (
	"time"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// AuditEntry represents a persisted audit event: one applied or failed
// record change, or a cycle that failed before any change was attempted.
type AuditEntry struct {
	ID         int64     `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	RunID      string    `json:"run_id,omitempty"`
	Command    string    `json:"command"`
	Args       string    `json:"args,omitempty"`
	Domain     string    `json:"domain,omitempty"`
	Name       string    `json:"name,omitempty"`
	Type       string    `json:"type,omitempty"`
	OldContent string    `json:"old_content,omitempty"`
	NewContent string    `json:"new_content,omitempty"`
	Outcome    string    `json:"outcome"`
	Detail     string    `json:"detail,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// Entries builds one entry per applied and failed change.
func Entries(meta Metadata, applied []domain.Change, failed []domain.ChangeFailure, duration time.Duration) []*AuditEntry {
	entries := make([]*AuditEntry, 0, len(applied)+len(failed))
	for _, c := range applied {
		entries = append(entries, changeEntry(meta, c, OutcomeSuccess, "", duration))
	}
	for _, f := range failed {
		entries = append(entries, changeEntry(meta, f.Change, OutcomeError, f.Err.Error(), duration))
	}
	return entries
}

// Failure builds an entry for a cycle that failed before applying anything.
func Failure(meta Metadata, err error, duration time.Duration) *AuditEntry {
	return &AuditEntry{
		RunID:      meta.RunID,
		Command:    meta.Command,
		Args:       meta.Args,
		Outcome:    OutcomeError,
		Detail:     err.Error(),
		DurationMs: duration.Milliseconds(),
	}
}

func changeEntry(meta Metadata, c domain.Change, outcome, detail string, duration time.Duration) *AuditEntry {
	return &AuditEntry{
		RunID:      meta.RunID,
		Command:    meta.Command,
		Args:       meta.Args,
		Domain:     c.Record.Domain,
		Name:       c.Record.Name,
		Type:       string(c.Record.Type),
		OldContent: c.OldContent,
		NewContent: c.NewContent,
		Outcome:    outcome,
		Detail:     detail,
		DurationMs: duration.Milliseconds(),
	}
}
