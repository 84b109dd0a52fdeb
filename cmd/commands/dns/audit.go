package dns

import (
	"context"
	"errors"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/auditlog"
	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/dns/services"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// auditEnabled reports whether --audit or the audit-log config key is set.
func auditEnabled(cmd *cobra.Command, s *session) bool {
	flag, _ := cmd.Flags().GetBool("audit")
	return flag || s.cfg.AuditLog
}

// auditEntries turns the outcome of one reconciliation into audit entries.
// A cycle that changed nothing and did not fail yields none.
func auditEntries(meta auditlog.Metadata, res *services.Result, err error, elapsed time.Duration) []*auditlog.AuditEntry {
	var partial *domain.PartialApplyError
	if err != nil && !errors.As(err, &partial) {
		return []*auditlog.AuditEntry{auditlog.Failure(meta, err, elapsed)}
	}
	if res == nil {
		return nil
	}
	return auditlog.Entries(meta, res.AppliedChanges, res.Failed, elapsed)
}

// recordAudit stores entries in the local audit log. Failing to record is
// logged and never fails the command. Entries of the cycle that was running
// when ctx was canceled are still written.
func recordAudit(ctx context.Context, log logr.Logger, entries []*auditlog.AuditEntry) {
	if len(entries) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	repo, err := auditlog.Open(ctx)
	if err != nil {
		log.Error(err, "failed to open audit log")
		return
	}
	defer repo.Close()

	if err := repo.Save(ctx, entries...); err != nil {
		log.Error(err, "failed to record audit entries", "count", len(entries))
		return
	}
	log.V(1).Info("recorded audit entries", "count", len(entries))
}

// metadataFor returns the audit metadata for cmd, filling in the command
// path when the root did not set it.
func metadataFor(cmd *cobra.Command) auditlog.Metadata {
	meta := auditlog.MetadataFromContext(cmd.Context())
	if meta.Command == "" {
		meta.Command = cmd.CommandPath()
	}
	return meta
}
