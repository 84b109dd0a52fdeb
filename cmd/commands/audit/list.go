package audit

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/auditlog"

	"github.com/spf13/cobra"
)

// ListCommand returns the "audit list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent record changes",
		Long: `List recent record changes stored locally.

Examples:
  transip-dns audit list
  transip-dns audit list --limit 50
  transip-dns audit list --domain example.com --since 7d
  transip-dns audit list --outcome error
  transip-dns audit list --run 3f2c9a1e -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().Int("limit", 25, "Number of entries to display")
	cmd.Flags().StringP("domain", "d", "", "Only show changes to this domain")
	cmd.Flags().String("outcome", "", "Only show entries with this outcome (success or error)")
	cmd.Flags().String("run", "", "Only show entries written by the run with this ID or ID prefix")
	cmd.Flags().String("since", "", "Only show entries newer than this age (e.g. 24h, 7d)")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	f, err := listFilter(cmd, time.Now())
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	repo, err := auditlog.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer repo.Close()

	entries, err := repo.List(cmd.Context(), f)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if output == "json" {
		if entries == nil {
			entries = []auditlog.AuditEntry{}
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(entries)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No audit entries found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tRUN\tRECORD\tCHANGE\tOUTCOME\tDURATION\tDETAIL")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"),
			shortRun(e.RunID),
			formatRecord(e),
			formatChange(e),
			e.Outcome,
			formatDuration(e.DurationMs),
			orDash(e.Detail),
		)
	}
	return w.Flush()
}

func listFilter(cmd *cobra.Command, now time.Time) (auditlog.Filter, error) {
	var f auditlog.Filter
	f.Limit, _ = cmd.Flags().GetInt("limit")
	if f.Limit <= 0 {
		return f, fmt.Errorf("limit must be greater than 0")
	}
	f.Domain, _ = cmd.Flags().GetString("domain")
	f.RunID, _ = cmd.Flags().GetString("run")

	f.Outcome, _ = cmd.Flags().GetString("outcome")
	switch f.Outcome {
	case "", auditlog.OutcomeSuccess, auditlog.OutcomeError:
	default:
		return f, fmt.Errorf("unknown outcome %q (want %s or %s)", f.Outcome, auditlog.OutcomeSuccess, auditlog.OutcomeError)
	}

	if since, _ := cmd.Flags().GetString("since"); since != "" {
		d, err := parseAge(since)
		if err != nil {
			return f, err
		}
		f.Since = now.Add(-d)
	}
	return f, nil
}

// shortRun abbreviates a run ID the way git abbreviates hashes.
func shortRun(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return orDash(id)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	d := time.Duration(ms) * time.Millisecond
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	return fmt.Sprintf("%dh", int(d.Hours()))
}

// formatRecord renders "name.domain TYPE", or the command for entries that
// describe a failed cycle rather than a single record.
func formatRecord(entry auditlog.AuditEntry) string {
	if entry.Domain == "" {
		return entry.Command
	}
	fqdn := entry.Domain
	if entry.Name != "" && entry.Name != "@" {
		fqdn = entry.Name + "." + entry.Domain
	}
	if entry.Type == "" {
		return fqdn
	}
	return fqdn + " " + entry.Type
}

func formatChange(entry auditlog.AuditEntry) string {
	if entry.OldContent == "" && entry.NewContent == "" {
		return "-"
	}
	if entry.OldContent == "" {
		return entry.NewContent
	}
	return entry.OldContent + " -> " + entry.NewContent
}
