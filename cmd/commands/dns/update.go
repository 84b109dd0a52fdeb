package dns

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/dns/services"

	"github.com/charmbracelet/huh/spinner"
	"github.com/spf13/cobra"
)

// UpdateCommand returns the "update" command.
func UpdateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "update",
		Aliases: []string{"update-dns"},
		Short:   "Point DNS records at new content or at this machine",
		Long: `Update the selected DNS records of one or more domains.

With --content every selected record gets that exact content. Without it,
A records get this machine's public IPv4 address and AAAA records its IPv6
address. If the selection includes any other record type (an apex MX,
TXT or NS record, say) and --content is not given, nothing is written and
the command fails; narrow the selection with -t A / -t AAAA. Records
already holding the desired content are left alone.

Examples:
  transip-dns update -d example.com -n @ -n www -t A
  transip-dns update -d example.com -n vpn -c 203.0.113.7
  transip-dns update -d example.com -t A -t AAAA --dry-run`,
		Args:         cobra.NoArgs,
		RunE:         runUpdate,
		SilenceUsage: true,
	}

	selectionFlags(cmd)
	cmd.Flags().StringP("content", "c", "", "Content to set on every selected record")
	cmd.Flags().Bool("dry-run", false, "Show what would change without updating anything")

	return cmd
}

func runUpdate(cmd *cobra.Command, args []string) error {
	domains, names, types := selection(cmd)
	content, _ := cmd.Flags().GetString("content")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	req := services.Request{
		Domains: domains,
		Names:   names,
		Types:   services.NormalizeTypes(types),
		Content: strings.TrimSpace(content),
		DryRun:  dryRun,
	}

	var (
		res       *services.Result
		reconcErr error
	)
	reconcile := func(ctx context.Context) error {
		res, reconcErr = s.reconciler.Reconcile(ctx, req)
		return nil
	}

	start := time.Now()
	if isTerminal(cmd.ErrOrStderr()) {
		title := "Updating records..."
		if dryRun {
			title = "Checking records..."
		}
		if err := spinner.New().
			Title(title).
			Accessible(os.Getenv("ACCESSIBLE") != "").
			Output(cmd.ErrOrStderr()).
			ActionWithErr(reconcile).
			Run(); err != nil {
			return err
		}
	} else {
		_ = reconcile(cmd.Context())
	}
	elapsed := time.Since(start)

	if !dryRun && auditEnabled(cmd, s) {
		recordAudit(cmd.Context(), s.log, auditEntries(metadataFor(cmd), res, reconcErr, elapsed))
	}

	if res == nil {
		return reconcErr
	}

	out := cmd.OutOrStdout()
	if dryRun {
		printDryRun(out, res)
		return nil
	}
	printApplied(out, res)
	return reconcErr
}

func printDryRun(w io.Writer, res *services.Result) {
	fmt.Fprintln(w, "All entries:")
	printRecords(w, res.Records)
	fmt.Fprintln(w)

	if len(res.Selected) == 0 {
		fmt.Fprintln(w, "There are no selected entries. Did you enter the correct name?")
	} else {
		fmt.Fprintln(w, "Selected entries:")
		printRecords(w, res.Selected)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "New content: %s\n", newContent(res))
	fmt.Fprintln(w)

	if len(res.Changes) == 0 {
		fmt.Fprintln(w, "There is nothing to update.")
		return
	}
	fmt.Fprintln(w, "Would update the following entries:")
	printChanges(w, res.Changes)
}

func printApplied(w io.Writer, res *services.Result) {
	if len(res.Changes) == 0 {
		fmt.Fprintln(w, "There is nothing to update.")
		return
	}
	if len(res.AppliedChanges) > 0 {
		fmt.Fprintln(w, "Updated the following entries:")
		printChanges(w, res.AppliedChanges)
	}
	if len(res.Failed) > 0 {
		if len(res.AppliedChanges) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "Failed to update the following entries:")
		printFailures(w, res.Failed)
	}
}

// newContent describes the content selected records are moved to.
func newContent(res *services.Result) string {
	if res.Content != "" {
		return res.Content
	}
	return "public address (" + res.Addresses.String() + ")"
}
