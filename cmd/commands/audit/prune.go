package audit

import (
	"errors"
	"fmt"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/auditlog"

	"github.com/spf13/cobra"
)

// PruneCommand returns the "audit prune" command.
func PruneCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old entries from the change history",
		Long: `Delete entries recorded before a cutoff, given either as an age
(--older-than) or as a date (--before, YYYY-MM-DD in local time).

Examples:
  transip-dns audit prune --older-than 30d
  transip-dns audit prune --older-than 2w --dry-run
  transip-dns audit prune --before 2026-01-01`,
		Args:         cobra.NoArgs,
		RunE:         runPrune,
		SilenceUsage: true,
	}

	cmd.Flags().String("older-than", "", "Delete entries older than this age (e.g. 30d, 2w, 72h)")
	cmd.Flags().String("before", "", "Delete entries recorded before this date (YYYY-MM-DD)")
	cmd.Flags().Bool("dry-run", false, "Only report how many entries would be deleted")
	cmd.MarkFlagsMutuallyExclusive("older-than", "before")
	cmd.MarkFlagsOneRequired("older-than", "before")

	return cmd
}

func runPrune(cmd *cobra.Command, args []string) error {
	cutoff, err := pruneCutoff(cmd, time.Now())
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	repo, err := auditlog.Open(cmd.Context())
	if err != nil {
		return err
	}
	defer repo.Close()

	n, err := repo.Prune(cmd.Context(), cutoff, dryRun)
	if err != nil {
		return err
	}

	when := cutoff.Local().Format("2006-01-02 15:04")
	if dryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "Would delete %d entries recorded before %s.\n", n, when)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d entries recorded before %s.\n", n, when)
	return nil
}

func pruneCutoff(cmd *cobra.Command, now time.Time) (time.Time, error) {
	if age, _ := cmd.Flags().GetString("older-than"); age != "" {
		d, err := parseAge(age)
		if err != nil {
			return time.Time{}, err
		}
		return now.Add(-d), nil
	}
	if date, _ := cmd.Flags().GetString("before"); date != "" {
		t, err := time.ParseInLocation("2006-01-02", date, time.Local)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", date)
		}
		return t, nil
	}
	return time.Time{}, errors.New("one of --older-than or --before is required")
}
