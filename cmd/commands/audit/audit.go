// Package audit implements the "audit" command group over the local
// record change history.
package audit

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewCommand returns the "audit" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "audit",
		Aliases: []string{"history"},
		Short:   "View and manage the record change history",
		Long: "Every applied or failed record change is stored locally when --audit is\n" +
			"passed or audit-log is enabled (transip-dns config set audit-log true).\n" +
			"Entries written by one invocation share a run ID, so a whole watch\n" +
			"session can be listed with --run.",
	}

	cmd.AddCommand(ListCommand(), PruneCommand())
	return cmd
}

// parseAge accepts Go durations plus whole days ("30d") and weeks ("2w").
func parseAge(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	unit := time.Duration(0)
	switch {
	case strings.HasSuffix(s, "d"):
		unit = 24 * time.Hour
	case strings.HasSuffix(s, "w"):
		unit = 7 * 24 * time.Hour
	}

	var d time.Duration
	if unit != 0 {
		n, err := strconv.Atoi(s[:len(s)-1])
		if err != nil {
			return 0, fmt.Errorf("invalid age %q", s)
		}
		d = time.Duration(n) * unit
	} else {
		var err error
		if d, err = time.ParseDuration(s); err != nil {
			return 0, fmt.Errorf("invalid age %q (use e.g. 30d, 2w or 72h)", s)
		}
	}
	if d <= 0 {
		return 0, fmt.Errorf("age %q must be positive", s)
	}
	return d, nil
}
