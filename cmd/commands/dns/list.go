package dns

import (
	"fmt"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"

	"github.com/spf13/cobra"
)

// ListCommand returns the "list" command.
func ListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"list-dns"},
		Short:   "List the DNS records of one or more domains",
		Long: `List every DNS record of the given domains, in the order the domains
were given.

Examples:
  transip-dns list -d example.com
  transip-dns list -d example.com -d example.org -o json`,
		Args:         cobra.NoArgs,
		RunE:         runList,
		SilenceUsage: true,
	}

	cmd.Flags().StringSliceP("domain", "d", nil, "Domain to list (repeatable)")
	cmd.Flags().StringP("output", "o", "table", "Output format: table or json")
	_ = cmd.MarkFlagRequired("domain")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	domains, _ := cmd.Flags().GetStringSlice("domain")
	output, _ := cmd.Flags().GetString("output")
	if output != "table" && output != "json" {
		return fmt.Errorf("unsupported output format %q", output)
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	records, err := s.reconciler.ListRecords(cmd.Context(), domains)
	if err != nil {
		return err
	}

	if output == "json" {
		if records == nil {
			records = []domain.Record{}
		}
		return printJSON(cmd.OutOrStdout(), records)
	}
	printRecords(cmd.OutOrStdout(), records)
	return nil
}
