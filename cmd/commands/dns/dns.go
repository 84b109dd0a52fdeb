// Package dns implements the record commands: list, update and watch.
package dns

import (
	"github.com/spf13/cobra"
)

// Commands returns the record commands. They are mounted directly on the
// root command.
func Commands() []*cobra.Command {
	return []*cobra.Command{
		ListCommand(),
		UpdateCommand(),
		WatchCommand(),
	}
}

// AddGlobalFlags registers the connection flags every record command reads.
func AddGlobalFlags(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	flags.StringP("username", "u", "", "TransIP account login (env TRANS_IP_USERNAME)")
	flags.String("private-key", "", "PEM private key contents (env TRANS_IP_PRIVATE_KEY)")
	flags.StringP("private-key-file", "f", "", "Path to the PEM private key (env TRANS_IP_PRIVATE_KEY_FILE)")
	flags.Bool("audit", false, "Record applied changes in the local audit log")
}

// selectionFlags registers the record selection flags shared by update and watch.
func selectionFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("domain", "d", nil, "Domain to manage (repeatable)")
	cmd.Flags().StringSliceP("name", "n", nil, "Only records with this name, e.g. @ or www (repeatable)")
	cmd.Flags().StringSliceP("type", "t", nil, "Only records of this type, e.g. A or AAAA (repeatable)")
	_ = cmd.MarkFlagRequired("domain")
}
