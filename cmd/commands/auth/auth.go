// Package auth implements the "auth" command group: storing, inspecting and
// removing TransIP credentials in the OS keychain.
package auth

import (
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewCommand returns the "auth" parent command. Run on its own it behaves
// like "auth status".
func NewCommand() *cobra.Command {
	status := StatusCommand()

	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored TransIP credentials",
		Long: `Manage the TransIP login and private key stored in the OS keychain.

Credentials are looked up in this order, the login and the key each on
its own: --username / --private-key / --private-key-file flags,
TRANS_IP_* environment variables, the config file, then the keychain.`,
		Args:         cobra.NoArgs,
		RunE:         status.RunE,
		SilenceUsage: true,
	}
	cmd.Flags().AddFlagSet(status.Flags())

	cmd.AddCommand(LoginCommand(), status, LogoutCommand())
	return cmd
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
