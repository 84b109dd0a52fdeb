package auth

import (
	"fmt"

	"nathanbeddoewebdev/transip-dns/internal/services/auth"

	"github.com/spf13/cobra"
)

// LogoutCommand returns the "auth logout" command.
func LogoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Remove the stored login and private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := auth.ForgetCredentials(auth.DefaultStore()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Removed stored TransIP credentials.")
			return nil
		},
		SilenceUsage: true,
	}
}
