package cmd

import (
	"os"
	"time"

	"nathanbeddoewebdev/transip-dns/cmd/commands/audit"
	"nathanbeddoewebdev/transip-dns/cmd/commands/auth"
	cfgcmd "nathanbeddoewebdev/transip-dns/cmd/commands/config"
	"nathanbeddoewebdev/transip-dns/cmd/commands/dns"
	"nathanbeddoewebdev/transip-dns/internal/auditlog"
	"nathanbeddoewebdev/transip-dns/internal/logging"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// rootCmd represents the base command when called without any subcommands.
func rootCmd() *cobra.Command {
	var cmd = &cobra.Command{
		Use:   "transip-dns",
		Short: "Manage TransIP DNS records and keep them pointed at this machine",
		Long: `transip-dns lists and updates DNS records of domains hosted at TransIP.
It can point A/AAAA records at this machine's public address once, or
keep watching the address and update the records whenever it changes.

Credentials come from flags, the TRANS_IP_* environment variables, the
config file, or the OS keyring (see "transip-dns auth login").

Quick start:
  transip-dns auth login                              # Store login and private key
  transip-dns list -d example.com                     # Show all records
  transip-dns update -d example.com -n @ -t A --dry-run
  transip-dns watch -d example.com -n @ -n vpn -t A   # Follow the public address

Without --content only A and AAAA records can be updated, so select them
with -t when a name also carries MX, TXT or other records.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			verbosity, _ := cmd.Flags().GetCount("verbose")
			stderr := cmd.ErrOrStderr()
			f, isFile := stderr.(*os.File)
			log := logging.New(stderr, logging.Options{
				Verbosity:  verbosity,
				Timestamps: !isFile || !term.IsTerminal(int(f.Fd())),
			})

			ctx := logging.IntoContext(cmd.Context(), log)
			ctx = auditlog.WithMetadata(ctx, auditlog.NewMetadata(cmd.CommandPath(), os.Args[1:], time.Now()))
			cmd.SetContext(ctx)
			return nil
		},
	}

	cmd.PersistentFlags().CountP("verbose", "v", "Increase log verbosity (repeatable)")
	dns.AddGlobalFlags(cmd)

	cmd.AddCommand(dns.Commands()...)
	cmd.AddCommand(auth.NewCommand())
	cmd.AddCommand(cfgcmd.NewCommand())
	cmd.AddCommand(audit.NewCommand())

	return cmd
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	var root = rootCmd()
	err := root.Execute()
	if err != nil {
		os.Exit(1)
	}
}
