// Package config implements the "config" command group.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"nathanbeddoewebdev/transip-dns/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// NewCommand returns the "config" parent command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage persistent settings",
		Long: "Settings are stored as YAML in the user config directory\n" +
			"(see \"transip-dns config path\"). Flags and TRANS_IP_* environment\n" +
			"variables take precedence over them.\n\n" +
			config.KeysHelp(),
	}

	cmd.AddCommand(GetCommand(), SetCommand(), PathCommand())
	return cmd
}

// PathCommand returns the "config path" command.
func PathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the location of the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
		SilenceUsage: true,
	}
}

func lookup(name string) (config.KeySpec, error) {
	spec := config.Lookup(name)
	if spec == nil {
		return config.KeySpec{}, fmt.Errorf("unknown configuration key %q (valid: %s)", name, strings.Join(config.KeyNames(), ", "))
	}
	return *spec, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
