package config

import (
	"fmt"

	"nathanbeddoewebdev/transip-dns/internal/config"

	"github.com/spf13/cobra"
)

// SetCommand returns the "config set" command.
func SetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration value",
		Long: "Set a persistent configuration value. An empty value resets the key\n" +
			"to its default.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  transip-dns config set username jdoe\n" +
			"  transip-dns config set private-key-file ~/.config/transip-dns/key.pem\n" +
			"  transip-dns config set interval 10m\n" +
			"  transip-dns config set audit-log true\n" +
			"  transip-dns config set interval \"\"",
		Args:         cobra.ExactArgs(2),
		RunE:         runSet,
		SilenceUsage: true,
	}
}

func runSet(cmd *cobra.Command, args []string) error {
	spec, err := lookup(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := spec.Set(cfg, args[1]); err != nil {
		return fmt.Errorf("invalid value for %s: %w", spec.Name, err)
	}
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	out := cmd.OutOrStdout()
	switch v := spec.Get(cfg); {
	case v != "":
		fmt.Fprintf(out, "%s set to %q\n", spec.Name, v)
	case spec.Default != "":
		fmt.Fprintf(out, "%s reset to default %s\n", spec.Name, spec.Default)
	default:
		fmt.Fprintf(out, "%s cleared\n", spec.Name)
	}
	return nil
}
