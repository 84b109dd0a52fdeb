package config

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"nathanbeddoewebdev/transip-dns/internal/config"
	"nathanbeddoewebdev/transip-dns/internal/tui"

	"github.com/spf13/cobra"
)

// GetCommand returns the "config get" command.
func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get [key]",
		Short: "Show configuration values",
		Long: "Show persistent configuration values. Unset keys show the value\n" +
			"used in their place.\n\n" +
			"Without a key, a terminal gets an interactive editor and anything else\n" +
			"gets every key, one per line.\n\n" +
			config.KeysHelp() +
			"\nExamples:\n" +
			"  transip-dns config get            # interactive editor\n" +
			"  transip-dns config get interval   # print a single value\n" +
			"  transip-dns config get --plain    # every key, no editor",
		Args:         cobra.MaximumNArgs(1),
		RunE:         runGet,
		SilenceUsage: true,
	}

	cmd.Flags().Bool("plain", false, "List every key instead of opening the editor")

	return cmd
}

func runGet(cmd *cobra.Command, args []string) error {
	var name string
	if len(args) == 1 {
		name = args[0]
	}
	plain, _ := cmd.Flags().GetBool("plain")

	if strings.TrimSpace(name) == "" && !plain && isTerminal(cmd.OutOrStdout()) {
		if err := tui.RunConfigView(); err != nil {
			return fmt.Errorf("config view failed: %w", err)
		}
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if strings.TrimSpace(name) == "" {
		printAll(cmd.OutOrStdout(), cfg)
		return nil
	}

	spec, err := lookup(name)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), effective(spec, cfg))
	return nil
}

func printAll(w io.Writer, cfg *config.Config) {
	tw := tabwriter.NewWriter(w, 0, 0, 3, ' ', 0)
	for _, spec := range config.Keys {
		fmt.Fprintf(tw, "%s\t%s\n", spec.Name, effective(spec, cfg))
	}
	tw.Flush()
}

// effective returns the stored value, or the default marked as such.
func effective(spec config.KeySpec, cfg *config.Config) string {
	if v := spec.Get(cfg); v != "" {
		return v
	}
	if spec.Default != "" {
		return spec.Default + " (default)"
	}
	return "(not set)"
}
