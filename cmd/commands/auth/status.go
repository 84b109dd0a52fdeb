package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"nathanbeddoewebdev/transip-dns/internal/config"
	"nathanbeddoewebdev/transip-dns/internal/services/auth"
	"nathanbeddoewebdev/transip-dns/internal/tui"

	"github.com/spf13/cobra"
)

// StatusCommand returns the "auth status" command.
func StatusCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show stored and effective credentials",
		Long: `Show what the keychain holds and which login a command would use right
now, taking environment variables and the config file into account.
The private key itself is never printed.

Examples:
  transip-dns auth status
  transip-dns auth status -o json`,
		Args:         cobra.NoArgs,
		RunE:         runStatus,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("output", "o", "", "Output format: text or json (default: interactive in a terminal)")

	return cmd
}

type statusReport struct {
	KeychainLogin      string `json:"keychain_login,omitempty"`
	KeychainPrivateKey bool   `json:"keychain_private_key"`
	EffectiveLogin     string `json:"effective_login,omitempty"`
	EffectiveSource    string `json:"effective_source,omitempty"`
	Problem            string `json:"problem,omitempty"`
}

func runStatus(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	store := auth.DefaultStore()

	switch output {
	case "":
		if isTerminal(cmd.OutOrStdout()) {
			if err := tui.RunAuthStatus(store); err != nil {
				return fmt.Errorf("auth status failed: %w", err)
			}
			return nil
		}
	case "text", "json":
	default:
		return fmt.Errorf("unsupported output format %q", output)
	}

	st := auth.Inspect(store)
	if st.Err != nil {
		return fmt.Errorf("failed to read keychain: %w", st.Err)
	}
	report := statusReport{KeychainLogin: st.Login, KeychainPrivateKey: st.HasPrivateKey}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	creds, err := auth.ResolveCredentials(auth.Sources{
		Getenv:               os.Getenv,
		ConfigLogin:          cfg.Username,
		ConfigPrivateKeyFile: cfg.PrivateKeyFile,
		Store:                store,
	})
	switch {
	case err == nil:
		report.EffectiveLogin, report.EffectiveSource = creds.Login, creds.Source
	case errors.Is(err, auth.ErrMissingCredentials):
		report.Problem = err.Error()
	default:
		return err
	}

	out := cmd.OutOrStdout()
	if output == "json" {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	login := "not stored"
	if st.HasLogin {
		login = st.Login
	}
	key := "not stored"
	if st.HasPrivateKey {
		key = "stored"
	}
	effective := "none (" + report.Problem + ")"
	if report.EffectiveLogin != "" {
		effective = fmt.Sprintf("%s (from %s)", report.EffectiveLogin, report.EffectiveSource)
	}

	w := tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	fmt.Fprintf(w, "keychain login:\t%s\n", login)
	fmt.Fprintf(w, "keychain private key:\t%s\n", key)
	fmt.Fprintf(w, "effective login:\t%s\n", effective)
	return w.Flush()
}
