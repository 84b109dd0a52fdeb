package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"nathanbeddoewebdev/transip-dns/internal/config"
	"nathanbeddoewebdev/transip-dns/internal/dns/providers"
	"nathanbeddoewebdev/transip-dns/internal/services/auth"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// LoginCommand returns the "auth login" command.
func LoginCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Store a TransIP login and private key",
		Long: `Store a TransIP login and private key in the local keychain.

Without flags and in a terminal, an interactive form asks for both.
The key file is read once; its contents are stored, not its path.

Examples:
  transip-dns auth login
  transip-dns auth login --username jdoe --private-key-file ~/transip.pem --verify`,
		Args:         cobra.NoArgs,
		RunE:         runLogin,
		SilenceUsage: true,
	}

	cmd.Flags().StringP("username", "u", "", "TransIP account login")
	cmd.Flags().StringP("private-key-file", "f", "", "Path to the PEM private key")
	cmd.Flags().Bool("verify", false, "Request a token with the credentials before storing them")

	return cmd
}

func runLogin(cmd *cobra.Command, args []string) error {
	login, _ := cmd.Flags().GetString("username")
	keyFile, _ := cmd.Flags().GetString("private-key-file")
	verify, _ := cmd.Flags().GetBool("verify")

	login = strings.TrimSpace(login)
	keyFile = strings.TrimSpace(keyFile)

	if login == "" || keyFile == "" {
		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("--username and --private-key-file are required when not running in a terminal")
		}
		if err := loginForm(&login, &keyFile); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Login cancelled.")
				return nil
			}
			return err
		}
	}

	pemData, err := readKeyFile(keyFile)
	if err != nil {
		return err
	}

	if verify {
		if err := verifyCredentials(cmd.Context(), login, pemData); err != nil {
			return err
		}
		fmt.Fprintln(cmd.ErrOrStderr(), "Credentials accepted by TransIP.")
	}

	if err := auth.SaveCredentials(auth.DefaultStore(), login, pemData); err != nil {
		if errors.Is(err, auth.ErrSecretTooLarge) {
			return fmt.Errorf("%w\nkeep the key on disk instead: transip-dns config set private-key-file %s", err, keyFile)
		}
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Saved credentials for %s\n", login)
	return nil
}

// loginForm asks for whichever of login and keyFile is still empty.
func loginForm(login, keyFile *string) error {
	accessible := os.Getenv("ACCESSIBLE") != ""

	if *keyFile == "" {
		if cfg, err := config.Load(); err == nil {
			*keyFile = cfg.PrivateKeyFile
		}
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("TransIP login").
				Value(login).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("login cannot be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Path to private key").
				Description("The PEM file generated in the TransIP control panel").
				Value(keyFile).
				Validate(func(s string) error {
					_, err := readKeyFile(s)
					return err
				}),
		),
	).WithAccessible(accessible)

	if err := form.Run(); err != nil {
		return err
	}
	*login = strings.TrimSpace(*login)
	*keyFile = strings.TrimSpace(*keyFile)
	return nil
}

// readKeyFile reads and checks a PEM private key file.
func readKeyFile(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("path cannot be empty")
	}
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			path = home + string(os.PathSeparator) + rest
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read private key: %w", err)
	}
	if err := providers.ValidatePrivateKey(string(data)); err != nil {
		return "", fmt.Errorf("%s: %w", path, err)
	}
	return string(data), nil
}

func verifyCredentials(ctx context.Context, login, pemData string) error {
	opts := []providers.ClientOption{providers.WithReadOnly(true)}
	if baseURL := os.Getenv(auth.EnvAPIURL); baseURL != "" {
		opts = append(opts, providers.WithBaseURL(baseURL))
	}
	client := providers.NewTransIPClient(opts...)
	if _, err := client.Authenticate(ctx, login, pemData); err != nil {
		return fmt.Errorf("credentials rejected: %w", err)
	}
	return nil
}
