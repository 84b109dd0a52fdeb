package dns

import (
	"fmt"
	"os"

	"nathanbeddoewebdev/transip-dns/internal/config"
	"nathanbeddoewebdev/transip-dns/internal/dns/providers"
	"nathanbeddoewebdev/transip-dns/internal/dns/services"
	"nathanbeddoewebdev/transip-dns/internal/logging"
	"nathanbeddoewebdev/transip-dns/internal/publicip"
	"nathanbeddoewebdev/transip-dns/internal/services/auth"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// newResolver builds the public address resolver. Tests replace it.
var newResolver = func(mode publicip.SourceMode, log logr.Logger) services.AddressResolver {
	return publicip.NewResolver(
		publicip.WithSources(publicip.SourcesFor(mode)...),
		publicip.WithLogger(log.WithName("publicip")),
	)
}

// session bundles what a record command needs to talk to TransIP.
type session struct {
	cfg        *config.Config
	log        logr.Logger
	resolver   services.AddressResolver
	reconciler *services.Reconciler
}

// newSession resolves credentials and wires client, connector, resolver and
// reconciler. No network call is made until the reconciler is used.
func newSession(cmd *cobra.Command) (*session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	creds, err := resolveCredentials(cmd, cfg)
	if err != nil {
		return nil, err
	}

	mode, err := publicip.ParseSourceMode(cfg.AddressSource)
	if err != nil {
		return nil, fmt.Errorf("invalid address-source in config: %w", err)
	}

	log := logging.FromContext(cmd.Context())
	log.V(1).Info("using credentials", "login", creds.Login, "source", creds.Source)

	opts := []providers.ClientOption{
		providers.WithLogger(log.WithName("transip")),
		providers.WithTokenExpiration(cfg.TokenExpiration),
	}
	if baseURL := os.Getenv(auth.EnvAPIURL); baseURL != "" {
		opts = append(opts, providers.WithBaseURL(baseURL))
	}
	connector := providers.NewConnector(providers.NewTransIPClient(opts...), creds)

	resolver := newResolver(mode, log)
	return &session{
		cfg:        cfg,
		log:        log,
		resolver:   resolver,
		reconciler: services.NewReconciler(connector, resolver, services.WithLogger(log.WithName("reconciler"))),
	}, nil
}

func resolveCredentials(cmd *cobra.Command, cfg *config.Config) (auth.Credentials, error) {
	login, _ := cmd.Flags().GetString("username")
	key, _ := cmd.Flags().GetString("private-key")
	keyFile, _ := cmd.Flags().GetString("private-key-file")

	return auth.ResolveCredentials(auth.Sources{
		Login:                login,
		PrivateKey:           key,
		PrivateKeyFile:       keyFile,
		Getenv:               os.Getenv,
		ConfigLogin:          cfg.Username,
		ConfigPrivateKeyFile: cfg.PrivateKeyFile,
		Store:                auth.DefaultStore(),
	})
}

// selection reads the --domain/--name/--type flags.
func selection(cmd *cobra.Command) (domains, names []string, types []string) {
	domains, _ = cmd.Flags().GetStringSlice("domain")
	names, _ = cmd.Flags().GetStringSlice("name")
	types, _ = cmd.Flags().GetStringSlice("type")
	return domains, names, types
}
