package dns

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/config"
	"nathanbeddoewebdev/transip-dns/internal/dns/scheduler"
	"nathanbeddoewebdev/transip-dns/internal/dns/services"
	"nathanbeddoewebdev/transip-dns/internal/logging"
	"nathanbeddoewebdev/transip-dns/internal/metrics"
	"nathanbeddoewebdev/transip-dns/internal/publicip"
	"nathanbeddoewebdev/transip-dns/internal/tui"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// WatchCommand returns the "watch" command.
func WatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Keep DNS records pointed at this machine's public address",
		Long: `Check the public address on a fixed interval and update the selected
records whenever it changes. While the address stays the same no request
is sent to TransIP.

Only A and AAAA records can follow the address. If the selection includes
any other record type (an apex MX, TXT or NS record, say) every cycle
fails without writing anything, so select with -t A / -t AAAA.

Runs until interrupted (Ctrl+C or SIGTERM). Failed checks are reported
and retried on the next tick.

Examples:
  transip-dns watch -d example.com -n @ -n vpn -t A
  transip-dns watch -d example.com -t A -t AAAA --family ipv4 --family ipv6 --interval 10m
  transip-dns watch -d example.com -t A --metrics-addr :9100 --plain`,
		Args:         cobra.NoArgs,
		RunE:         runWatch,
		SilenceUsage: true,
	}

	selectionFlags(cmd)
	cmd.Flags().Duration("interval", 0, "Time between checks (default from config, else 5m)")
	cmd.Flags().StringSlice("family", []string{"ipv4"}, "Address family to watch: ipv4 or ipv6 (repeatable)")
	cmd.Flags().String("metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :9100")
	cmd.Flags().Bool("plain", false, "Print one line per check instead of the status view")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	domains, names, types := selection(cmd)

	fams, err := watchFamilies(cmd)
	if err != nil {
		return err
	}

	plain, _ := cmd.Flags().GetBool("plain")
	out := cmd.OutOrStdout()
	useTUI := !plain && isTerminal(out)
	if useTUI {
		// Log lines would tear the full-window view.
		cmd.SetContext(logging.IntoContext(cmd.Context(), logr.Discard()))
	}

	s, err := newSession(cmd)
	if err != nil {
		return err
	}

	interval, err := watchInterval(cmd, s.cfg)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if addr, _ := cmd.Flags().GetString("metrics-addr"); addr != "" {
		srv, err := metrics.Listen(addr, s.log.WithName("metrics"))
		if err != nil {
			return fmt.Errorf("failed to serve metrics: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	audit := auditEnabled(cmd, s)
	meta := metadataFor(cmd)

	var send func(ev scheduler.Event)
	handle := func(ev scheduler.Event) {
		if audit {
			recordAudit(ctx, s.log, auditEntries(meta, ev.Result, ev.Err, ev.Duration))
		}
		send(ev)
	}

	cycle := scheduler.ReconcileCycle(s.reconciler, services.Request{
		Domains: domains,
		Names:   names,
		Types:   services.NormalizeTypes(types),
	})
	sched := scheduler.New(interval, s.resolver, cycle,
		scheduler.WithFamilies(fams),
		scheduler.WithLogger(s.log.WithName("scheduler")),
		scheduler.WithEventHandler(handle),
	)

	if !useTUI {
		send = func(ev scheduler.Event) { printEvent(out, ev) }
		return sched.Run(ctx)
	}

	program := tui.NewWatchProgram(tui.WatchOptions{
		Domains:  domains,
		Names:    names,
		Interval: interval,
		Families: fams.String(),
		Stop:     stop,
	})
	send = func(ev scheduler.Event) { program.Send(tui.WatchEventMsg(ev)) }

	errCh := make(chan error, 1)
	go func() {
		errCh <- sched.Run(ctx)
		program.Send(tui.WatchStoppedMsg{})
	}()

	if _, err := program.Run(); err != nil {
		stop()
		<-errCh
		return fmt.Errorf("watch view failed: %w", err)
	}
	return <-errCh
}

// watchInterval returns --interval when given, otherwise the configured one.
func watchInterval(cmd *cobra.Command, cfg *config.Config) (time.Duration, error) {
	if cmd.Flags().Changed("interval") {
		d, _ := cmd.Flags().GetDuration("interval")
		if d <= 0 {
			return 0, fmt.Errorf("--interval must be positive, got %s", d)
		}
		return d, nil
	}
	d, err := cfg.WatchInterval()
	if err != nil {
		return 0, fmt.Errorf("invalid interval in config: %w", err)
	}
	return d, nil
}

func watchFamilies(cmd *cobra.Command) (publicip.Families, error) {
	names, _ := cmd.Flags().GetStringSlice("family")
	var fams publicip.Families
	for _, n := range names {
		f, err := publicip.ParseFamily(n)
		if err != nil {
			return 0, err
		}
		fams = fams.Add(f)
	}
	if fams.Empty() {
		return 0, fmt.Errorf("at least one --family is required")
	}
	return fams, nil
}

// printEvent writes one line per tick for non-interactive output.
func printEvent(w io.Writer, ev scheduler.Event) {
	fmt.Fprintf(w, "%s  tick %d  %-9s  %s  %s\n",
		ev.At.Format(time.RFC3339),
		ev.Tick,
		ev.Outcome(),
		ev.Addresses,
		ev.Detail(),
	)
}
