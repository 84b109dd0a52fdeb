// Package scheduler drives reconciliation cycles on a fixed interval.
//
// Before every cycle the scheduler resolves the watched address families
// and compares them with the addresses of the last successful cycle. When
// nothing changed the cycle is skipped without any call to the provider.
package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/dns/services"
	"nathanbeddoewebdev/transip-dns/internal/metrics"
	"nathanbeddoewebdev/transip-dns/internal/publicip"

	"github.com/go-logr/logr"
)

// DefaultInterval is the watch interval when none is configured.
const DefaultInterval = 5 * time.Minute

var ErrAlreadyRunning = errors.New("scheduler is already running")

// State is the lifecycle state of a Scheduler.
type State int32

const (
	Idle State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "idle"
}

// Cycle runs one reconciliation cycle. known holds the addresses the
// scheduler resolved for this tick.
type Cycle func(ctx context.Context, known publicip.Addresses) (*services.Result, error)

// ReconcileCycle returns a Cycle that applies req through r in address mode:
// no explicit content, never a dry run.
func ReconcileCycle(r *services.Reconciler, req services.Request) Cycle {
	req.Content = ""
	req.DryRun = false
	return func(ctx context.Context, known publicip.Addresses) (*services.Result, error) {
		req.Known = known
		return r.Reconcile(ctx, req)
	}
}

// Event reports the outcome of one tick.
type Event struct {
	Tick      int
	At        time.Time
	Addresses publicip.Addresses
	Skipped   bool
	Result    *services.Result
	Err       error
	Duration  time.Duration
}

// Outcome summarizes the event with a metrics outcome label: skipped when
// no cycle ran, otherwise how the cycle ended.
func (e Event) Outcome() string {
	if e.Skipped && e.Err == nil {
		return metrics.OutcomeSkipped
	}
	return services.CycleOutcome(false, e.Result, e.Err)
}

// Detail describes the event in a few words.
func (e Event) Detail() string {
	switch {
	case e.Err != nil:
		return e.Err.Error()
	case e.Skipped:
		return "address unchanged"
	case e.Result != nil:
		return e.Result.Describe()
	}
	return ""
}

// Scheduler repeatedly runs a Cycle, suppressing cycles while the public
// address is unchanged.
type Scheduler struct {
	interval time.Duration
	resolver services.AddressResolver
	cycle    Cycle
	clock    Clock
	log      logr.Logger
	families publicip.Families
	onEvent  func(Event)

	state atomic.Int32

	// last is only touched by the Run goroutine, between cycles.
	last    publicip.Addresses
	hasLast bool
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		s.clock = c
	}
}

// WithLogger sets the logger used for tick outcomes.
func WithLogger(log logr.Logger) Option {
	return func(s *Scheduler) {
		s.log = log
	}
}

// WithFamilies sets the families compared between ticks. Defaults to IPv4.
func WithFamilies(fams publicip.Families) Option {
	return func(s *Scheduler) {
		if !fams.Empty() {
			s.families = fams
		}
	}
}

// WithEventHandler registers fn to receive an Event after every tick.
// fn runs on the scheduler goroutine and must not block for long.
func WithEventHandler(fn func(Event)) Option {
	return func(s *Scheduler) {
		s.onEvent = fn
	}
}

// New returns an idle Scheduler that runs cycle every interval.
func New(interval time.Duration, resolver services.AddressResolver, cycle Cycle, opts ...Option) *Scheduler {
	if interval <= 0 {
		interval = DefaultInterval
	}
	s := &Scheduler{
		interval: interval,
		resolver: resolver,
		cycle:    cycle,
		clock:    RealClock{},
		log:      logr.Discard(),
		families: publicip.NewFamilies(publicip.IPv4),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State reports whether Run is active.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Run executes one tick immediately and then one per interval until ctx is
// cancelled. Tick failures are reported and never stop the loop. A tick in
// progress when ctx is cancelled runs to completion first.
func (s *Scheduler) Run(ctx context.Context) error {
	if !s.state.CompareAndSwap(int32(Idle), int32(Running)) {
		return ErrAlreadyRunning
	}
	defer s.state.Store(int32(Idle))

	s.log.Info("watching for address changes", "interval", s.interval.String(), "families", s.families.String())

	tick := 0
	s.runTick(ctx, tick)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.log.Info("stopped watching")
			return nil
		case <-ticker.C():
			tick++
			s.runTick(ctx, tick)
		}
	}
}

// runTick resolves the watched families and runs a cycle unless they match
// the last successful cycle.
func (s *Scheduler) runTick(ctx context.Context, tick int) {
	// In-flight work is never cut short by shutdown.
	ctx = context.WithoutCancel(ctx)

	start := s.clock.Now()
	ev := Event{Tick: tick, At: start}
	defer func() {
		ev.Duration = s.clock.Now().Sub(start)
		metrics.TickCompleted(ev.Outcome())
		if s.onEvent != nil {
			s.onEvent(ev)
		}
	}()

	addrs, err := s.resolver.Resolve(ctx, s.families)
	ev.Addresses = addrs
	if err != nil {
		ev.Err = err
		s.log.Error(err, "failed to resolve public address", "tick", tick)
		return
	}

	if s.hasLast && addrs.EqualFor(s.last, s.families) {
		ev.Skipped = true
		s.log.V(1).Info("public address unchanged, skipping cycle", "tick", tick, "addresses", addrs.String())
		return
	}

	s.log.Info("running cycle", "tick", tick, "addresses", addrs.String())
	res, err := s.cycle(ctx, addrs)
	ev.Result = res
	if err != nil {
		ev.Err = err
		s.log.Error(err, "cycle failed", "tick", tick)
		return
	}

	s.last, s.hasLast = addrs, true
	if res != nil {
		s.log.Info("cycle complete", "tick", tick, "summary", res.Describe())
	}
}
