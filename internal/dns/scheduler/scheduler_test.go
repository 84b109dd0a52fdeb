package scheduler

import (
	"context"
	"errors"
	"fmt"
	"net/netip"
	"sync"
	"testing"
	"time"

	"nathanbeddoewebdev/transip-dns/internal/dns/domain"
	"nathanbeddoewebdev/transip-dns/internal/dns/services"
	"nathanbeddoewebdev/transip-dns/internal/publicip"

	"github.com/go-logr/logr"
)

// --- Fake clock ---

type fakeTicker struct {
	ch chan time.Time

	mu      sync.Mutex
	stopped bool
}

func (f *fakeTicker) C() <-chan time.Time { return f.ch }

func (f *fakeTicker) Stop() {
	f.mu.Lock()
	f.stopped = true
	f.mu.Unlock()
}

type fakeClock struct {
	mu      sync.Mutex
	now     time.Time
	period  time.Duration
	ticker  *fakeTicker
	created chan struct{}
}

func newFakeClock() *fakeClock {
	return &fakeClock{
		now:     time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC),
		created: make(chan struct{}),
	}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) NewTicker(d time.Duration) Ticker {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.period = d
	c.ticker = &fakeTicker{ch: make(chan time.Time)}
	close(c.created)
	return c.ticker
}

// tick advances the clock by one period and delivers a tick.
func (c *fakeClock) tick(t *testing.T) {
	t.Helper()
	select {
	case <-c.created:
	case <-time.After(5 * time.Second):
		t.Fatal("ticker was never created")
	}
	c.mu.Lock()
	c.now = c.now.Add(c.period)
	now, ch := c.now, c.ticker.ch
	c.mu.Unlock()

	select {
	case ch <- now:
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not accept tick")
	}
}

// --- Fake resolver and cycle ---

type seqResolver struct {
	mu    sync.Mutex
	seq   []string
	err   map[int]error
	calls int
}

func (r *seqResolver) Resolve(_ context.Context, _ publicip.Families) (publicip.Addresses, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.calls
	r.calls++
	if err := r.err[i]; err != nil {
		return publicip.Addresses{}, err
	}
	addr := r.seq[min(i, len(r.seq)-1)]
	return publicip.Addresses{IPv4: netip.MustParseAddr(addr)}, nil
}

type fakeCycle struct {
	mu    sync.Mutex
	known []publicip.Addresses
	errs  map[int]error
}

func (c *fakeCycle) run(_ context.Context, known publicip.Addresses) (*services.Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := len(c.known)
	c.known = append(c.known, known)
	if err := c.errs[i]; err != nil {
		return nil, err
	}
	return &services.Result{Applied: true, Addresses: known}, nil
}

func (c *fakeCycle) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.known)
}

// harness runs a scheduler in the background and collects its events.
type harness struct {
	clock  *fakeClock
	events chan Event
	cancel context.CancelFunc
	done   chan error
	sched  *Scheduler
}

func startScheduler(t *testing.T, resolver services.AddressResolver, cycle Cycle) *harness {
	t.Helper()
	h := &harness{
		clock:  newFakeClock(),
		events: make(chan Event, 16),
		done:   make(chan error, 1),
	}
	h.sched = New(time.Minute, resolver, cycle,
		WithClock(h.clock),
		WithLogger(logr.Discard()),
		WithEventHandler(func(ev Event) { h.events <- ev }),
	)

	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	go func() { h.done <- h.sched.Run(ctx) }()
	t.Cleanup(func() { h.stop(t) })
	return h
}

func (h *harness) next(t *testing.T) Event {
	t.Helper()
	select {
	case ev := <-h.events:
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for event")
		return Event{}
	}
}

func (h *harness) stop(t *testing.T) {
	t.Helper()
	if h.cancel == nil {
		return
	}
	h.cancel()
	h.cancel = nil
	select {
	case err := <-h.done:
		if err != nil {
			t.Errorf("Run returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}

// --- Tests ---

func TestRun_FirstTickAlwaysRuns(t *testing.T) {
	cycle := &fakeCycle{}
	h := startScheduler(t, &seqResolver{seq: []string{"3.3.3.3"}}, cycle.run)

	ev := h.next(t)
	if ev.Tick != 0 || ev.Skipped || ev.Err != nil {
		t.Errorf("first event = %+v, want a successful cycle", ev)
	}
	if cycle.count() != 1 {
		t.Errorf("cycle ran %d times, want 1", cycle.count())
	}
	if got := cycle.known[0].IPv4.String(); got != "3.3.3.3" {
		t.Errorf("cycle received known %s, want 3.3.3.3", got)
	}
}

func TestRun_SkipsWhenAddressUnchanged(t *testing.T) {
	cycle := &fakeCycle{}
	h := startScheduler(t, &seqResolver{seq: []string{"3.3.3.3"}}, cycle.run)

	h.next(t)
	h.clock.tick(t)
	ev := h.next(t)

	if !ev.Skipped {
		t.Errorf("tick 1 = %+v, want skipped", ev)
	}
	if cycle.count() != 1 {
		t.Errorf("cycle ran %d times, want 1", cycle.count())
	}
}

func TestRun_AddressChangeTriggersCycle(t *testing.T) {
	cycle := &fakeCycle{}
	h := startScheduler(t, &seqResolver{seq: []string{"3.3.3.3", "4.4.4.4"}}, cycle.run)

	h.next(t)
	h.clock.tick(t)
	ev := h.next(t)

	if ev.Skipped {
		t.Error("tick 1 should not be skipped after an address change")
	}
	if cycle.count() != 2 {
		t.Errorf("cycle ran %d times, want 2", cycle.count())
	}
	if got := ev.Addresses.IPv4.String(); got != "4.4.4.4" {
		t.Errorf("event address = %s, want 4.4.4.4", got)
	}
	if !ev.At.Equal(h.clock.Now()) {
		t.Errorf("event At = %s, want %s", ev.At, h.clock.Now())
	}
}

func TestRun_FailedCycleRetriedOnNextTick(t *testing.T) {
	cycle := &fakeCycle{errs: map[int]error{0: fmt.Errorf("%w: boom", domain.ErrTransport)}}
	h := startScheduler(t, &seqResolver{seq: []string{"3.3.3.3"}}, cycle.run)

	first := h.next(t)
	if !errors.Is(first.Err, domain.ErrTransport) {
		t.Fatalf("tick 0 error = %v, want ErrTransport", first.Err)
	}

	h.clock.tick(t)
	second := h.next(t)
	if second.Skipped || second.Err != nil {
		t.Errorf("tick 1 = %+v, want a retried successful cycle", second)
	}

	h.clock.tick(t)
	third := h.next(t)
	if !third.Skipped {
		t.Errorf("tick 2 = %+v, want skipped after success", third)
	}
	if cycle.count() != 2 {
		t.Errorf("cycle ran %d times, want 2", cycle.count())
	}
}

func TestRun_ResolveFailureContinues(t *testing.T) {
	cycle := &fakeCycle{}
	resolver := &seqResolver{
		seq: []string{"3.3.3.3"},
		err: map[int]error{0: fmt.Errorf("%w: offline", domain.ErrAddressResolution)},
	}
	h := startScheduler(t, resolver, cycle.run)

	first := h.next(t)
	if !errors.Is(first.Err, domain.ErrAddressResolution) {
		t.Fatalf("tick 0 error = %v, want ErrAddressResolution", first.Err)
	}
	if cycle.count() != 0 {
		t.Error("cycle must not run without an address")
	}

	h.clock.tick(t)
	if ev := h.next(t); ev.Err != nil || ev.Skipped {
		t.Errorf("tick 1 = %+v, want a successful cycle", ev)
	}
}

func TestRun_StateAndSingleInstance(t *testing.T) {
	cycle := &fakeCycle{}
	h := startScheduler(t, &seqResolver{seq: []string{"3.3.3.3"}}, cycle.run)
	h.next(t)

	if got := h.sched.State(); got != Running {
		t.Errorf("State = %s, want running", got)
	}
	if err := h.sched.Run(context.Background()); !errors.Is(err, ErrAlreadyRunning) {
		t.Errorf("second Run error = %v, want ErrAlreadyRunning", err)
	}

	h.stop(t)
	if got := h.sched.State(); got != Idle {
		t.Errorf("State after stop = %s, want idle", got)
	}
	h.clock.ticker.mu.Lock()
	stopped := h.clock.ticker.stopped
	h.clock.ticker.mu.Unlock()
	if !stopped {
		t.Error("ticker was not stopped")
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(0, &seqResolver{seq: []string{"3.3.3.3"}}, (&fakeCycle{}).run, WithFamilies(publicip.NewFamilies()))
	if s.interval != DefaultInterval {
		t.Errorf("interval = %s, want %s", s.interval, DefaultInterval)
	}
	if s.families != publicip.NewFamilies(publicip.IPv4) {
		t.Errorf("families = %s, want [ipv4]", s.families)
	}
	if s.State() != Idle {
		t.Errorf("State = %s, want idle", s.State())
	}
}

// --- End-to-end with a reconciler ---

type countingDirectory struct {
	mu      sync.Mutex
	records []domain.Record
	lists   int
	applies int
}

func (d *countingDirectory) ListRecords(_ context.Context, _ string) ([]domain.Record, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.lists++
	return append([]domain.Record(nil), d.records...), nil
}

func (d *countingDirectory) ApplyRecord(_ context.Context, r domain.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.applies++
	for i := range d.records {
		if d.records[i].Key() == r.Key() {
			d.records[i] = r
		}
	}
	return nil
}

type countingConnector struct {
	dir   *countingDirectory
	mu    sync.Mutex
	calls int
}

func (c *countingConnector) Connect(context.Context) (domain.Directory, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.dir, nil
}

func TestRun_UnchangedAddressMakesNoRemoteCalls(t *testing.T) {
	dir := &countingDirectory{records: []domain.Record{
		{Domain: "x.nl", Name: "@", Type: domain.RecordTypeA, Expire: 300, Content: "1.1.1.1"},
	}}
	conn := &countingConnector{dir: dir}
	resolver := &seqResolver{seq: []string{"3.3.3.3"}}
	reconciler := services.NewReconciler(conn, resolver)

	h := startScheduler(t, resolver, ReconcileCycle(reconciler, services.Request{
		Domains: []string{"x.nl"},
		Content: "ignored",
		DryRun:  true,
	}))

	first := h.next(t)
	if first.Err != nil {
		t.Fatalf("tick 0 error: %v", first.Err)
	}
	if dir.applies != 1 || dir.records[0].Content != "3.3.3.3" {
		t.Fatalf("tick 0 applies=%d content=%s, want 1 and 3.3.3.3", dir.applies, dir.records[0].Content)
	}
	if resolver.calls != 1 {
		t.Errorf("tick 0 resolved %d times, want 1", resolver.calls)
	}

	h.clock.tick(t)
	if ev := h.next(t); !ev.Skipped {
		t.Fatalf("tick 1 = %+v, want skipped", ev)
	}

	conn.mu.Lock()
	connects := conn.calls
	conn.mu.Unlock()
	dir.mu.Lock()
	defer dir.mu.Unlock()
	if connects != 1 || dir.lists != 1 || dir.applies != 1 {
		t.Errorf("after tick 1: connects=%d lists=%d applies=%d, want 1/1/1", connects, dir.lists, dir.applies)
	}
}

func TestEventOutcome(t *testing.T) {
	applied := &services.Result{AppliedChanges: []domain.Change{{}}}
	partial := &domain.PartialApplyError{Failed: []domain.ChangeFailure{{Err: errors.New("rejected")}}}

	tests := []struct {
		name string
		ev   Event
		want string
	}{
		{"resolve failure", Event{Err: errors.New("timeout")}, "error"},
		{"partial apply", Event{Err: fmt.Errorf("cycle: %w", partial)}, "partial"},
		{"skipped", Event{Skipped: true}, "skipped"},
		{"applied", Event{Result: applied}, "applied"},
		{"nothing to change", Event{Result: &services.Result{}}, "unchanged"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ev.Outcome(); got != tt.want {
				t.Errorf("Outcome() = %q, want %q", got, tt.want)
			}
		})
	}
}
