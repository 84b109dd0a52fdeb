package metrics

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCycleCompleted(t *testing.T) {
	before := testutil.ToFloat64(cycleCount.WithLabelValues(OutcomeUnchanged))
	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)

	CycleCompleted(OutcomeUnchanged, at)

	if got := testutil.ToFloat64(cycleCount.WithLabelValues(OutcomeUnchanged)) - before; got != 1 {
		t.Errorf("unchanged cycles increased by %v, want 1", got)
	}
	if got := testutil.ToFloat64(lastSuccess); got != float64(at.Unix()) {
		t.Errorf("last success = %v, want %v", got, at.Unix())
	}
}

func TestCycleCompleted_OnlyUpToDateCyclesAdvanceLastSuccess(t *testing.T) {
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	CycleCompleted(OutcomeApplied, at)

	for i, outcome := range []string{OutcomeDryRun, OutcomePartial, OutcomeError} {
		CycleCompleted(outcome, at.Add(time.Duration(i+1)*time.Hour))
	}
	TickCompleted(OutcomeSkipped)

	if got := testutil.ToFloat64(lastSuccess); got != float64(at.Unix()) {
		t.Errorf("last success = %v, want %v", got, at.Unix())
	}
}

func TestTickCompleted(t *testing.T) {
	ticks := testutil.ToFloat64(tickCount.WithLabelValues(OutcomeSkipped))
	cycles := testutil.ToFloat64(cycleCount.WithLabelValues(OutcomeSkipped))

	TickCompleted(OutcomeSkipped)

	if got := testutil.ToFloat64(tickCount.WithLabelValues(OutcomeSkipped)) - ticks; got != 1 {
		t.Errorf("skipped ticks increased by %v, want 1", got)
	}
	if got := testutil.ToFloat64(cycleCount.WithLabelValues(OutcomeSkipped)) - cycles; got != 0 {
		t.Errorf("skipped tick counted as %v cycle(s)", got)
	}
}

func TestCycleCompleted_ErrorKeepsLastSuccess(t *testing.T) {
	at := time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC)
	CycleCompleted(OutcomeApplied, at)
	CycleCompleted(OutcomeError, at.Add(time.Hour))

	if got := testutil.ToFloat64(lastSuccess); got != float64(at.Unix()) {
		t.Errorf("last success = %v, want %v", got, at.Unix())
	}
}

func TestChangesApplied(t *testing.T) {
	applied := testutil.ToFloat64(changeCount.WithLabelValues("applied"))
	failed := testutil.ToFloat64(changeCount.WithLabelValues("failed"))

	ChangesApplied(2, 1)
	ChangesApplied(0, 0)

	if got := testutil.ToFloat64(changeCount.WithLabelValues("applied")) - applied; got != 2 {
		t.Errorf("applied increased by %v, want 2", got)
	}
	if got := testutil.ToFloat64(changeCount.WithLabelValues("failed")) - failed; got != 1 {
		t.Errorf("failed increased by %v, want 1", got)
	}
}

func TestAddressLookup(t *testing.T) {
	ok := testutil.ToFloat64(lookupCount.WithLabelValues("ipv4", "opendns", "success"))
	bad := testutil.ToFloat64(lookupCount.WithLabelValues("ipv4", "opendns", "error"))

	AddressLookup("ipv4", "opendns", nil)
	AddressLookup("ipv4", "opendns", errors.New("timeout"))

	if testutil.ToFloat64(lookupCount.WithLabelValues("ipv4", "opendns", "success"))-ok != 1 {
		t.Error("expected one successful lookup")
	}
	if testutil.ToFloat64(lookupCount.WithLabelValues("ipv4", "opendns", "error"))-bad != 1 {
		t.Error("expected one failed lookup")
	}
}

func TestListenServesMetrics(t *testing.T) {
	CycleCompleted(OutcomeApplied, time.Now())

	srv, err := Listen("127.0.0.1:0", logr.Discard())
	if err != nil {
		t.Fatalf("Listen: %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	resp, err := http.Get("http://" + srv.Addr().String() + "/metrics")
	if err != nil {
		t.Fatalf("GET /metrics: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `transip_dns_cycles_total{outcome="applied"}`) {
		t.Errorf("cycles metric missing from output:\n%s", body)
	}
}
