package logging

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNew_Verbosity(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{Verbosity: 1})

	log.Info("cycle complete", "tick", 3)
	log.V(1).Info("request", "path", "/auth")
	log.V(2).Info("too verbose")

	out := buf.String()
	if !strings.Contains(out, `"msg"="cycle complete"`) || !strings.Contains(out, `"tick"=3`) {
		t.Errorf("missing info line:\n%s", out)
	}
	if !strings.Contains(out, `"path"="/auth"`) {
		t.Errorf("missing V(1) line:\n%s", out)
	}
	if strings.Contains(out, "too verbose") {
		t.Errorf("V(2) line should be filtered:\n%s", out)
	}
}

func TestNew_Error(t *testing.T) {
	var buf bytes.Buffer
	log := New(&buf, Options{})

	log.Error(errors.New("boom"), "cycle failed")
	log.V(1).Info("hidden")

	out := buf.String()
	if !strings.Contains(out, `"error"="boom"`) {
		t.Errorf("missing error value:\n%s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("V(1) line should be filtered at verbosity 0:\n%s", out)
	}
}

func TestNew_Prefix(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, Options{}).WithName("watch").Info("started")

	if !strings.HasPrefix(buf.String(), "watch: ") {
		t.Errorf("expected name prefix, got %q", buf.String())
	}
}

func TestContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	ctx := IntoContext(context.Background(), New(&buf, Options{}))

	FromContext(ctx).Info("from context")
	if !strings.Contains(buf.String(), "from context") {
		t.Errorf("logger not carried in context: %q", buf.String())
	}

	// An empty context yields a discarding logger rather than panicking.
	FromContext(context.Background()).Info("dropped")
}
