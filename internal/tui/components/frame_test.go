package components

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

func TestFrame_RenderLayout(t *testing.T) {
	f := Frame{
		Width:   60,
		Height:  20,
		View:    "watch",
		Context: "example.com",
		Keys:    []KeyBinding{{Key: "q", Desc: "stop"}},
		Status:  "cycle failed",
	}

	var bodyHeight int
	out := f.Render(func(w, h int) string {
		bodyHeight = h
		return "BODY"
	})
	plain := ansi.Strip(out)

	for _, want := range []string{"transip-dns", "watch", "example.com", "BODY", "cycle failed", "q stop"} {
		if !strings.Contains(plain, want) {
			t.Errorf("frame missing %q:\n%s", want, plain)
		}
	}
	if bodyHeight <= 0 || bodyHeight >= f.Height {
		t.Errorf("body height = %d, want between 1 and %d", bodyHeight, f.Height-1)
	}
	for i, line := range strings.Split(out, "\n") {
		if w := lipgloss.Width(line); w > f.Width {
			t.Errorf("line %d is %d wide, frame is %d", i, w, f.Width)
		}
	}
}

func TestFrame_NothingBeforeSizeKnown(t *testing.T) {
	called := false
	out := Frame{}.Render(func(int, int) string {
		called = true
		return "BODY"
	})
	if out != "" || called {
		t.Errorf("Render on an unsized frame = %q (body called: %v), want empty", out, called)
	}
}
