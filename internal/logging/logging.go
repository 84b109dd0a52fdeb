// Package logging builds the logr.Logger shared by all commands.
package logging

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
)

// Options configures New.
type Options struct {
	// Verbosity enables V(n) lines up to this level. 0 logs Info and Error only.
	Verbosity int

	// Timestamps prefixes every line with an RFC 3339 timestamp.
	Timestamps bool
}

// New returns a logger writing key/value lines to w.
func New(w io.Writer, opts Options) logr.Logger {
	var mu sync.Mutex
	return funcr.New(func(prefix, args string) {
		mu.Lock()
		defer mu.Unlock()
		if prefix != "" {
			fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(w, args)
	}, funcr.Options{
		Verbosity:       opts.Verbosity,
		LogTimestamp:    opts.Timestamps,
		TimestampFormat: time.RFC3339,
	})
}

// IntoContext returns a copy of ctx carrying log.
func IntoContext(ctx context.Context, log logr.Logger) context.Context {
	return logr.NewContext(ctx, log)
}

// FromContext returns the logger in ctx, or a logger that discards everything.
func FromContext(ctx context.Context) logr.Logger {
	return logr.FromContextOrDiscard(ctx)
}
