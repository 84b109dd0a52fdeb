package auditlog

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Metadata describes the invocation an audit entry belongs to. Every entry
// written by one process shares its RunID, so a watch session can be read
// back as a unit.
type Metadata struct {
	RunID   string
	Command string
	Args    string
	Started time.Time
}

// NewMetadata describes a run of command with the given argv. Secret flag
// values are redacted before they are stored.
func NewMetadata(command string, argv []string, started time.Time) Metadata {
	return Metadata{
		RunID:   uuid.NewString(),
		Command: command,
		Args:    strings.Join(SanitizeArgs(argv), " "),
		Started: started,
	}
}

type metadataKey struct{}

// WithMetadata attaches audit metadata to a context.
func WithMetadata(ctx context.Context, meta Metadata) context.Context {
	return context.WithValue(ctx, metadataKey{}, meta)
}

// MetadataFromContext returns the metadata stored by WithMetadata, or the
// zero value.
func MetadataFromContext(ctx context.Context) Metadata {
	meta, _ := ctx.Value(metadataKey{}).(Metadata)
	return meta
}
