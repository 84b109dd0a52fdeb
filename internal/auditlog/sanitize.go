package auditlog

import (
	"slices"
	"strings"
)

const redacted = "<redacted>"

// secretFlags take a value that must never reach the audit log.
var secretFlags = []string{"--private-key"}

// SanitizeArgs returns a copy of argv with secret values replaced. Both
// "--flag value" and "--flag=value" forms are handled, as is a PEM block
// passed anywhere on the command line.
func SanitizeArgs(argv []string) []string {
	out := make([]string, len(argv))
	for i := 0; i < len(argv); i++ {
		arg := argv[i]
		name, _, inline := strings.Cut(arg, "=")

		switch {
		case slices.Contains(secretFlags, name) && inline:
			out[i] = name + "=" + redacted
		case slices.Contains(secretFlags, arg):
			out[i] = arg
			if i+1 < len(argv) {
				i++
				out[i] = redacted
			}
		case strings.Contains(arg, "-----BEGIN"):
			out[i] = redacted
		default:
			out[i] = arg
		}
	}
	return out
}
