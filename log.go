package availsync

import (
	"fmt"
	"io"
	"strings"
)

// Logf writes one log line to w, optionally prefixed with a component
// tag and a calendar reference.
func Logf(w io.Writer, prefix, calRef string, format string, a ...any) {
	parts := []string{}
	if prefix != "" {
		parts = append(parts, prefix)
	}
	if calRef != "" {
		parts = append(parts, fmt.Sprintf("Calendar %s:", calRef))
	}
	parts = append(parts, fmt.Sprintf(format, a...))
	fmt.Fprintln(w, strings.Join(parts, " "))
}
